package directus

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Filter is a field -> operator -> operand predicate, e.g. {"box":{"_eq":"42"}}.
type Filter map[string]map[string]any

// Eq builds an equality predicate on a single field.
func Eq(field string, value any) Filter {
	return Filter{field: {"_eq": value}}
}

// And merges predicates on distinct fields.
func (f Filter) And(other Filter) Filter {
	out := make(Filter, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Query holds list/get parameters. Limit 0 leaves the service default; -1 requests every row.
type Query struct {
	Limit  int
	Sort   []string
	Fields []string
	Filter Filter
}

// Values encodes the query as URL parameters.
func (q Query) Values() (url.Values, error) {
	v := url.Values{}
	if q.Limit != 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(q.Sort) > 0 {
		v.Set("sort", strings.Join(q.Sort, ","))
	}
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	if len(q.Filter) > 0 {
		raw, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, err
		}
		v.Set("filter", string(raw))
	}
	return v, nil
}
