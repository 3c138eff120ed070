// Package search filters already-loaded record lists in memory.
//
// Text queries are case-insensitive substring matches over a fixed set of
// fields per record type; dropdown filters are exact matches. An empty query
// or filter matches everything.
package search

import (
	"net/url"
	"strings"

	"baletrack/models"
)

// FaultFilter narrows bales by their fault flag.
type FaultFilter string

const (
	FaultAny    FaultFilter = ""
	FaultFaulty FaultFilter = "faulty"
	FaultNormal FaultFilter = "normal"
)

func ParseFaultFilter(raw string) FaultFilter {
	switch FaultFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case FaultFaulty:
		return FaultFaulty
	case FaultNormal:
		return FaultNormal
	}
	return FaultAny
}

// BaleFilter combines the bale list controls.
type BaleFilter struct {
	Query          string
	Classification models.Grade
	Fault          FaultFilter
}

// ParseBaleFilter reads the q, classification and fault query parameters.
func ParseBaleFilter(q url.Values) BaleFilter {
	grade, _ := models.ParseGrade(q.Get("classification"))
	return BaleFilter{
		Query:          q.Get("q"),
		Classification: grade,
		Fault:          ParseFaultFilter(q.Get("fault")),
	}
}

// Values encodes f back into list query parameters.
func (f BaleFilter) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(f.Query); s != "" {
		v.Set("q", s)
	}
	if f.Classification != "" {
		v.Set("classification", string(f.Classification))
	}
	if f.Fault != FaultAny {
		v.Set("fault", string(f.Fault))
	}
	return v
}

// Bales matches barcode, lot number and farmer name.
func Bales(list []models.Bale, f BaleFilter) []models.Bale {
	q := normalize(f.Query)
	out := make([]models.Bale, 0, len(list))
	for _, b := range list {
		if f.Classification != "" && b.Classification != f.Classification {
			continue
		}
		if f.Fault == FaultFaulty && !b.HasFault {
			continue
		}
		if f.Fault == FaultNormal && b.HasFault {
			continue
		}
		farmer := ""
		if fm, ok := b.Grower.Embedded(); ok {
			farmer = fm.FullName()
		}
		if !contains(q, b.BarCode, b.LotNumber, farmer) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Farmers matches names, grower number, phone and email.
func Farmers(list []models.Farmer, query string) []models.Farmer {
	q := normalize(query)
	out := make([]models.Farmer, 0, len(list))
	for _, f := range list {
		if contains(q, f.FirstName, f.LastName, f.FullName(), f.GrowerNumber, f.PhoneNumber, f.Email) {
			out = append(out, f)
		}
	}
	return out
}

// Boxes matches box number and description, and filters by box status.
func Boxes(list []models.Box, query string, status models.BoxStatus) []models.Box {
	q := normalize(query)
	out := make([]models.Box, 0, len(list))
	for _, b := range list {
		if status != models.BoxStatusUnknown && b.BoxStatus != status {
			continue
		}
		if contains(q, b.BoxNumber, b.Description) {
			out = append(out, b)
		}
	}
	return out
}

// Shipments matches id, filters and record status, and filters by status.
func Shipments(list []models.BaleShipment, query string, status models.RecordStatus) []models.BaleShipment {
	q := normalize(query)
	out := make([]models.BaleShipment, 0, len(list))
	for _, s := range list {
		if status != "" && s.Status != status {
			continue
		}
		if contains(q, s.ID.String(), s.Filters, string(s.Status)) {
			out = append(out, s)
		}
	}
	return out
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func contains(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
