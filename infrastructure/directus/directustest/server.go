// Package directustest provides an in-memory item-collection service for tests.
package directustest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type account struct {
	password string
	profile  map[string]any
}

// Server is a small stateful imitation of the remote REST API. Records are
// plain JSON objects; relations listed in Relations are expanded for
// "<field>.*" field selectors.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	items     map[string]map[string]map[string]any
	accounts  map[string]account
	access    map[string]string
	refresh   map[string]string
	calls     map[string]int
	failures  map[string]int
	clock     time.Time
	Relations map[string]map[string]string
}

// NewServer starts the fake. Call Close when done.
func NewServer() *Server {
	s := &Server{
		items:    make(map[string]map[string]map[string]any),
		accounts: make(map[string]account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string]int),
		clock:    time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		Relations: map[string]map[string]string{
			"bales": {"grower_number": "farmers", "box": "boxes"},
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// AddUser registers credentials accepted by /auth/login.
func (s *Server) AddUser(email, password string, profile map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := map[string]any{"id": uuid.NewString(), "email": email}
	for k, v := range profile {
		p[k] = v
	}
	s.accounts[strings.ToLower(email)] = account{password: password, profile: p}
}

// Seed inserts a record directly and returns its id.
func (s *Server) Seed(collection string, record map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(collection, record)
}

// Calls returns how many requests hit "METHOD /path".
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// TotalCalls sums every recorded request.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// FailNext makes the next n requests matching "METHOD /path" answer 503.
func (s *Server) FailNext(method, path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] += n
}

// RevokeAll forgets every issued access token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

func (s *Server) insertLocked(collection string, record map[string]any) string {
	if s.items[collection] == nil {
		s.items[collection] = make(map[string]map[string]any)
	}
	id, _ := record["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	row := make(map[string]any, len(record)+3)
	for k, v := range record {
		row[k] = v
	}
	s.clock = s.clock.Add(time.Second)
	row["id"] = id
	if _, ok := row["date_created"]; !ok {
		row["date_created"] = s.clock.Format(time.RFC3339)
	}
	if _, ok := row["status"]; !ok {
		row["status"] = "published"
	}
	s.items[collection][id] = row
	return id
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	s.calls[key]++
	if s.failures[key] > 0 {
		s.failures[key]--
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "injected failure")
		return
	}

	switch {
	case r.URL.Path == "/auth/login" && r.Method == http.MethodPost:
		s.login(w, r)
		return
	case r.URL.Path == "/auth/refresh" && r.Method == http.MethodPost:
		s.refreshToken(w, r)
		return
	case r.URL.Path == "/auth/logout" && r.Method == http.MethodPost:
		s.logout(w, r)
		return
	}

	email, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid user credentials.")
		return
	}

	if r.URL.Path == "/users/me" && r.Method == http.MethodGet {
		writeData(w, http.StatusOK, s.accounts[email].profile)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "items" {
		writeError(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
		return
	}
	collection := parts[1]
	id := ""
	if len(parts) > 2 {
		id = parts[2]
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		s.list(w, r, collection)
	case r.Method == http.MethodGet:
		row, ok := s.items[collection][id]
		if !ok {
			writeError(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "Item not found")
			return
		}
		writeData(w, http.StatusOK, s.project(collection, row, fieldsOf(r)))
	case r.Method == http.MethodPost && id == "":
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
			return
		}
		newID := s.insertLocked(collection, body)
		writeData(w, http.StatusOK, s.items[collection][newID])
	case r.Method == http.MethodPatch && id != "":
		row, ok := s.items[collection][id]
		if !ok {
			writeError(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "Item not found")
			return
		}
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
			return
		}
		for k, v := range body {
			if k == "id" {
				continue
			}
			row[k] = v
		}
		s.clock = s.clock.Add(time.Second)
		row["date_updated"] = s.clock.Format(time.RFC3339)
		writeData(w, http.StatusOK, row)
	case r.Method == http.MethodDelete && id != "":
		if _, ok := s.items[collection][id]; !ok {
			writeError(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "Item not found")
			return
		}
		delete(s.items[collection], id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported")
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	acct, ok := s.accounts[strings.ToLower(email)]
	if !ok || acct.password != password {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid user credentials.")
		return
	}
	s.issueLocked(w, strings.ToLower(email))
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	token, _ := body["refresh_token"].(string)
	email, ok := s.refresh[token]
	if !ok {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid refresh token.")
		return
	}
	delete(s.refresh, token)
	s.issueLocked(w, email)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	token, _ := body["refresh_token"].(string)
	delete(s.refresh, token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) issueLocked(w http.ResponseWriter, email string) {
	access, refresh := uuid.NewString(), uuid.NewString()
	s.access[access] = email
	s.refresh[refresh] = email
	writeData(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires":       900000,
	})
}

func (s *Server) authenticate(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	email, ok := s.access[strings.TrimPrefix(h, "Bearer ")]
	return email, ok
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	q := r.URL.Query()
	var filter map[string]map[string]any
	if raw := q.Get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
			return
		}
	}

	rows := make([]map[string]any, 0, len(s.items[collection]))
	for _, row := range s.items[collection] {
		if matches(row, filter) {
			rows = append(rows, row)
		}
	}

	sortField := q.Get("sort")
	sort.SliceStable(rows, func(i, j int) bool {
		desc := strings.HasPrefix(sortField, "-")
		field := strings.TrimPrefix(sortField, "-")
		if field == "" {
			field = "id"
		}
		a, b := fmt.Sprint(rows[i][field]), fmt.Sprint(rows[j][field])
		if desc {
			return a > b
		}
		return a < b
	})

	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < len(rows) {
			rows = rows[:n]
		}
	}

	fields := fieldsOf(r)
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.project(collection, row, fields))
	}
	writeData(w, http.StatusOK, out)
}

func matches(row map[string]any, filter map[string]map[string]any) bool {
	for field, ops := range filter {
		for op, operand := range ops {
			if op != "_eq" {
				return false
			}
			v, ok := row[field]
			if !ok || v == nil {
				return false
			}
			if fmt.Sprint(v) != fmt.Sprint(operand) {
				return false
			}
		}
	}
	return true
}

func (s *Server) project(collection string, row map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	rels := s.Relations[collection]
	for _, f := range fields {
		field, ok := strings.CutSuffix(f, ".*")
		if !ok {
			continue
		}
		target, ok := rels[field]
		if !ok {
			continue
		}
		id, _ := row[field].(string)
		if related, ok := s.items[target][id]; ok {
			out[field] = related
		}
	}
	return out
}

func fieldsOf(r *http.Request) []string {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func readBody(r *http.Request) (map[string]any, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	if len(raw) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"message": msg, "extensions": map[string]any{"code": code}}},
	})
}
