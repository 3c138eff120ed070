package directus

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("directus: not found")
	ErrForbidden    = errors.New("directus: forbidden")
	ErrUnauthorized = errors.New("directus: unauthorized")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("directus: %s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("directus: %s %s: %d: %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrForbidden:
		return e.Status == 403
	case ErrUnauthorized:
		return e.Status == 401
	}
	return false
}

type errorEnvelope struct {
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}
