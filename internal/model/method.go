package model

import (
	"errors"
	"fmt"
)

// ErrInvalidMethod is returned for method names outside GET, PUT, POST and DELETE.
var ErrInvalidMethod = errors.New("invalid http method")

// Method is one of the supported HTTP methods.
type Method int

const (
	MethodGet Method = iota + 1
	MethodPut
	MethodPost
	MethodDelete
)

// ParseMethod maps an exact, case-sensitive method name to a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "GET":
		return MethodGet, nil
	case "PUT":
		return MethodPut, nil
	case "POST":
		return MethodPost, nil
	case "DELETE":
		return MethodDelete, nil
	default:
		return 0, fmt.Errorf("%w: given method %q is unknown", ErrInvalidMethod, name)
	}
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPut:
		return "PUT"
	case MethodPost:
		return "POST"
	case MethodDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Idempotent reports whether a failed attempt may be retried safely.
func (m Method) Idempotent() bool {
	switch m {
	case MethodGet, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}
