package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"

	"httpfetch/internal/model"
)

func TestNewRequest(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		want model.Method
	}{
		{"GET", model.MethodGet},
		{"PUT", model.MethodPut},
		{"POST", model.MethodPost},
		{"DELETE", model.MethodDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(resty.New().R(), tt.name, srv.URL)
			if err != nil {
				t.Fatalf("NewRequest(%q) error = %v", tt.name, err)
			}
			if req.Method != tt.want {
				t.Errorf("Method = %v, want %v", req.Method, tt.want)
			}
			if req.URL != srv.URL {
				t.Errorf("URL = %q, want %q", req.URL, srv.URL)
			}

			resp, err := req.Send()
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if resp.StatusCode() != http.StatusNoContent {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode(), http.StatusNoContent)
			}
			if gotMethod != tt.name {
				t.Errorf("server saw method %q, want %q", gotMethod, tt.name)
			}
		})
	}
}

func TestNewRequest_InvalidMethod(t *testing.T) {
	for _, name := range []string{"PATCH", "get", "HEAD", ""} {
		t.Run(name, func(t *testing.T) {
			req, err := NewRequest(resty.New().R(), name, "http://example.com")
			if !errors.Is(err, model.ErrInvalidMethod) {
				t.Fatalf("NewRequest(%q) error = %v, want ErrInvalidMethod", name, err)
			}
			if req != nil {
				t.Errorf("NewRequest(%q) returned non-nil request", name)
			}
		})
	}
}
