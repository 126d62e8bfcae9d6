package client

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"httpfetch/internal/model"
)

// Request is a resty request bound to one of the supported methods and a URL.
type Request struct {
	Method model.Method
	URL    string

	r *resty.Request
}

// NewRequest binds r to the method named by methodName and to url.
// Names other than GET, PUT, POST and DELETE return model.ErrInvalidMethod.
func NewRequest(r *resty.Request, methodName, url string) (*Request, error) {
	m, err := model.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}
	return &Request{Method: m, URL: url, r: r}, nil
}

// Send executes the request.
func (req *Request) Send() (*resty.Response, error) {
	switch req.Method {
	case model.MethodGet:
		return req.r.Get(req.URL)
	case model.MethodPut:
		return req.r.Put(req.URL)
	case model.MethodPost:
		return req.r.Post(req.URL)
	case model.MethodDelete:
		return req.r.Delete(req.URL)
	default:
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidMethod, req.Method)
	}
}
