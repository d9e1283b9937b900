package http

import (
	"context"
	"net/http"
)

type Request struct {
	original *http.Request
}

func NewRequest(r *http.Request) *Request {
	return &Request{original: r}
}

func (request *Request) Method() string {
	return request.original.Method
}

// Path returns the route key of the request, see CanonicalPath.
func (request *Request) Path() string {
	return CanonicalPath(request.original.URL.EscapedPath())
}

func (request *Request) Header(name string) string {
	return request.original.Header.Get(name)
}

func (request *Request) Context() context.Context {
	return request.original.Context()
}
