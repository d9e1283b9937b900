package http

import "net/http"

type Handler interface {
	Handle(request *Request) (*Response, error)
}

type HandlerFunc func(request *Request) (*Response, error)

func (f HandlerFunc) Handle(request *Request) (*Response, error) {
	return f(request)
}

type Route struct {
	Path    string
	Handler Handler
}

var NotFoundHandler Handler = HandlerFunc(func(request *Request) (*Response, error) {
	return NewResponse(http.StatusNotFound), nil
})
