package http

import (
	"net/http"
)

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
)

type Header struct {
	Name  string
	Value string
}

// Response is built by handlers and written out by the router. Headers keep
// the order they were first set in.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

func NewResponse(status int) *Response {
	return &Response{
		Status:  status,
		Headers: make([]Header, 0, 2),
	}
}

// WithHeader sets name to value, replacing an earlier value in place.
func (response *Response) WithHeader(name, value string) *Response {
	name = http.CanonicalHeaderKey(name)
	for i := range response.Headers {
		if response.Headers[i].Name == name {
			response.Headers[i].Value = value
			return response
		}
	}

	response.Headers = append(response.Headers, Header{Name: name, Value: value})
	return response
}

func (response *Response) WithContentType(contentType string) *Response {
	return response.WithHeader(HeaderContentType, contentType)
}

func (response *Response) WithDisposition(disposition Disposition) *Response {
	return response.WithHeader(HeaderContentDisposition, disposition.String())
}

func (response *Response) WithBody(body []byte) *Response {
	response.Body = body
	return response
}

func (response *Response) WithText(payload string) *Response {
	response.WithContentType("text/plain")
	response.Body = []byte(payload)
	return response
}

func (response *Response) HeaderValue(name string) (string, bool) {
	name = http.CanonicalHeaderKey(name)
	for _, header := range response.Headers {
		if header.Name == name {
			return header.Value, true
		}
	}

	return "", false
}

// WriteTo emits the response on w. Headers already present on w, such as
// Alt-Svc set by the server, are kept.
func (response *Response) WriteTo(w http.ResponseWriter) error {
	header := w.Header()
	for _, h := range response.Headers {
		header[h.Name] = []string{h.Value}
	}

	w.WriteHeader(response.Status)

	if len(response.Body) == 0 {
		return nil
	}

	_, err := w.Write(response.Body)
	return err
}
