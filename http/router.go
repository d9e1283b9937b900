package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/freekieb7/mimetest/http"
	unmatchedRoute      = "<unmatched>"
)

var ErrNoResponse = errors.New("http: handler returned no response")

var (
	meter           = otel.Meter(instrumentationName)
	responseCounter metric.Int64Counter
)

func init() {
	var err error
	responseCounter, err = meter.Int64Counter("mimetest.responses",
		metric.WithDescription("The number of responses by route and status"),
		metric.WithUnit("{response}"))
	if err != nil {
		panic(err)
	}
}

// Router maps exact route keys to handlers. Routes are registered before the
// server starts; after Freeze the table is only read, so lookups from
// concurrent connections take no lock.
type Router struct {
	Logger *slog.Logger

	routes map[string]Handler
	frozen atomic.Bool
}

func NewRouter() *Router {
	return &Router{
		Logger: slog.Default(),
		routes: make(map[string]Handler),
	}
}

// Handle registers handler for the exact route key path, overwriting any
// previous handler. The root page is registered under "".
func (router *Router) Handle(path string, handler Handler) {
	if router.frozen.Load() {
		panic("http: route " + strconv.Quote(path) + " registered after the router was frozen")
	}

	router.routes[path] = handler
}

func (router *Router) HandleFunc(path string, handler HandlerFunc) {
	router.Handle(path, handler)
}

// Freeze ends registration. Calling it more than once is harmless.
func (router *Router) Freeze() {
	router.frozen.Store(true)
}

func (router *Router) Lookup(path string) (Handler, bool) {
	handler, found := router.routes[path]
	return handler, found
}

// Routes lists the registered routes sorted by path.
func (router *Router) Routes() []Route {
	routes := make([]Route, 0, len(router.routes))
	for path, handler := range router.routes {
		routes = append(routes, Route{Path: path, Handler: handler})
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// CanonicalPath turns a URL path into a route key: the path segments joined
// by "/" without the leading slash. "/" yields "" and "/res/pdf1" yields
// "res/pdf1"; trailing and doubled slashes are kept and so never match a
// registered key.
func CanonicalPath(urlPath string) string {
	return strings.TrimPrefix(urlPath, "/")
}

// Dispatch runs the handler registered for the request's route key, or
// NotFoundHandler when there is none. Handler errors are returned as is.
func (router *Router) Dispatch(request *Request) (*Response, error) {
	handler, found := router.Lookup(request.Path())
	if !found {
		handler = NotFoundHandler
	}

	return handler.Handle(request)
}

func (router *Router) dispatchSafe(request *Request) (response *Response, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			response = nil
			err = fmt.Errorf("http: handler panic: %v", recovered)
		}
	}()

	response, err = router.Dispatch(request)
	if err == nil && response == nil {
		err = ErrNoResponse
	}

	return response, err
}

// ServeHTTP dispatches r. A failing handler is answered with an empty 500,
// the process keeps serving.
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	request := NewRequest(r)
	ctx := request.Context()
	route := request.Path()
	requestID := uuid.NewString()

	// Unregistered keys are folded together to bound metric cardinality.
	routeAttr := attribute.String("route", unmatchedRoute)
	if _, found := router.Lookup(route); found {
		routeAttr = attribute.String("route", route)
	}
	trace.SpanFromContext(ctx).SetAttributes(routeAttr)

	response, err := router.dispatchSafe(request)
	if err != nil {
		router.Logger.ErrorContext(ctx, "handler failed",
			"request_id", requestID,
			"method", request.Method(),
			"route", route,
			"error", err)
		response = NewResponse(http.StatusInternalServerError)
	}

	if err := response.WriteTo(w); err != nil {
		router.Logger.WarnContext(ctx, "writing response failed",
			"request_id", requestID,
			"route", route,
			"error", err)
	}

	responseCounter.Add(ctx, 1, metric.WithAttributes(routeAttr, attribute.Int("status", response.Status)))

	attrs := []any{
		"request_id", requestID,
		"method", request.Method(),
		"path", r.URL.Path,
		"route", route,
		"status", response.Status,
		"bytes", len(response.Body),
		"user_agent", request.Header("User-Agent"),
	}
	if value, found := response.HeaderValue(HeaderContentDisposition); found {
		if disposition, err := ParseDisposition(value); err == nil {
			attrs = append(attrs, "filename", disposition.FilenameUTF8())
		}
	}
	router.Logger.InfoContext(ctx, "request served", attrs...)
}
