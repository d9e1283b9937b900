// Package routes registers the fixed resources of mimetest on a router.
package routes

import (
	nethttp "net/http"

	"github.com/freekieb7/mimetest/content"
	"github.com/freekieb7/mimetest/http"
)

// Route keys, relative to the site root. The index page links to them
// as relative URLs.
const (
	IndexPath = ""
	ImagePath = "res/image1"
	PDFPath   = "res/pdf1"
	TextPath  = "res/text1"
	HTMLPath  = "html"
	ErrorPath = "error"
)

const (
	ContentTypeHTML  = "text/html; charset=utf-8"
	ContentTypePNG   = "image/png"
	ContentTypePDF   = "application/pdf"
	ContentTypePlain = "text/plain"
)

// Options are fixed at startup and apply to every route.
type Options struct {
	// CorrectMIMEs serves real media types; otherwise a made-up mytype/* is sent.
	CorrectMIMEs bool
	// Download sends attachment dispositions; otherwise inline.
	Download bool
}

type resource struct {
	path        string
	contentType string
	bogusType   string
	filename    []byte
	body        func() ([]byte, error)
}

type Resources struct {
	options Options
	render  func(content.Links) ([]byte, error)
}

func New(options Options) *Resources {
	return &Resources{
		options: options,
		render:  content.RenderIndex,
	}
}

// Register is a shorthand for New(options).Register(router).
func Register(router *http.Router, options Options) {
	New(options).Register(router)
}

func (resources *Resources) Register(router *http.Router) {
	router.HandleFunc(IndexPath, resources.index)

	for _, res := range resources.list() {
		router.Handle(res.path, resources.serve(res))
	}

	router.HandleFunc(ErrorPath, clientError)
}

func (resources *Resources) list() []resource {
	return []resource{
		{
			path:        ImagePath,
			contentType: ContentTypePNG,
			bogusType:   "mytype/forimg",
			filename:    []byte("image.png"),
			body:        staticBody(content.Image()),
		},
		{
			path:        PDFPath,
			contentType: ContentTypePDF,
			bogusType:   "mytype/forpdf",
			filename:    []byte("sample-pdf.pdf"),
			body:        staticBody(content.PDF()),
		},
		{
			path:        TextPath,
			contentType: ContentTypePlain,
			bogusType:   "mytype/fortext",
			filename:    []byte("text.txt"),
			body:        staticBody([]byte(content.Text)),
		},
		{
			path:        HTMLPath,
			contentType: ContentTypeHTML,
			bogusType:   "mytype/forhtml",
			filename:    []byte("page.html"),
			body:        resources.renderIndex,
		},
	}
}

func staticBody(body []byte) func() ([]byte, error) {
	return func() ([]byte, error) {
		return body, nil
	}
}

func (resources *Resources) renderIndex() ([]byte, error) {
	return resources.render(content.Links{
		Image: ImagePath,
		PDF:   PDFPath,
		Text:  TextPath,
		HTML:  HTMLPath,
	})
}

// index is shown in the browser, so it never carries a disposition.
func (resources *Resources) index(request *http.Request) (*http.Response, error) {
	page, err := resources.renderIndex()
	if err != nil {
		return nil, err
	}

	return http.NewResponse(nethttp.StatusOK).
		WithContentType(ContentTypeHTML).
		WithBody(page), nil
}

func (resources *Resources) serve(res resource) http.Handler {
	contentType := res.bogusType
	if resources.options.CorrectMIMEs {
		contentType = res.contentType
	}
	disposition := http.BuildDisposition(res.filename, resources.options.Download)

	return http.HandlerFunc(func(request *http.Request) (*http.Response, error) {
		body, err := res.body()
		if err != nil {
			return nil, err
		}

		return http.NewResponse(nethttp.StatusOK).
			WithContentType(contentType).
			WithDisposition(disposition).
			WithBody(body), nil
	})
}

func clientError(request *http.Request) (*http.Response, error) {
	return http.NewResponse(nethttp.StatusBadRequest), nil
}
