// Package content holds the static payloads served by mimetest. Everything
// is compiled into the binary, nothing is read from disk at request time.
package content

import (
	"bytes"
	_ "embed"
	"html/template"
)

// Text is the body of the plain text resource.
const Text = "neki text 1"

var (
	//go:embed res/chess-pattern.png
	image []byte

	//go:embed res/pdf-sample.pdf
	pdf []byte

	//go:embed index.html
	indexSource string

	indexTemplate = template.Must(template.New("index").Parse(indexSource))
)

// Links are the hrefs rendered into the index page.
type Links struct {
	Image string
	PDF   string
	Text  string
	HTML  string
}

// Image returns the embedded PNG. Callers must not modify it.
func Image() []byte {
	return image
}

// PDF returns the embedded PDF document. Callers must not modify it.
func PDF() []byte {
	return pdf
}

// RenderIndex executes the index template into a fresh buffer.
func RenderIndex(links Links) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, links); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
