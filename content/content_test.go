package content

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPayloads(t *testing.T) {
	assert.True(t, bytes.HasPrefix(Image(), []byte("\x89PNG\r\n\x1a\n")), "image is not a PNG")
	assert.True(t, bytes.HasPrefix(PDF(), []byte("%PDF-")), "pdf has no PDF header")
	assert.Equal(t, "neki text 1", Text)
}

func TestRenderIndex(t *testing.T) {
	links := Links{
		Image: "res/image1",
		PDF:   "res/pdf1",
		Text:  "res/text1",
		HTML:  "html",
	}

	page, err := RenderIndex(links)
	require.NoError(t, err)

	for _, href := range []string{"res/image1", "res/pdf1", "res/text1", "html"} {
		assert.Contains(t, string(page), `href="`+href+`"`)
	}

	again, err := RenderIndex(links)
	require.NoError(t, err)
	assert.Equal(t, page, again)
}

func TestRenderIndexEscapesLinks(t *testing.T) {
	page, err := RenderIndex(Links{Image: `javascript:alert("x")`})
	require.NoError(t, err)

	assert.NotContains(t, string(page), "javascript:")
}
