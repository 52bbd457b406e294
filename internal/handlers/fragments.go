package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin/render"
)

// Fragments renders a registered template into memory instead of the response,
// for parts of a page that are cached apart from the viewer-specific layout.
type Fragments struct {
	html render.HTMLRender
}

func NewFragments(html render.HTMLRender) *Fragments {
	return &Fragments{html: html}
}

func (f *Fragments) Render(name string, data any) ([]byte, error) {
	w := &fragmentWriter{header: http.Header{}}
	if err := f.html.Instance(name, data).Render(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

type fragmentWriter struct {
	bytes.Buffer
	header http.Header
}

func (w *fragmentWriter) Header() http.Header {
	return w.header
}

func (w *fragmentWriter) WriteHeader(int) {}
