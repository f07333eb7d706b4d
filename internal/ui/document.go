package ui

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"AnnotateBoard/internal/scope"
)

// Document is the page image being annotated, laid out at most maxWidth wide.
type Document struct {
	img      image.Image
	maxWidth float64
}

var _ scope.Image = (*Document)(nil)

// NewDocument lays img out at its natural size, shrunk to maxWidth if it is
// wider. A zero maxWidth keeps the natural size.
func NewDocument(img image.Image, maxWidth float64) *Document {
	return &Document{img: img, maxWidth: maxWidth}
}

func (d *Document) Image() image.Image { return d.img }

func (d *Document) RenderedSize() (float64, float64) {
	b := d.img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if d.maxWidth > 0 && w > d.maxWidth {
		h = h * d.maxWidth / w
		w = d.maxWidth
	}
	return w, h
}

// DecodeDocument reads a PNG or JPEG page image.
func DecodeDocument(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return img, nil
}

func OpenDocument(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeDocument(f)
}
