package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// DataURIPrefix is the only image format the annotation endpoint accepts.
const DataURIPrefix = "data:image/png;base64,"

var ErrNotPNGDataURI = errors.New("image must be a base64 PNG data URI")

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI encodes img the way a browser canvas' toDataURL("image/png") does.
func DataURI(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI returns the PNG bytes of a data URI produced by DataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return nil, ErrNotPNGDataURI
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return data, nil
}

// PDF writes a single page, sized to img in points, holding img.
func PDF(w io.Writer, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	b := img.Bounds()
	wd, ht := float64(b.Dx()), float64(b.Dy())

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	p.AddPage()
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("annotation", opt, bytes.NewReader(data))
	p.ImageOptions("annotation", 0, 0, wd, ht, false, opt, 0, "")
	return p.Output(w)
}
