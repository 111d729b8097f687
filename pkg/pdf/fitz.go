package pdf

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer renders PDFs through MuPDF.
type FitzRenderer struct{}

var _ Renderer = &FitzRenderer{}

func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

func (r *FitzRenderer) PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

func (r *FitzRenderer) RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (total %d)", pageIndex, doc.NumPage())
	}

	if scale <= 0 {
		scale = 1.0
	}
	img, err := doc.ImageDPI(pageIndex, 72.0*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageIndex, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", pageIndex, err)
	}
	return buf.Bytes(), nil
}
