package ocr

import "context"

// BoundingBox is an axis-aligned region in page coordinates.
type BoundingBox struct {
	X float64
	Y float64
	W float64
	H float64
}

func (b BoundingBox) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// BoxFromPolygon converts a flat x1,y1,x2,y2,... polygon into its bounding box.
func BoxFromPolygon(polygon []float64) BoundingBox {
	if len(polygon) < 4 {
		return BoundingBox{}
	}
	minX, minY := polygon[0], polygon[1]
	maxX, maxY := polygon[0], polygon[1]
	for i := 0; i+1 < len(polygon); i += 2 {
		x, y := polygon[i], polygon[i+1]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return BoundingBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

type Line struct {
	Content string
	Box     BoundingBox
}

type Page struct {
	Number int // 1-based within the analyzed range
	Width  float64
	Height float64
	Lines  []Line
}

// Figure is an image region detected by layout analysis.
type Figure struct {
	PageNumber int
	Box        BoundingBox
}

type Result struct {
	Pages   []Page
	Figures []Figure
}

// DocumentAnalyzer extracts per-page text lines and image regions from raw
// document or image bytes. pageRange is a 1-based "start-end" selector;
// empty means all pages.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, data []byte, pageRange string) (*Result, error)
}
