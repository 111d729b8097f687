package pdf

// Renderer gives the pipeline page counts and page images without tying it
// to a concrete PDF engine.
type Renderer interface {
	PageCount(data []byte) (int, error)
	// RenderPage rasterizes a 0-based page to PNG bytes at the given upscale
	// factor (1.0 = 72 DPI).
	RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error)
}
