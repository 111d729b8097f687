package imaging

import (
	"bytes"
	"fmt"

	img "github.com/disintegration/imaging"
)

// CompressJPEG decodes any supported image, fits it inside
// maxWidth x maxHeight preserving aspect ratio, and re-encodes as JPEG at the
// given quality (1-100).
func CompressJPEG(data []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	src, err := img.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fitted := img.Fit(src, maxWidth, maxHeight, img.Lanczos)

	var buf bytes.Buffer
	if err := img.Encode(&buf, fitted, img.JPEG, img.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
