package media

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
)

// FrameDelta returns the mean absolute luminance difference between two
// frames on a 0-255 scale. Frames of different dimensions compare over the
// overlapping region.
func FrameDelta(a, b image.Image) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	w := ab.Dx()
	if bb.Dx() < w {
		w = bb.Dx()
	}
	h := ab.Dy()
	if bb.Dy() < h {
		h = bb.Dy()
	}
	if w == 0 || h == 0 {
		return 0
	}

	var total float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			total += math.Abs(luminance(a.At(ab.Min.X+x, ab.Min.Y+y)) - luminance(b.At(bb.Min.X+x, bb.Min.Y+y)))
		}
	}
	return total / float64(w*h)
}

func luminance(c interface {
	RGBA() (r, g, b, a uint32)
}) float64 {
	r, g, b, _ := c.RGBA()
	// ITU-R BT.601, scaled back to 0-255
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
}

// SelectKeyFrames keeps frames whose delta against the previously kept frame
// exceeds the motion threshold. The first and last frame are always kept, so
// any non-empty input yields at least one key frame and a multi-frame input
// yields at least two. Output preserves timestamp order.
func SelectKeyFrames(frames []DecodedFrame, threshold float64) []DecodedFrame {
	if len(frames) == 0 {
		return nil
	}

	selected := []DecodedFrame{frames[0]}
	last := frames[0]

	for i := 1; i < len(frames)-1; i++ {
		if FrameDelta(last.Image, frames[i].Image) > threshold {
			selected = append(selected, frames[i])
			last = frames[i]
		}
	}

	if len(frames) > 1 {
		selected = append(selected, frames[len(frames)-1])
	}
	return selected
}

// DecodeFrames loads sampled frames from disk. A frame that fails to decode
// is skipped; the caller records the gap.
func DecodeFrames(frames []Frame) ([]DecodedFrame, []error) {
	var decoded []DecodedFrame
	var errs []error
	for _, f := range frames {
		img, err := loadImage(f.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("frame at %.1fs: %w", f.Timestamp, err))
			continue
		}
		decoded = append(decoded, DecodedFrame{
			Timestamp: f.Timestamp,
			Path:      f.Path,
			Image:     img,
		})
	}
	return decoded, errs
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}
