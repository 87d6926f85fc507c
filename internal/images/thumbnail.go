package images

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Render decodes an image and re-encodes it as a thumbnail that fits
// within an edge x edge box, preserving aspect ratio. Small images pass
// through at their original size rather than being scaled up.
func Render(r io.Reader, edge int, format imaging.Format) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fit(img, edge, edge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
