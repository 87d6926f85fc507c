package images

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func encodedImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestRenderFitsWithinEdge(t *testing.T) {
	src := encodedImage(t, 800, 600, imaging.JPEG)

	out, err := Render(bytes.NewReader(src), 256, imaging.JPEG)
	require.NoError(t, err)

	thumb, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	// Aspect ratio preserved, long edge capped.
	require.Equal(t, 256, thumb.Bounds().Dx())
	require.Equal(t, 192, thumb.Bounds().Dy())
}

func TestRenderDoesNotUpscale(t *testing.T) {
	src := encodedImage(t, 100, 80, imaging.PNG)

	out, err := Render(bytes.NewReader(src), 256, imaging.PNG)
	require.NoError(t, err)

	thumb, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 100, thumb.Bounds().Dx())
	require.Equal(t, 80, thumb.Bounds().Dy())
}

func TestRenderRejectsGarbage(t *testing.T) {
	_, err := Render(bytes.NewReader([]byte("not an image")), 256, imaging.JPEG)
	require.Error(t, err)
}
