package classifier

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestPreprocess_ShapeAndNormalization(t *testing.T) {
	path := writePNG(t, 640, 480, color.White)

	data, err := preprocess(path)
	require.NoError(t, err)
	require.Len(t, data, 3*inputSide*inputSide)

	// A white image normalizes each channel to (1 - mean) / std.
	plane := inputSide * inputSide
	for c := 0; c < 3; c++ {
		want := (1 - chanMean[c]) / chanStd[c]
		assert.InDelta(t, want, data[c*plane], 1e-5, "channel %d", c)
	}
}

func TestPreprocess_BlackImage(t *testing.T) {
	path := writePNG(t, 32, 32, color.Black)

	data, err := preprocess(path)
	require.NoError(t, err)

	plane := inputSide * inputSide
	for c := 0; c < 3; c++ {
		want := (0 - chanMean[c]) / chanStd[c]
		assert.InDelta(t, want, data[c*plane], 1e-5, "channel %d", c)
	}
}

func TestPreprocess_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not image bytes"), 0o644))

	_, err := preprocess(path)
	assert.Error(t, err)
}

func TestPreprocess_Missing(t *testing.T) {
	_, err := preprocess(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestStatic_Heads(t *testing.T) {
	want := Logits{
		Defect:   []float32{1, 0, 0, 0, 0, 0},
		Severity: []float32{0, 1, 0},
		Location: []float32{0, 0, 1},
	}
	s := &Static{Out: want}

	got, err := s.Heads(t.Context(), "any.jpg")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, s.Close())
}
