package imageproxy

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProcess(t *testing.T) {
	p := NewProcessor()
	tests := []struct {
		name         string
		srcW, srcH   int
		preset       Preset
		wantW, wantH int
	}{
		{name: "cover crops to exact size", srcW: 400, srcH: 200, preset: presets["avatar"], wantW: 96, wantH: 96},
		{name: "contain scales by width", srcW: 2400, srcH: 1200, preset: presets["post_cover"], wantW: 1200, wantH: 600},
		{name: "contain never upscales", srcW: 300, srcH: 100, preset: presets["post_cover"], wantW: 300, wantH: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(testPNG(t, tt.srcW, tt.srcH), tt.preset)
			require.NoError(t, err)

			_, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			w, h := decodeSize(t, out)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestProcess_BadInput(t *testing.T) {
	p := NewProcessor()

	_, err := p.Process(nil, presets["avatar"])
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Process([]byte("definitely not an image"), presets["avatar"])
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Process(testPNG(t, 10, 10), Preset{Name: "x", Width: 10, Fit: "stretch", Quality: 80})
	assert.ErrorIs(t, err, ErrProcessingFailed)
}

func TestPrepareCover(t *testing.T) {
	p := NewProcessor()

	t.Run("narrow image passes through", func(t *testing.T) {
		src := testPNG(t, 800, 400)
		out, contentType, err := p.PrepareCover(src)
		require.NoError(t, err)
		assert.Equal(t, src, out)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("wide image is downscaled to jpeg", func(t *testing.T) {
		out, contentType, err := p.PrepareCover(testPNG(t, 3200, 800))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", contentType)
		w, h := decodeSize(t, out)
		assert.Equal(t, MaxCoverWidth, w)
		assert.Equal(t, 400, h)
	})

	t.Run("jpeg within limit keeps its type", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 50, 50)), nil))
		_, contentType, err := p.PrepareCover(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", contentType)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, _, err := p.PrepareCover([]byte("nope"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
