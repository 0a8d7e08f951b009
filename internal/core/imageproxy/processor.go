package imageproxy

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Processor resizes images.
type Processor interface {
	// Process transforms image data according to the preset and returns JPEG bytes.
	Process(data []byte, preset Preset) ([]byte, error)
}

// ImageProcessor implements Processor with the imaging library. It also
// prepares cover images for upload.
type ImageProcessor struct{}

// NewProcessor creates a new ImageProcessor instance.
func NewProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// Process decodes data, fits it to the preset and encodes it as JPEG.
func (p *ImageProcessor) Process(data []byte, preset Preset) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	var processed image.Image
	switch preset.Fit {
	case FitCover:
		processed = imaging.Fill(img, preset.Width, preset.Height, imaging.Center, imaging.Lanczos)
	case FitContain:
		processed = fitWidth(img, preset.Width, preset.Height)
	default:
		return nil, fmt.Errorf("%w: unknown fit mode %q", ErrProcessingFailed, preset.Fit)
	}
	return encodeJPEG(processed, preset.Quality)
}

// PrepareCover returns the bytes to upload as a post cover and their content
// type. Images no wider than MaxCoverWidth are passed through unchanged;
// wider ones are downscaled and re-encoded as JPEG.
func (p *ImageProcessor) PrepareCover(data []byte) ([]byte, string, error) {
	img, err := decode(data)
	if err != nil {
		return nil, "", err
	}
	if img.Bounds().Dx() <= CoverUpload.Width {
		return data, http.DetectContentType(data), nil
	}
	out, err := encodeJPEG(fitWidth(img, CoverUpload.Width, 0), CoverUpload.Quality)
	if err != nil {
		return nil, "", err
	}
	return out, "image/jpeg", nil
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrUnsupportedFormat)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if bytes.Contains([]byte(err.Error()), []byte("unknown format")) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: decoding image: %v", ErrProcessingFailed, err)
	}
	if format != "jpeg" && format != "png" && format != "webp" {
		return nil, fmt.Errorf("%w: format %s", ErrUnsupportedFormat, format)
	}
	return img, nil
}

// fitWidth scales img down to maxWidth keeping its aspect ratio, then to
// maxHeight when set. Smaller images are not upscaled.
func fitWidth(img image.Image, maxWidth, maxHeight int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxWidth {
		return img
	}
	newW, newH := maxWidth, int(float64(h)*float64(maxWidth)/float64(w))
	if maxHeight > 0 && newH > maxHeight {
		newW, newH = int(float64(w)*float64(maxHeight)/float64(h)), maxHeight
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: encoding JPEG: %v", ErrProcessingFailed, err)
	}
	return buf.Bytes(), nil
}
