package imageproxy

import "errors"

var (
	// ErrInvalidPreset is returned when a preset name is not found in the preset registry.
	ErrInvalidPreset = errors.New("invalid image preset")

	// ErrInvalidFolder is returned when the image folder is neither posts nor users.
	ErrInvalidFolder = errors.New("invalid image folder")

	// ErrInvalidName is returned when an image file name is empty or could escape its folder.
	ErrInvalidName = errors.New("invalid image name")

	// ErrFetchFailed is returned when fetching an image from the backend fails for any reason.
	ErrFetchFailed = errors.New("failed to fetch image from backend")

	// ErrImageNotFound is returned when the backend has no image under that name.
	ErrImageNotFound = errors.New("image not found")

	// ErrFetchTimeout is returned when a backend request exceeds the configured timeout.
	ErrFetchTimeout = errors.New("image request timed out")

	// ErrUnsupportedFormat is returned when the source image format cannot be processed.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageTooLarge is returned when the source image exceeds the maximum allowed size.
	ErrImageTooLarge = errors.New("source image exceeds size limit")

	// ErrProcessingFailed is returned when image processing fails for any reason.
	ErrProcessingFailed = errors.New("image processing failed")

	// ErrNilDependency is returned when a required dependency is nil.
	ErrNilDependency = errors.New("required dependency is nil")
)
