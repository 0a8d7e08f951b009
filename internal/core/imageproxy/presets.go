package imageproxy

// FitMode defines how an image should be fitted to the target dimensions.
type FitMode string

const (
	// FitCover scales the image to cover the target dimensions, cropping if necessary.
	FitCover FitMode = "cover"
	// FitContain scales the image to fit within the target width, preserving aspect ratio.
	FitContain FitMode = "contain"
)

// String returns the string representation of the FitMode.
func (f FitMode) String() string {
	return string(f)
}

// Preset is a named output size for proxied images.
type Preset struct {
	Name    string
	Fit     FitMode
	Width   int
	Height  int
	Quality int
}

// Validate checks that the preset has usable values.
func (p Preset) Validate() error {
	switch {
	case p.Name == "", p.Width <= 0:
		return ErrInvalidPreset
	case p.Fit == FitCover && p.Height <= 0:
		return ErrInvalidPreset
	case p.Quality < 1 || p.Quality > 100:
		return ErrInvalidPreset
	case p.Fit != FitCover && p.Fit != FitContain:
		return ErrInvalidPreset
	}
	return nil
}

// MaxCoverWidth is the widest cover image sent to the backend.
const MaxCoverWidth = 1600

// CoverUpload is applied to cover images before they are uploaded.
var CoverUpload = Preset{Name: "cover_upload", Width: MaxCoverWidth, Fit: FitContain, Quality: 85}

var presets = map[string]Preset{
	"avatar":       {Name: "avatar", Width: 96, Height: 96, Fit: FitCover, Quality: 85},
	"avatar_large": {Name: "avatar_large", Width: 256, Height: 256, Fit: FitCover, Quality: 85},
	"post_card":    {Name: "post_card", Width: 640, Height: 360, Fit: FitCover, Quality: 80},
	"post_cover":   {Name: "post_cover", Width: 1200, Fit: FitContain, Quality: 85},
}

// GetPreset returns the preset configuration for the given name.
func GetPreset(name string) (Preset, error) {
	preset, ok := presets[name]
	if !ok {
		return Preset{}, ErrInvalidPreset
	}
	return preset, nil
}

// ListPresets returns all available presets.
func ListPresets() []Preset {
	result := make([]Preset, 0, len(presets))
	for _, p := range presets {
		result = append(result, p)
	}
	return result
}
