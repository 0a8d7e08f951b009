package imageproxy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "generated name", input: "post-12-1714556400.jpeg", valid: true},
		{name: "uuid name", input: "3f2b8c1e_cover.png", valid: true},
		{name: "empty", input: "", valid: false},
		{name: "traversal", input: "../secret", valid: false},
		{name: "dots inside", input: "a..b.png", valid: false},
		{name: "slash", input: "a/b.png", valid: false},
		{name: "backslash", input: `a\b.png`, valid: false},
		{name: "leading dot", input: ".hidden", valid: false},
		{name: "null byte", input: "a\x00.png", valid: false},
		{name: "too long", input: strings.Repeat("a", 256), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidName)
			}
		})
	}
}

func TestValidateFolder(t *testing.T) {
	assert.NoError(t, ValidateFolder(FolderPosts))
	assert.NoError(t, ValidateFolder(FolderUsers))
	assert.ErrorIs(t, ValidateFolder("secrets"), ErrInvalidFolder)
	assert.ErrorIs(t, ValidateFolder(""), ErrInvalidFolder)
}

func TestValidatePreset(t *testing.T) {
	for _, p := range ListPresets() {
		assert.NoError(t, ValidatePreset(p.Name), p.Name)
		assert.NoError(t, p.Validate(), p.Name)
	}
	assert.NoError(t, CoverUpload.Validate())
	assert.ErrorIs(t, ValidatePreset("../avatar"), ErrInvalidPreset)
	assert.ErrorIs(t, ValidatePreset("banner"), ErrInvalidPreset)
	assert.ErrorIs(t, ValidatePreset(""), ErrInvalidPreset)
}

func TestPreset_Validate(t *testing.T) {
	tests := []struct {
		name   string
		preset Preset
	}{
		{name: "no name", preset: Preset{Width: 10, Fit: FitContain, Quality: 80}},
		{name: "cover without height", preset: Preset{Name: "x", Width: 10, Fit: FitCover, Quality: 80}},
		{name: "quality out of range", preset: Preset{Name: "x", Width: 10, Fit: FitContain, Quality: 101}},
		{name: "unknown fit", preset: Preset{Name: "x", Width: 10, Fit: "fill", Quality: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.preset.Validate(), ErrInvalidPreset)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.CachePath = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCachePath)
	cfg.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.CacheMaxMB = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCacheMaxMB)

	cfg = DefaultConfig()
	cfg.CacheTTLDays = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCacheTTL)
}
