package imageproxy

import (
	"regexp"
	"strings"
)

// Folders the backend serves images from.
const (
	FolderPosts = "posts"
	FolderUsers = "users"
)

const maxNameLength = 255

// names the backend generates: alphanumerics, dashes, underscores and dots.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateFolder accepts only the folders the backend serves.
func ValidateFolder(folder string) error {
	if folder != FolderPosts && folder != FolderUsers {
		return ErrInvalidFolder
	}
	return nil
}

// ValidateName rejects names that could escape the folder or that the backend
// never produces.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLength || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	if !namePattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// ValidatePreset validates that a preset name is safe and exists.
func ValidatePreset(preset string) error {
	if preset == "" || strings.ContainsAny(preset, `/\`) || strings.Contains(preset, "..") {
		return ErrInvalidPreset
	}
	_, err := GetPreset(preset)
	return err
}

// sanitizePathComponent strips anything that could turn a key into a path.
func sanitizePathComponent(s string) string {
	r := strings.NewReplacer("/", "", `\`, "", "..", "", "\x00", "", ":", "_")
	return r.Replace(s)
}
