package posts

import "strings"

// Image folders served by the backend next to the API.
const (
	PostImages = "posts"
	UserImages = "users"
)

// ImageURL resolves a stored image name to a URL. Names that are already
// absolute URLs are returned unchanged; bare file names are served from
// <origin>/img/<folder>/<name>. An empty name yields "".
func ImageURL(origin, folder, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	return strings.TrimRight(origin, "/") + "/img/" + folder + "/" + strings.TrimLeft(name, "/")
}

// CoverURL returns the cover image URL of the post, "" when it has none.
func (p *Post) CoverURL(origin string) string {
	if p == nil {
		return ""
	}
	return ImageURL(origin, PostImages, p.CoverImage)
}
