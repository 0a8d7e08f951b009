package web

import (
	"net/url"
	"regexp"
	"strings"

	"Welog/internal/core/posts"
)

// ImageLinks turns stored image names into URLs. With Proxy set, bare names
// go through the local /media image proxy in the requested preset; otherwise
// they point straight at the backend's /img folder.
type ImageLinks struct {
	Origin string
	Proxy  bool
}

// URL returns the address of image name in folder, "" when name is empty.
func (l ImageLinks) URL(preset, folder, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") || !l.Proxy {
		return posts.ImageURL(l.Origin, folder, name)
	}
	return "/media/" + preset + "/" + folder + "/" + url.PathEscape(strings.TrimLeft(name, "/"))
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, " ")
}
