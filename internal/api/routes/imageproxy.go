package routes

import (
	"github.com/go-chi/chi/v5"

	imageproxyhandlers "Welog/internal/api/handlers/imageproxy"
)

// RegisterImageProxyRoutes registers the resized image endpoint on the router.
// The proxy serves preset renditions of images stored by the Welog API.
//
// Route: GET /media/{preset}/{folder}/{name}
//
// Parameters:
//   - preset: Image transformation preset (e.g., "avatar", "post_card", "post_cover")
//   - folder: Upload folder on the API ("users" or "posts")
//   - name: File name of the upload
//
// The endpoint supports ETag-based caching with If-None-Match headers.
func RegisterImageProxyRoutes(r chi.Router, handler *imageproxyhandlers.Handler) {
	r.Get("/media/{preset}/{folder}/{name}", handler.HandleImage)
}
