package imageproxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"Welog/internal/core/imageproxy"
)

type stubService struct {
	data  []byte
	err   error
	calls int
}

func (s *stubService) GetImage(ctx context.Context, preset, folder, name string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/media/{preset}/{folder}/{name}", h.HandleImage)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleImage_Success(t *testing.T) {
	svc := &stubService{data: []byte("jpeg")}
	rec := serve(NewHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/media/avatar/users/ada.png", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `"avatar-users-ada.png"`, rec.Header().Get("ETag"))
	assert.Equal(t, "jpeg", rec.Body.String())
}

func TestHandleImage_NotModified(t *testing.T) {
	svc := &stubService{data: []byte("jpeg")}
	req := httptest.NewRequest(http.MethodGet, "/media/avatar/users/ada.png", nil)
	req.Header.Set("If-None-Match", `"avatar-users-ada.png"`)

	rec := serve(NewHandler(svc, nil), req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestHandleImage_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "unknown preset", path: "/media/huge/posts/a.png"},
		{name: "unknown folder", path: "/media/avatar/etc/a.png"},
		{name: "hidden file", path: "/media/avatar/posts/.env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rec := serve(NewHandler(svc, nil), httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestHandleImage_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{imageproxy.ErrImageNotFound, http.StatusNotFound},
		{imageproxy.ErrFetchTimeout, http.StatusGatewayTimeout},
		{imageproxy.ErrFetchFailed, http.StatusBadGateway},
		{imageproxy.ErrUnsupportedFormat, http.StatusUnprocessableEntity},
		{imageproxy.ErrProcessingFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &stubService{err: tt.err}
			rec := serve(NewHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/media/post_card/posts/a.png", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
