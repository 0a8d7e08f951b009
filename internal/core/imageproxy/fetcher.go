package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves original images from the backend.
type Fetcher interface {
	Fetch(ctx context.Context, folder, name string) ([]byte, error)
}

// OriginFetcher fetches images from the backend's static /img directory.
type OriginFetcher struct {
	client       *http.Client
	origin       string
	maxSizeBytes int64
}

// DefaultMaxSourceSizeMB is the default maximum source image size if not configured.
const DefaultMaxSourceSizeMB = 10

// NewOriginFetcher creates a fetcher for origin. maxSizeMB of 0 uses the default.
func NewOriginFetcher(origin string, timeout time.Duration, maxSizeMB int) *OriginFetcher {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSourceSizeMB
	}
	return &OriginFetcher{
		client:       &http.Client{Timeout: timeout},
		origin:       strings.TrimRight(origin, "/"),
		maxSizeBytes: int64(maxSizeMB) << 20,
	}
}

// Fetch downloads <origin>/img/<folder>/<name>.
func (f *OriginFetcher) Fetch(ctx context.Context, folder, name string) ([]byte, error) {
	target := f.origin + "/img/" + url.PathEscape(folder) + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "Welog-ImageProxy/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchTimeout, ctx.Err())
		}
		var te interface{ Timeout() bool }
		if errors.As(err, &te) && te.Timeout() {
			return nil, fmt.Errorf("%w: request timed out", ErrFetchTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrImageNotFound
	default:
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetchFailed, resp.StatusCode)
	}

	if resp.ContentLength > f.maxSizeBytes {
		return nil, fmt.Errorf("%w: content length %d exceeds maximum %d bytes",
			ErrImageTooLarge, resp.ContentLength, f.maxSizeBytes)
	}
	// Read one byte past the limit to detect bodies without a correct Content-Length.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > f.maxSizeBytes {
		return nil, fmt.Errorf("%w: body exceeds maximum %d bytes", ErrImageTooLarge, f.maxSizeBytes)
	}
	return data, nil
}
