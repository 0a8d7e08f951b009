// Package imageproxy serves resized copies of the images the Welog backend
// stores for posts and users, and shrinks cover images before upload.
//
//   - Service: orchestrates caching, fetching and processing
//   - Cache: disk LRU with TTL expiry
//   - Fetcher: reads originals from <origin>/img/{folder}/{name}
//   - Processor: fits images to presets with disintegration/imaging
package imageproxy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Service returns processed images.
type Service interface {
	GetImage(ctx context.Context, preset, folder, name string) ([]byte, error)
}

// Metrics counts cache behaviour of the proxy. A nil *Metrics records nothing.
type Metrics struct {
	lookups     *prometheus.CounterVec
	writeErrors prometheus.Counter
}

// NewMetrics registers the proxy metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "welog",
			Subsystem: "image_proxy",
			Name:      "cache_lookups_total",
			Help:      "Image cache lookups by result.",
		}, []string{"result"}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "welog",
			Subsystem: "image_proxy",
			Name:      "cache_write_errors_total",
			Help:      "Failed writes of processed images to the cache.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups, m.writeErrors)
	}
	return m
}

func (m *Metrics) lookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) writeFailed() {
	if m != nil {
		m.writeErrors.Inc()
	}
}

// ImageProxyService implements Service.
type ImageProxyService struct {
	cache     Cache
	processor Processor
	fetcher   Fetcher
	metrics   *Metrics
	logger    *slog.Logger
	writes    sync.WaitGroup
}

// NewService creates an ImageProxyService. metrics and logger may be nil.
func NewService(cache Cache, processor Processor, fetcher Fetcher, metrics *Metrics, logger *slog.Logger) (*ImageProxyService, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: cache", ErrNilDependency)
	}
	if processor == nil {
		return nil, fmt.Errorf("%w: processor", ErrNilDependency)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageProxyService{
		cache:     cache,
		processor: processor,
		fetcher:   fetcher,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// GetImage returns the cached rendition of folder/name for preset, or fetches,
// processes and caches it. The cache write does not block the response.
func (s *ImageProxyService) GetImage(ctx context.Context, presetName, folder, name string) ([]byte, error) {
	preset, err := GetPreset(presetName)
	if err != nil {
		return nil, err
	}
	if err := ValidateFolder(folder); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	cached, found, err := s.cache.Get(presetName, folder, name)
	if err != nil {
		s.logger.Warn("image cache read failed, fetching", "preset", presetName, "name", name, "error", err)
	}
	s.metrics.lookup(found)
	if found {
		return cached, nil
	}

	raw, err := s.fetcher.Fetch(ctx, folder, name)
	if err != nil {
		return nil, err
	}
	processed, err := s.processor.Process(raw, preset)
	if err != nil {
		return nil, err
	}

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.cache.Set(presetName, folder, name, processed); err != nil {
			s.metrics.writeFailed()
			s.logger.Error("image cache write failed", "preset", presetName, "name", name, "error", err)
		}
	}()
	return processed, nil
}

// Wait blocks until pending cache writes finish.
func (s *ImageProxyService) Wait() {
	s.writes.Wait()
}
