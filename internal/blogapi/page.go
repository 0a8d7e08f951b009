package blogapi

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

// DefaultPageSize is the page size used when the caller does not pick one.
const DefaultPageSize = 10

// Page is the paged envelope the backend wraps list responses in.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool {
	return p.Number > 0
}

// PageQuery builds the page/size query. Negative pages become 0 and
// non-positive sizes fall back to DefaultPageSize.
func PageQuery(page, size int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
}

// UnmarshalJSON accepts both the paged envelope and a bare JSON array, which
// some list endpoints return. A bare array decodes as a single page.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Content: items, TotalElements: int64(len(items)), Size: len(items)}
		if len(items) > 0 {
			p.TotalPages = 1
		}
		return nil
	}
	type envelope Page[T]
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*p = Page[T](env)
	return nil
}
