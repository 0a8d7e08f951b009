package web

import (
	"errors"
	"net/http"
	"strings"

	"Welog/internal/blogapi"
	"Welog/internal/core/posts"
)

// SearchPageData is the data of search.html.
type SearchPageData struct {
	Page
	Results *blogapi.Page[posts.Post]
	Query   string
	PrevURL string
	NextURL string
	Recent  []string
}

// Search handles GET /search. Without a query it lists the recent searches;
// a successful search is remembered.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := SearchPageData{Page: h.page(r, "Search"), Query: query}

	if query == "" {
		data.Recent = state(r).RecentSearches(ctx)
		h.render(w, r, http.StatusOK, "search.html", data)
		return
	}

	results, err := h.posts.Search(ctx, query, pageParam(r), h.pageSize)
	if err != nil {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		data.Error = messageFor(err)
		data.Recent = state(r).RecentSearches(ctx)
		h.render(w, r, formStatus(err), "search.html", data)
		return
	}

	if err := state(r).PushRecentSearch(ctx, query); err != nil {
		h.logger.Warn("failed to remember search", "error", err)
	}
	data.Results = results
	data.PrevURL, data.NextURL = pageLinks(r.URL, results.Number, results.HasPrev(), results.HasNext())
	h.render(w, r, http.StatusOK, "search.html", data)
}

// ClearRecentSearches handles POST /search/recent/clear.
func (h *Handlers) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	if err := state(r).ClearRecentSearches(r.Context()); err != nil {
		h.logger.Warn("failed to clear recent searches", "error", err)
	}
	seeOther(w, r, "/search")
}
