package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"Welog/internal/blogapi"
	"Welog/internal/core/posts"
	"Welog/internal/session"
)

// maxUploadBytes bounds multipart bodies of the post and profile forms.
const maxUploadBytes = 10 << 20

// PostFormData is the data of post_form.html.
type PostFormData struct {
	Page
	Fields       map[string]string
	Draft        posts.Draft
	DraftSavedAt string
	HasDraft     bool
}

// NewPost handles GET /posts/new. A saved draft is offered for restore and
// loaded into the form with ?draft=restore.
func (h *Handlers) NewPost(w http.ResponseWriter, r *http.Request) {
	data := PostFormData{Page: h.page(r, "Write a post")}

	draft, err := state(r).LoadDraft(r.Context())
	if err != nil {
		h.logger.Warn("failed to load post draft", "error", err)
	}
	if draft != nil && !draft.Empty() {
		data.HasDraft = true
		data.DraftSavedAt = RelativeTime(draft.SavedAt, time.Now())
		switch r.URL.Query().Get("draft") {
		case "restore":
			data.Draft = *draft
		case "saved":
			data.Draft = *draft
			data.Notice = "Draft saved."
		}
	}
	h.render(w, r, http.StatusOK, "post_form.html", data)
}

// CreatePost handles POST /posts/new. The action field picks between saving
// the draft, discarding it and publishing.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.fail(w, r, fmt.Errorf("%w: %w", blogapi.ErrPayloadTooLarge, err))
		return
	}

	ctx := r.Context()
	draft := posts.Draft{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Excerpt: r.FormValue("excerpt"),
	}

	switch r.FormValue("action") {
	case "save_draft":
		if err := state(r).SaveDraft(ctx, draft); err != nil {
			if errors.Is(err, session.ErrValueTooLarge) {
				h.renderPostForm(w, r, draft, "Your draft could not be saved.",
					map[string]string{"content": "This draft is too long to keep in your browser. Publish it or shorten it."},
					http.StatusRequestEntityTooLarge)
				return
			}
			h.logger.Warn("failed to save post draft", "error", err)
			h.renderPostForm(w, r, draft, "Your draft could not be saved.", nil, http.StatusInternalServerError)
			return
		}
		seeOther(w, r, "/posts/new?draft=saved")
		return
	case "discard_draft":
		if err := state(r).ClearDraft(ctx); err != nil {
			h.logger.Warn("failed to discard post draft", "error", err)
		}
		seeOther(w, r, "/posts/new")
		return
	}

	cover, closeCover, err := formFile(r, "cover")
	if err != nil {
		h.renderPostForm(w, r, draft, "The cover image could not be read.", nil, http.StatusBadRequest)
		return
	}
	defer closeCover()

	post, err := h.posts.CreateWithCover(ctx, draft, cover)
	if err != nil && !(post != nil && errors.Is(err, posts.ErrCoverUploadFailed)) {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		h.renderPostForm(w, r, draft, messageFor(err), posts.FieldMessages(err), formStatus(err))
		return
	}

	if clearErr := state(r).ClearDraft(ctx); clearErr != nil {
		h.logger.Warn("failed to clear post draft after publishing", "error", clearErr)
	}
	target := fmt.Sprintf("/posts/%d", post.ID)
	if err != nil {
		target += "?cover=failed"
	}
	seeOther(w, r, target)
}

func (h *Handlers) renderPostForm(w http.ResponseWriter, r *http.Request, draft posts.Draft, message string, fields map[string]string, status int) {
	data := PostFormData{Page: h.page(r, "Write a post"), Draft: draft, Fields: fields}
	data.Error = message
	h.render(w, r, status, "post_form.html", data)
}

// formFile returns the uploaded file of field as a blogapi.File, nil when
// the field is absent or empty. The returned func closes the upload.
func formFile(r *http.Request, field string) (*blogapi.File, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	if hdr.Size == 0 {
		_ = f.Close()
		return nil, noop, nil
	}
	return &blogapi.File{
		Data:        f,
		Field:       field,
		Name:        hdr.Filename,
		ContentType: contentType(hdr),
	}, func() { _ = f.Close() }, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
