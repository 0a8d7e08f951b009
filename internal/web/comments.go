package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"Welog/internal/blogapi"
	"Welog/internal/core/comments"
)

// CommentRow is one rendered comment with its links and reply form.
type CommentRow struct {
	comments.Row
	ReplyContent string
	ReplyError   string
	ToggleURL    string
	ReplyURL     string
	CancelURL    string
	DeleteURL    string
	ReplyOpen    bool
}

// CommentsView is the comment section of a post page.
type CommentsView struct {
	Rows []CommentRow
	// Content is the compose box text, kept after a failed submit.
	Content   string
	Error     string
	LoadError string
	PostID    int64
	Count     int
	MaxLevel  int
}

// hiddenIDs reads the repeated ?hide= parameter.
func hiddenIDs(q url.Values) []int64 {
	var ids []int64
	for _, v := range q["hide"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil && id > 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// applyCommentQuery restores the collapsed threads and the open reply form
// that the page links encode.
func applyCommentQuery(s *comments.Section, q url.Values) {
	for _, id := range hiddenIDs(q) {
		if !s.RepliesHidden(id) {
			s.ToggleReplies(id)
		}
	}
	if id, err := strconv.ParseInt(q.Get("reply"), 10, 64); err == nil {
		_ = s.OpenReply(id)
	}
}

func commentsView(postID int64, s *comments.Section, q url.Values, commentErr string, replyErr map[int64]string) CommentsView {
	base := fmt.Sprintf("/posts/%d", postID)
	hidden := hiddenIDs(q)

	link := func(hide []int64, reply int64, anchor int64) string {
		v := url.Values{}
		for _, id := range hide {
			v.Add("hide", strconv.FormatInt(id, 10))
		}
		if reply > 0 {
			v.Set("reply", strconv.FormatInt(reply, 10))
		}
		target := base
		if len(v) > 0 {
			target += "?" + v.Encode()
		}
		return fmt.Sprintf("%s#comment-%d", target, anchor)
	}

	rows := s.Rows()
	view := CommentsView{
		PostID:   postID,
		Count:    s.Count(),
		Content:  s.Content(),
		Error:    commentErr,
		MaxLevel: s.MaxLevel(),
		Rows:     make([]CommentRow, 0, len(rows)),
	}
	for _, row := range rows {
		id := row.Comment.ID
		toggled := slices.DeleteFunc(slices.Clone(hidden), func(v int64) bool { return v == id })
		if len(toggled) == len(hidden) {
			toggled = append(toggled, id)
		}
		view.Rows = append(view.Rows, CommentRow{
			Row:          row,
			ReplyOpen:    s.ReplyOpen(id),
			ReplyContent: s.ReplyContent(id),
			ReplyError:   replyErr[id],
			ToggleURL:    link(toggled, 0, id),
			ReplyURL:     link(hidden, id, id),
			CancelURL:    link(hidden, 0, id),
			DeleteURL:    fmt.Sprintf("%s/comments/%d/delete", base, id),
		})
	}
	return view
}

// formSection loads the thread for a comment form post. The redirect after a
// successful post re-fetches, so the section itself does not reload.
func (h *Handlers) formSection(r *http.Request, postID int64, confirm func(*comments.Comment) bool) (*comments.Section, error) {
	return comments.NewPostSection(r.Context(), h.comments, postID, state(r).User(), comments.PostSectionOptions{
		Confirm:     confirm,
		Logger:      h.logger,
		MaxLevel:    h.maxLevel,
		DeferReload: true,
	})
}

// formStatus is the status of a re-rendered form after err.
func formStatus(err error) int {
	status, _ := classify(err)
	return status
}

// AddComment handles POST /posts/{id}/comments.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, comments.ErrInvalidID)
		return
	}
	section, err := h.formSection(r, postID, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	section.SetContent(r.PostFormValue("content"))
	if err := section.SubmitComment(r.Context()); err != nil {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		h.renderPost(w, r, postID, postView{section: section, commentErr: messageFor(err), status: formStatus(err)})
		return
	}
	seeOther(w, r, fmt.Sprintf("/posts/%d#comments", postID))
}

// ReplyToComment handles POST /posts/{id}/comments/{commentID}/replies.
func (h *Handlers) ReplyToComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	commentID, ok2 := idParam(r, "commentID")
	if !ok || !ok2 {
		h.fail(w, r, comments.ErrInvalidID)
		return
	}
	section, err := h.formSection(r, postID, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := section.SetReplyContent(commentID, r.PostFormValue("content")); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := section.SubmitReply(r.Context(), commentID); err != nil {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		h.renderPost(w, r, postID, postView{
			section:  section,
			replyErr: map[int64]string{commentID: messageFor(err)},
			status:   formStatus(err),
		})
		return
	}
	seeOther(w, r, fmt.Sprintf("/posts/%d#comment-%d", postID, commentID))
}

// ConfirmDeleteComment handles GET /posts/{id}/comments/{commentID}/delete,
// the confirmation gate in front of a delete.
func (h *Handlers) ConfirmDeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	commentID, ok2 := idParam(r, "commentID")
	if !ok || !ok2 {
		h.fail(w, r, comments.ErrInvalidID)
		return
	}
	section, err := h.formSection(r, postID, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, found := section.Tree().Get(commentID)
	if !found {
		h.fail(w, r, comments.ErrCommentNotFound)
		return
	}
	if !comments.CanDelete(section.Viewer(), c) {
		h.fail(w, r, comments.ErrNotAuthorized)
		return
	}

	subject := c.Content
	if replies := len(section.Tree().RepliesOf(commentID)); replies > 0 {
		subject = fmt.Sprintf("%s (and %d %s)", truncate(c.Content, 140), replies, plural(replies, "reply", "replies"))
	}
	h.render(w, r, http.StatusOK, "confirm.html", ConfirmPageData{
		Page:    h.page(r, "Delete comment"),
		Heading: "Delete this comment?",
		Subject: truncate(subject, 200),
		Action:  fmt.Sprintf("/posts/%d/comments/%d/delete", postID, commentID),
		Cancel:  fmt.Sprintf("/posts/%d#comment-%d", postID, commentID),
	})
}

// DeleteComment handles POST /posts/{id}/comments/{commentID}/delete. The
// confirm=true form value is the answer of the confirmation gate.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	commentID, ok2 := idParam(r, "commentID")
	if !ok || !ok2 {
		h.fail(w, r, comments.ErrInvalidID)
		return
	}
	confirmed := r.PostFormValue("confirm") == "true"
	section, err := h.formSection(r, postID, func(*comments.Comment) bool { return confirmed })
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = section.Delete(r.Context(), commentID)
	switch {
	case err == nil:
		seeOther(w, r, fmt.Sprintf("/posts/%d#comments", postID))
	case errors.Is(err, comments.ErrDeleteCancelled):
		seeOther(w, r, fmt.Sprintf("/posts/%d#comment-%d", postID, commentID))
	case errors.Is(err, blogapi.ErrSessionExpired),
		errors.Is(err, comments.ErrCommentNotFound),
		errors.Is(err, comments.ErrNotAuthorized):
		h.fail(w, r, err)
	default:
		h.renderPost(w, r, postID, postView{
			section:    section,
			commentErr: "The comment could not be deleted: " + messageFor(err),
			status:     formStatus(err),
		})
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
