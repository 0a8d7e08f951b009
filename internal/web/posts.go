package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"Welog/internal/blogapi"
	"Welog/internal/core/comments"
	"Welog/internal/core/likes"
	"Welog/internal/core/posts"
	"Welog/internal/core/users"
)

// PostsPageData is the data of posts.html.
type PostsPageData struct {
	Page
	Posts   *blogapi.Page[posts.Post]
	PrevURL string
	NextURL string
}

// ListPosts handles GET / and GET /posts.
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.List(r.Context(), pageParam(r), h.pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := PostsPageData{Page: h.page(r, "Latest Posts"), Posts: result}
	data.PrevURL, data.NextURL = pageLinks(r.URL, result.Number, result.HasPrev(), result.HasNext())
	h.render(w, r, http.StatusOK, "posts.html", data)
}

// pageLinks returns the previous and next page URLs of u, "" where there is none.
func pageLinks(u *url.URL, number int, hasPrev, hasNext bool) (string, string) {
	link := func(n int) string {
		q := u.Query()
		if n == 0 {
			q.Del("page")
		} else {
			q.Set("page", strconv.Itoa(n))
		}
		if len(q) == 0 {
			return u.Path
		}
		return u.Path + "?" + q.Encode()
	}
	var prev, next string
	if hasPrev {
		prev = link(number - 1)
	}
	if hasNext {
		next = link(number + 1)
	}
	return prev, next
}

// LikeView is the like button of a post page.
type LikeView struct {
	Count int
	Liked bool
	Error string
}

// PostPageData is the data of post.html.
type PostPageData struct {
	Page
	Post      *posts.Post
	Like      LikeView
	Comments  CommentsView
	CanDelete bool
}

// postView carries the state a failed form post wants shown again.
type postView struct {
	section    *comments.Section
	toggle     *likes.Toggle
	commentErr string
	replyErr   map[int64]string
	likeErr    string
	notice     string
	status     int
}

// ShowPost handles GET /posts/{id}.
func (h *Handlers) ShowPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, posts.ErrInvalidPostID)
		return
	}

	view := postView{status: http.StatusOK}
	if r.URL.Query().Get("cover") == "failed" {
		view.notice = "Your post was published, but the cover image could not be uploaded."
	}
	h.renderPost(w, r, postID, view)
}

// renderPost fetches the post and its likes and renders it with view. A
// comment thread that fails to load does not take the page down.
func (h *Handlers) renderPost(w http.ResponseWriter, r *http.Request, postID int64, view postView) {
	ctx := r.Context()
	post, err := h.posts.Get(ctx, postID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := PostPageData{Page: h.page(r, post.Title), Post: post}
	data.Notice = view.notice
	data.CanDelete = canDeletePost(data.Viewer, post)

	if view.toggle != nil {
		data.Like = LikeView{Count: view.toggle.Count, Liked: view.toggle.Liked}
	} else if toggle, err := h.likeState(r, postID); err != nil {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		h.logger.Warn("failed to load likes", "post_id", postID, "error", err)
	} else {
		data.Like = LikeView{Count: toggle.Count, Liked: toggle.Liked}
	}
	data.Like.Error = view.likeErr

	section := view.section
	if section == nil {
		section, err = comments.NewPostSection(ctx, h.comments, postID, data.Viewer, comments.PostSectionOptions{
			Logger:   h.logger,
			MaxLevel: h.maxLevel,
		})
		if err != nil {
			if errors.Is(err, blogapi.ErrSessionExpired) {
				h.fail(w, r, err)
				return
			}
			h.logger.Warn("failed to load comments", "post_id", postID, "error", err)
			data.Comments = CommentsView{PostID: postID, LoadError: "Comments could not be loaded."}
		}
	}
	if section != nil {
		applyCommentQuery(section, r.URL.Query())
		data.Comments = commentsView(postID, section, r.URL.Query(), view.commentErr, view.replyErr)
	}

	h.render(w, r, view.status, "post.html", data)
}

// likeState builds the like toggle from the server's list of likers.
func (h *Handlers) likeState(r *http.Request, postID int64) (*likes.Toggle, error) {
	likers, err := h.likes.ListLikers(r.Context(), postID)
	if err != nil {
		return nil, err
	}
	liked := false
	if s := state(r); s != nil && s.Authenticated() {
		for _, u := range likers {
			if u.ID == s.UserID() {
				liked = true
				break
			}
		}
	}
	return likes.NewToggle(liked, len(likers)), nil
}

// ToggleLike handles POST /posts/{id}/like. A failed call rolls the button
// back and shows an inline error.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, posts.ErrInvalidPostID)
		return
	}

	toggle, err := h.likeState(r, postID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := toggle.RunFor(r.Context(), h.likes, postID, state(r).UserID()); err != nil {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		h.logger.Warn("like toggle rolled back", "post_id", postID, "phase", toggle.Phase, "error", err)
		h.renderPost(w, r, postID, postView{
			toggle:  toggle,
			likeErr: "Your like could not be saved. Please try again.",
			status:  http.StatusBadGateway,
		})
		return
	}
	seeOther(w, r, fmt.Sprintf("/posts/%d", postID))
}

func canDeletePost(viewer *users.User, post *posts.Post) bool {
	if viewer == nil || post == nil {
		return false
	}
	if post.Author != nil && post.Author.ID == viewer.ID {
		return true
	}
	return viewer.IsAdmin()
}

// ConfirmPageData is the data of confirm.html.
type ConfirmPageData struct {
	Page
	Heading string
	Subject string
	Action  string
	Cancel  string
}

// ConfirmDeletePost handles GET /posts/{id}/delete.
func (h *Handlers) ConfirmDeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, posts.ErrInvalidPostID)
		return
	}
	post, err := h.posts.Get(r.Context(), postID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := ConfirmPageData{
		Page:    h.page(r, "Delete post"),
		Heading: "Delete this post?",
		Subject: post.Title,
		Action:  fmt.Sprintf("/posts/%d/delete", postID),
		Cancel:  fmt.Sprintf("/posts/%d", postID),
	}
	if !canDeletePost(data.Viewer, post) {
		h.fail(w, r, blogapi.ErrForbidden)
		return
	}
	h.render(w, r, http.StatusOK, "confirm.html", data)
}

// DeletePost handles POST /posts/{id}/delete. Without the confirmation box
// ticked nothing is deleted.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, posts.ErrInvalidPostID)
		return
	}
	if r.PostFormValue("confirm") != "true" {
		seeOther(w, r, fmt.Sprintf("/posts/%d", postID))
		return
	}
	if err := h.posts.Delete(r.Context(), postID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("post deleted via web", "post_id", postID, "user_id", state(r).UserID())
	seeOther(w, r, "/")
}
