package posts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"Welog/internal/blogapi"
)

type postService struct {
	client Client
	covers CoverProcessor
	logger *slog.Logger
}

// NewPostService creates a new post service. covers may be nil, in which case
// cover images are uploaded unchanged.
func NewPostService(client Client, covers CoverProcessor, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		client: client,
		covers: covers,
		logger: logger,
	}
}

func (s *postService) List(ctx context.Context, page, size int) (*blogapi.Page[Post], error) {
	var result blogapi.Page[Post]
	if err := s.client.Get(ctx, "/posts", blogapi.PageQuery(page, size), &result); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &result, nil
}

func (s *postService) Search(ctx context.Context, query string, page, size int) (*blogapi.Page[Post], error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return nil, ErrQueryTooShort
	}

	params := blogapi.PageQuery(page, size)
	params.Set("title", query)

	var result blogapi.Page[Post]
	if err := s.client.Get(ctx, "/posts/search", params, &result); err != nil {
		return nil, fmt.Errorf("search posts %q: %w", query, err)
	}
	return &result, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*Post, error) {
	if id <= 0 {
		return nil, ErrInvalidPostID
	}
	var post Post
	if err := s.client.Get(ctx, postPath(id), nil, &post); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("get post %d", id), err)
	}
	return &post, nil
}

func (s *postService) Create(ctx context.Context, draft Draft) (*Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var post Post
	if err := s.client.Post(ctx, "/posts", nil, draft.Request(), &post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created", "post_id", post.ID, "slug", post.Slug)
	return &post, nil
}

func (s *postService) CreateWithCover(ctx context.Context, draft Draft, cover *blogapi.File) (*Post, error) {
	post, err := s.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	if cover == nil {
		return post, nil
	}

	updated, err := s.UploadCoverImage(ctx, post.ID, cover)
	if err != nil {
		s.logger.Warn("post created without cover image",
			"post_id", post.ID, "error", err)
		return post, fmt.Errorf("%w: %w", ErrCoverUploadFailed, err)
	}
	return updated, nil
}

func (s *postService) Update(ctx context.Context, id int64, req UpdateRequest) (*Post, error) {
	if id <= 0 {
		return nil, ErrInvalidPostID
	}
	if req.Title == nil && req.Content == nil && req.Excerpt == nil && req.CoverImage == nil {
		return nil, ErrEmptyUpdate
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var post Post
	if err := s.client.Patch(ctx, postPath(id), req, &post); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("update post %d", id), err)
	}
	return &post, nil
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidPostID
	}
	if err := s.client.Delete(ctx, postPath(id), nil, nil); err != nil {
		return wrapNotFound(fmt.Sprintf("delete post %d", id), err)
	}
	s.logger.Info("post deleted", "post_id", id)
	return nil
}

func (s *postService) UploadCoverImage(ctx context.Context, id int64, cover *blogapi.File) (*Post, error) {
	if id <= 0 {
		return nil, ErrInvalidPostID
	}
	if cover == nil || cover.Data == nil {
		return nil, ErrNoCoverImage
	}

	file, err := s.prepareCover(*cover)
	if err != nil {
		return nil, err
	}
	file.Field = "coverImage"

	var post Post
	form := &blogapi.Form{Files: []blogapi.File{file}}
	if err := s.client.Multipart(ctx, http.MethodPost, postPath(id)+"/coverImage", form, &post); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("upload cover for post %d", id), err)
	}
	if post.ID == 0 {
		// Some deployments answer the upload with an empty body.
		return s.Get(ctx, id)
	}
	return &post, nil
}

func (s *postService) prepareCover(cover blogapi.File) (blogapi.File, error) {
	if s.covers == nil {
		return cover, nil
	}
	raw, err := io.ReadAll(cover.Data)
	if err != nil {
		return blogapi.File{}, fmt.Errorf("reading cover image: %w", err)
	}
	data, contentType, err := s.covers.PrepareCover(raw)
	if err != nil {
		return blogapi.File{}, NewValidationError("coverImage", "Unsupported or corrupt image", err)
	}
	if contentType != cover.ContentType && contentType == "image/jpeg" {
		cover.Name = strings.TrimSuffix(cover.Name, path.Ext(cover.Name)) + ".jpg"
	}
	cover.Data = bytes.NewReader(data)
	cover.ContentType = contentType
	return cover, nil
}

func postPath(id int64) string {
	return fmt.Sprintf("/posts/%d", id)
}

// wrapNotFound tags a 404 with ErrNotFound while keeping the API error matchable.
func wrapNotFound(op string, err error) error {
	if errors.Is(err, blogapi.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
