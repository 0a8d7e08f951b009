package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Welog/internal/blogapi"

	"github.com/rivo/uniseg"
)

// Length limits in user-perceived characters.
const (
	MaxCommentLength = 500
	MaxReplyLength   = 300
)

type commentService struct {
	client Client
	logger *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(client Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		client: client,
		logger: logger,
	}
}

// ValidateContent checks comment content before it is sent. Replies have a
// tighter limit than root comments.
func ValidateContent(content string, isReply bool) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrContentEmpty
	}
	limit := MaxCommentLength
	if isReply {
		limit = MaxReplyLength
	}
	if n := uniseg.GraphemeClusterCount(content); n > limit {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrContentTooLong, n, limit)
	}
	return nil
}

func (s *commentService) ListRoots(ctx context.Context, postID int64) ([]*Comment, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var roots []*Comment
	if err := s.client.Get(ctx, fmt.Sprintf("/posts/%d/root-comments", postID), nil, &roots); err != nil {
		return nil, fmt.Errorf("list root comments of post %d: %w", postID, err)
	}
	return roots, nil
}

func (s *commentService) ListFlat(ctx context.Context, postID int64) ([]*Comment, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var all []*Comment
	if err := s.client.Get(ctx, fmt.Sprintf("/posts/%d/comments", postID), nil, &all); err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return all, nil
}

func (s *commentService) CreateOnPost(ctx context.Context, postID int64, content string, parentID *int64) (*Comment, error) {
	if postID <= 0 || (parentID != nil && *parentID <= 0) {
		return nil, ErrInvalidID
	}
	if err := ValidateContent(content, parentID != nil); err != nil {
		return nil, err
	}

	req := CreateRequest{Content: strings.TrimSpace(content), ParentID: parentID}
	var created Comment
	if err := s.client.Post(ctx, fmt.Sprintf("/posts/%d/comments", postID), nil, req, &created); err != nil {
		return nil, fmt.Errorf("create comment on post %d: %w", postID, err)
	}

	s.logger.Info("comment created",
		"post_id", postID, "comment_id", created.ID, "reply", parentID != nil)
	return &created, nil
}

func (s *commentService) Create(ctx context.Context, req CreateRequest) (*Comment, error) {
	if req.PostID <= 0 {
		return nil, ErrInvalidID
	}
	if err := ValidateContent(req.Content, req.ParentID != nil); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)

	var created Comment
	if err := s.client.Post(ctx, "/comments", nil, req, &created); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &created, nil
}

func (s *commentService) Get(ctx context.Context, id int64) (*Comment, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var c Comment
	if err := s.client.Get(ctx, commentPath(id), nil, &c); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("get comment %d", id), err)
	}
	return &c, nil
}

func (s *commentService) Update(ctx context.Context, id int64, content string) (*Comment, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if err := ValidateContent(content, false); err != nil {
		return nil, err
	}

	var c Comment
	if err := s.client.Patch(ctx, commentPath(id), UpdateRequest{Content: strings.TrimSpace(content)}, &c); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("update comment %d", id), err)
	}
	return &c, nil
}

func (s *commentService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if err := s.client.Delete(ctx, commentPath(id), nil, nil); err != nil {
		return wrapNotFound(fmt.Sprintf("delete comment %d", id), err)
	}
	s.logger.Info("comment deleted", "comment_id", id)
	return nil
}

func commentPath(id int64) string {
	return fmt.Sprintf("/comments/%d", id)
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, blogapi.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrCommentNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
