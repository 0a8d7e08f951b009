package likes

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"Welog/internal/core/users"
)

type likeService struct {
	client Client
	logger *slog.Logger
}

// NewLikeService creates a new like service
func NewLikeService(client Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &likeService{
		client: client,
		logger: logger,
	}
}

func (s *likeService) Like(ctx context.Context, postID, userID int64) error {
	if postID <= 0 || userID <= 0 {
		return ErrInvalidID
	}
	if err := s.client.Post(ctx, likesPath(postID), userQuery(userID), nil, nil); err != nil {
		return fmt.Errorf("like post %d: %w", postID, err)
	}
	s.logger.Info("post liked", "post_id", postID, "user_id", userID)
	return nil
}

func (s *likeService) Unlike(ctx context.Context, postID, userID int64) error {
	if postID <= 0 || userID <= 0 {
		return ErrInvalidID
	}
	if err := s.client.Delete(ctx, likesPath(postID), userQuery(userID), nil); err != nil {
		return fmt.Errorf("unlike post %d: %w", postID, err)
	}
	s.logger.Info("post unliked", "post_id", postID, "user_id", userID)
	return nil
}

func (s *likeService) ListLikers(ctx context.Context, postID int64) ([]users.User, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var likers []users.User
	if err := s.client.Get(ctx, likesPath(postID), nil, &likers); err != nil {
		return nil, fmt.Errorf("list likes of post %d: %w", postID, err)
	}
	return likers, nil
}

func (s *likeService) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	likers, err := s.ListLikers(ctx, postID)
	if err != nil {
		return false, err
	}
	for _, u := range likers {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func likesPath(postID int64) string {
	return fmt.Sprintf("/posts/%d/likes", postID)
}

func userQuery(userID int64) url.Values {
	return url.Values{"userId": {strconv.FormatInt(userID, 10)}}
}
