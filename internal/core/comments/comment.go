package comments

import (
	"Welog/internal/blogapi"
	"Welog/internal/core/users"
)

// Comment is one node of a post's comment thread as served by the backend.
// Level is 1-based and trusted as given: a reply's level is its parent's
// level plus one, and roots have level 1 and no parent.
type Comment struct {
	CreatedAt blogapi.Time `json:"createdAt"`
	User      *users.User  `json:"user"`
	ParentID  *int64       `json:"parentId,omitempty"`
	Content   string       `json:"content"`
	Replies   []*Comment   `json:"replies,omitempty"`
	ID        int64        `json:"id"`
	Level     int          `json:"level"`
}

// IsRoot reports whether the comment has no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CreateRequest is the body of POST /comments and POST /posts/{id}/comments.
type CreateRequest struct {
	ParentID *int64 `json:"parentId,omitempty"`
	Content  string `json:"content"`
	PostID   int64  `json:"postId,omitempty"`
}

// UpdateRequest is the body of PATCH /comments/{id}.
type UpdateRequest struct {
	Content string `json:"content"`
}
