package posts

import (
	"time"

	"Welog/internal/blogapi"
	"Welog/internal/core/users"
)

// Tag is a label attached to a post.
type Tag struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Post is a published article as returned by the backend.
type Post struct {
	CreatedAt  blogapi.Time `json:"createdAt"`
	Author     *users.User  `json:"author"`
	Slug       string       `json:"slug"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Excerpt    string       `json:"excerpt"`
	CoverImage string       `json:"coverImage,omitempty"`
	Tags       []Tag        `json:"tags,omitempty"`
	ID         int64        `json:"id"`
}

// CreateRequest is the JSON body of POST /posts.
// CoverImage is sent as null when the cover is uploaded separately.
type CreateRequest struct {
	CoverImage *string `json:"coverImage"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Excerpt    string  `json:"excerpt"`
}

// UpdateRequest is a partial update of a post. Nil fields are left untouched.
type UpdateRequest struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Excerpt    *string `json:"excerpt,omitempty"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// Draft is an unsaved post held in the client store under "postDraft".
type Draft struct {
	SavedAt    time.Time `json:"timestamp"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt"`
	CoverImage string    `json:"coverImage,omitempty"`
}

// Empty reports whether the draft holds nothing worth restoring.
func (d Draft) Empty() bool {
	return d.Title == "" && d.Content == "" && d.Excerpt == "" && d.CoverImage == ""
}
