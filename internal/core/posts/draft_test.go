package posts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name       string
		draft      Draft
		wantFields map[string]string
		wantErrs   []error
	}{
		{
			name:       "valid",
			draft:      Draft{Title: "Hello", Content: "Some content here"},
			wantFields: map[string]string{},
		},
		{
			name:       "missing title and content",
			draft:      Draft{Title: "   ", Content: ""},
			wantFields: map[string]string{"title": "Title is required", "content": "Content is required"},
			wantErrs:   []error{ErrTitleRequired, ErrContentRequired},
		},
		{
			name:       "short title",
			draft:      Draft{Title: "Hi", Content: "Long enough content"},
			wantFields: map[string]string{"title": "Title must be at least 3 characters"},
			wantErrs:   []error{ErrTitleTooShort},
		},
		{
			name:       "short content",
			draft:      Draft{Title: "Hello", Content: "too short"},
			wantFields: map[string]string{"content": "Content must be at least 10 characters"},
			wantErrs:   []error{ErrContentTooShort},
		},
		{
			name:       "long excerpt",
			draft:      Draft{Title: "Hello", Content: "Long enough content", Excerpt: strings.Repeat("e", 201)},
			wantFields: map[string]string{"excerpt": "Excerpt must be less than 200 characters"},
			wantErrs:   []error{ErrExcerptTooLong},
		},
		{
			name:       "excerpt at limit",
			draft:      Draft{Title: "Hello", Content: "Long enough content", Excerpt: strings.Repeat("e", 200)},
			wantFields: map[string]string{},
		},
		{
			name:       "multibyte title counts characters",
			draft:      Draft{Title: "日本語", Content: "Long enough content"},
			wantFields: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			assert.Equal(t, tt.wantFields, FieldMessages(err))
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestDraft_RequestGeneratesExcerpt(t *testing.T) {
	req := Draft{Title: "  Title ", Content: "<p>Body <b>text</b></p>"}.Request()
	assert.Equal(t, "Title", req.Title)
	assert.Equal(t, "Body text", req.Excerpt)
	assert.Nil(t, req.CoverImage)

	req = Draft{Title: "Title", Content: "Body text", Excerpt: " Mine "}.Request()
	assert.Equal(t, "Mine", req.Excerpt)
}

func TestGenerateExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "short plain", content: "Hello world", want: "Hello world"},
		{name: "strips tags", content: "<h1>Title</h1><p>Para</p>", want: "TitlePara"},
		{name: "exactly 150", content: strings.Repeat("a", 150), want: strings.Repeat("a", 150)},
		{name: "truncates", content: strings.Repeat("a", 151), want: strings.Repeat("a", 150) + "..."},
		{name: "counts characters not bytes", content: strings.Repeat("é", 151), want: strings.Repeat("é", 150) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateExcerpt(tt.content))
		})
	}
}

func TestUpdateRequest_Validate(t *testing.T) {
	short := "ab"
	ok := "A fine title"
	assert.NoError(t, UpdateRequest{Title: &ok}.Validate())
	assert.ErrorIs(t, UpdateRequest{Title: &short}.Validate(), ErrTitleTooShort)
	assert.NoError(t, UpdateRequest{}.Validate())
}

func TestImageURL(t *testing.T) {
	origin := "http://localhost:8080/"
	assert.Equal(t, "http://localhost:8080/img/posts/cover.jpg", ImageURL(origin, PostImages, "cover.jpg"))
	assert.Equal(t, "http://localhost:8080/img/users/me.png", ImageURL(origin, UserImages, "/me.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", ImageURL(origin, PostImages, "https://cdn.example.com/a.png"))
	assert.Empty(t, ImageURL(origin, PostImages, " "))

	var nilPost *Post
	assert.Empty(t, nilPost.CoverURL(origin))
}
