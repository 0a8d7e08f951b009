package posts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

// Authoring limits, counted in user-perceived characters.
const (
	MinTitleLength   = 3
	MinContentLength = 10
	MaxExcerptLength = 200
	MinSearchLength  = 2

	// excerptLength is the size of a generated excerpt before the ellipsis.
	excerptLength = 150
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Validate checks the draft the way the create form does and reports every
// failing field. The returned error satisfies IsValidationError.
func (d Draft) Validate() error {
	return errors.Join(
		validateTitle(d.Title),
		validateContent(d.Content),
		validateExcerpt(d.Excerpt),
	)
}

// Validate checks the fields present in the update.
func (r UpdateRequest) Validate() error {
	var errs []error
	if r.Title != nil {
		errs = append(errs, validateTitle(*r.Title))
	}
	if r.Content != nil {
		errs = append(errs, validateContent(*r.Content))
	}
	if r.Excerpt != nil {
		errs = append(errs, validateExcerpt(*r.Excerpt))
	}
	return errors.Join(errs...)
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return NewValidationError("title", "Title is required", ErrTitleRequired)
	case uniseg.GraphemeClusterCount(title) < MinTitleLength:
		return NewValidationError("title",
			fmt.Sprintf("Title must be at least %d characters", MinTitleLength), ErrTitleTooShort)
	}
	return nil
}

func validateContent(content string) error {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return NewValidationError("content", "Content is required", ErrContentRequired)
	case uniseg.GraphemeClusterCount(content) < MinContentLength:
		return NewValidationError("content",
			fmt.Sprintf("Content must be at least %d characters", MinContentLength), ErrContentTooShort)
	}
	return nil
}

func validateExcerpt(excerpt string) error {
	if uniseg.GraphemeClusterCount(strings.TrimSpace(excerpt)) > MaxExcerptLength {
		return NewValidationError("excerpt",
			fmt.Sprintf("Excerpt must be less than %d characters", MaxExcerptLength), ErrExcerptTooLong)
	}
	return nil
}

// Request converts a valid draft into the create body, generating the excerpt
// from the content when none was given.
func (d Draft) Request() CreateRequest {
	content := strings.TrimSpace(d.Content)
	excerpt := strings.TrimSpace(d.Excerpt)
	if excerpt == "" {
		excerpt = GenerateExcerpt(content)
	}
	return CreateRequest{
		Title:   strings.TrimSpace(d.Title),
		Content: content,
		Excerpt: excerpt,
	}
}

// GenerateExcerpt strips markup from content and keeps the first 150
// characters, adding "..." when anything was cut.
func GenerateExcerpt(content string) string {
	plain := tagPattern.ReplaceAllString(content, "")

	var b strings.Builder
	count := 0
	state := -1
	rest := plain
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if count == excerptLength {
			return b.String() + "..."
		}
		b.WriteString(cluster)
		count++
	}
	return plain
}
