package comments

import (
	"context"
	"fmt"
	"log/slog"

	"Welog/internal/core/users"
)

// SectionConfig wires a Section to its mutation handlers. Every handler is
// required except Confirm; a nil Confirm declines every delete.
type SectionConfig struct {
	Add    func(ctx context.Context, content string) error
	Reply  func(ctx context.Context, parentID int64, content string) error
	Delete func(ctx context.Context, id int64) error
	// Reload fetches the thread again after a successful mutation.
	Reload func(ctx context.Context) ([]*Comment, error)
	// Confirm is the synchronous yes/no gate in front of a delete.
	Confirm  func(c *Comment) bool
	Viewer   *users.User
	Logger   *slog.Logger
	MaxLevel int
}

type replyForm struct {
	content    string
	submitting bool
}

// Section is the comment area of one post page: the compose box, open reply
// forms, reply visibility and the current thread. It never patches the thread
// locally; successful mutations are followed by a full reload. A Section
// belongs to one request and is not safe for concurrent use.
type Section struct {
	cfg        SectionConfig
	logger     *slog.Logger
	tree       *Tree
	replies    map[int64]*replyForm
	hidden     map[int64]bool
	deleting   map[int64]bool
	content    string
	submitting bool
}

// NewSection creates a section showing roots.
func NewSection(cfg SectionConfig, roots []*Comment) *Section {
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = DefaultMaxLevel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Section{
		cfg:      cfg,
		logger:   logger,
		replies:  make(map[int64]*replyForm),
		hidden:   make(map[int64]bool),
		deleting: make(map[int64]bool),
	}
	s.setTree(roots)
	return s
}

// Tree returns the thread as last loaded.
func (s *Section) Tree() *Tree { return s.tree }

// Count returns the total number of comments in the thread.
func (s *Section) Count() int { return s.tree.Count() }

// Viewer returns the signed-in user the section renders for, nil when anonymous.
func (s *Section) Viewer() *users.User { return s.cfg.Viewer }

// MaxLevel returns the deepest level that offers a reply form.
func (s *Section) MaxLevel() int { return s.cfg.MaxLevel }

// Rows renders the thread for the current viewer.
func (s *Section) Rows() []Row {
	return s.tree.Render(s.cfg.Viewer, s.cfg.MaxLevel, s.hidden)
}

// Content returns the compose box text.
func (s *Section) Content() string { return s.content }

// SetContent replaces the compose box text.
func (s *Section) SetContent(content string) { s.content = content }

// Submitting reports whether the compose box has a request in flight.
func (s *Section) Submitting() bool { return s.submitting }

// SubmitComment posts the compose box as a root comment. Invalid content makes
// no call. The box is cleared only after the handler succeeds.
func (s *Section) SubmitComment(ctx context.Context) error {
	if s.cfg.Viewer == nil {
		return ErrNotAuthorized
	}
	if s.submitting {
		return ErrInFlight
	}
	if err := ValidateContent(s.content, false); err != nil {
		return err
	}

	s.submitting = true
	err := s.cfg.Add(ctx, s.content)
	s.submitting = false
	if err != nil {
		s.logger.Warn("adding comment failed", "error", err)
		return err
	}

	s.content = ""
	s.reload(ctx)
	return nil
}

// OpenReply shows the reply form under comment id.
func (s *Section) OpenReply(id int64) error {
	c, ok := s.tree.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrCommentNotFound, id)
	}
	if !CanReply(s.cfg.Viewer, c, s.cfg.MaxLevel) {
		return ErrReplyNotAllowed
	}
	if _, open := s.replies[id]; !open {
		s.replies[id] = &replyForm{}
	}
	return nil
}

// CancelReply closes the reply form under comment id and drops its text.
func (s *Section) CancelReply(id int64) {
	if form, ok := s.replies[id]; ok && !form.submitting {
		delete(s.replies, id)
	}
}

// ReplyOpen reports whether comment id has an open reply form.
func (s *Section) ReplyOpen(id int64) bool {
	_, ok := s.replies[id]
	return ok
}

// ReplyContent returns the text of the reply form under comment id.
func (s *Section) ReplyContent(id int64) string {
	if form, ok := s.replies[id]; ok {
		return form.content
	}
	return ""
}

// SetReplyContent sets the reply form text, opening the form if needed.
func (s *Section) SetReplyContent(id int64, content string) error {
	if err := s.OpenReply(id); err != nil {
		return err
	}
	s.replies[id].content = content
	return nil
}

// SubmitReply posts the reply form under comment id. On success the form
// collapses; on failure it stays open with its text.
func (s *Section) SubmitReply(ctx context.Context, id int64) error {
	form, ok := s.replies[id]
	if !ok {
		return ErrReplyNotAllowed
	}
	if form.submitting {
		return ErrInFlight
	}
	if err := ValidateContent(form.content, true); err != nil {
		return err
	}

	form.submitting = true
	err := s.cfg.Reply(ctx, id, form.content)
	form.submitting = false
	if err != nil {
		s.logger.Warn("replying to comment failed", "parent_id", id, "error", err)
		return err
	}

	delete(s.replies, id)
	s.reload(ctx)
	return nil
}

// Deleting reports whether a delete of comment id is in flight.
func (s *Section) Deleting(id int64) bool { return s.deleting[id] }

// Delete removes comment id after the confirmation gate agrees. The comment
// stays displayed until the reload that follows a successful delete.
func (s *Section) Delete(ctx context.Context, id int64) error {
	c, ok := s.tree.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrCommentNotFound, id)
	}
	if !CanDelete(s.cfg.Viewer, c) {
		return ErrNotAuthorized
	}
	if s.deleting[id] {
		return ErrInFlight
	}
	if s.cfg.Confirm == nil || !s.cfg.Confirm(c) {
		return ErrDeleteCancelled
	}

	s.deleting[id] = true
	err := s.cfg.Delete(ctx, id)
	delete(s.deleting, id)
	if err != nil {
		s.logger.Warn("deleting comment failed", "comment_id", id, "error", err)
		return err
	}

	delete(s.replies, id)
	delete(s.hidden, id)
	s.reload(ctx)
	return nil
}

// ToggleReplies shows or hides the replies of comment id.
func (s *Section) ToggleReplies(id int64) {
	if s.hidden[id] {
		delete(s.hidden, id)
		return
	}
	s.hidden[id] = true
}

// RepliesHidden reports whether the replies of comment id are hidden.
func (s *Section) RepliesHidden(id int64) bool { return s.hidden[id] }

// Refresh reloads the thread and reports the failure, if any. The last loaded
// thread is kept when the reload fails.
func (s *Section) Refresh(ctx context.Context) error {
	if s.cfg.Reload == nil {
		return nil
	}
	roots, err := s.cfg.Reload(ctx)
	if err != nil {
		return err
	}
	s.setTree(roots)
	return nil
}

// reload follows a successful mutation. The mutation already happened, so a
// failed reload is logged and the previous thread stays on screen.
func (s *Section) reload(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("reloading comments failed, showing previous thread", "error", err)
	}
}

func (s *Section) setTree(roots []*Comment) {
	s.tree = NewTree(roots)
	if err := s.tree.CheckLevels(); err != nil {
		s.logger.Warn("comment thread has inconsistent levels", "error", err)
	}
	for id := range s.replies {
		if _, ok := s.tree.Get(id); !ok {
			delete(s.replies, id)
		}
	}
}

// PostSectionOptions tunes NewPostSection.
type PostSectionOptions struct {
	Confirm  func(c *Comment) bool
	Logger   *slog.Logger
	MaxLevel int
	// DeferReload skips the reload after a mutation. Form handlers set it
	// because the redirect that follows re-fetches the page anyway.
	DeferReload bool
}

// NewPostSection loads the root comments of postID and returns a section whose
// handlers call svc.
func NewPostSection(ctx context.Context, svc Service, postID int64, viewer *users.User, opts PostSectionOptions) (*Section, error) {
	reload := func(ctx context.Context) ([]*Comment, error) {
		return svc.ListRoots(ctx, postID)
	}
	roots, err := reload(ctx)
	if err != nil {
		return nil, err
	}
	if opts.DeferReload {
		reload = nil
	}

	return NewSection(SectionConfig{
		Add: func(ctx context.Context, content string) error {
			_, err := svc.CreateOnPost(ctx, postID, content, nil)
			return err
		},
		Reply: func(ctx context.Context, parentID int64, content string) error {
			_, err := svc.CreateOnPost(ctx, postID, content, &parentID)
			return err
		},
		Delete:   svc.Delete,
		Reload:   reload,
		Confirm:  opts.Confirm,
		Viewer:   viewer,
		Logger:   opts.Logger,
		MaxLevel: opts.MaxLevel,
	}, roots), nil
}
