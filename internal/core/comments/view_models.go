package comments

// Row is one rendered line of a comment thread.
type Row struct {
	Comment *Comment
	// Depth is the 0-based nesting depth in the rendered tree.
	Depth int
	// ReplyCount counts direct replies, shown on the toggle.
	ReplyCount    int
	CanReply      bool
	CanDelete     bool
	RepliesHidden bool
}

// Indent returns the left offset of the row for templates, capped so very deep
// threads stay readable.
func (r Row) Indent() int {
	const step, maxDepth = 24, 6
	d := r.Depth
	if d > maxDepth {
		d = maxDepth
	}
	return d * step
}
