package comments

import "Welog/internal/core/users"

// DefaultMaxLevel is the deepest level that still offers a reply form.
const DefaultMaxLevel = 3

// Tree is an arena over one post's comment thread. Nodes are indexed by ID and
// children are kept as ordered ID lists, so traversal never recurses through
// the input structure. The input comments are not modified.
type Tree struct {
	nodes    map[int64]*Comment
	children map[int64][]int64
	roots    []int64
}

// NewTree indexes roots and all of their nested replies. Nil entries are
// skipped and a repeated ID keeps its first occurrence.
func NewTree(roots []*Comment) *Tree {
	t := &Tree{
		nodes:    make(map[int64]*Comment),
		children: make(map[int64][]int64),
	}

	type frame struct {
		c      *Comment
		parent int64
		root   bool
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{c: roots[i], root: true})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.c == nil {
			continue
		}
		if _, seen := t.nodes[f.c.ID]; seen {
			continue
		}
		t.nodes[f.c.ID] = f.c
		if f.root {
			t.roots = append(t.roots, f.c.ID)
		} else {
			t.children[f.parent] = append(t.children[f.parent], f.c.ID)
		}
		for i := len(f.c.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{c: f.c.Replies[i], parent: f.c.ID})
		}
	}
	return t
}

// Roots returns the root comments in server order.
func (t *Tree) Roots() []*Comment {
	return t.lookup(t.roots)
}

// Get returns the comment with the given ID.
func (t *Tree) Get(id int64) (*Comment, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// RepliesOf returns the direct replies of a comment in server order.
func (t *Tree) RepliesOf(id int64) []*Comment {
	return t.lookup(t.children[id])
}

func (t *Tree) lookup(ids []int64) []*Comment {
	out := make([]*Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}

// Count returns the number of comments in the thread, one per node at every
// depth. It walks the arena on each call.
func (t *Tree) Count() int {
	count := 0
	stack := append([]int64(nil), t.roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, t.children[id]...)
	}
	return count
}

// CheckLevels verifies that roots are level 1 and every reply sits one level
// below its parent. It returns the first mismatch found in render order.
func (t *Tree) CheckLevels() error {
	for _, row := range t.walk(nil) {
		want := row.Depth + 1
		if row.Comment.Level != want {
			return &LevelError{CommentID: row.Comment.ID, Want: want, Got: row.Comment.Level}
		}
	}
	return nil
}

// Render flattens the thread depth first for display. Every existing reply is
// emitted regardless of depth unless its parent's replies are hidden;
// maxLevel only gates the reply affordance and defaults to DefaultMaxLevel.
func (t *Tree) Render(viewer *users.User, maxLevel int, hidden map[int64]bool) []Row {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	rows := t.walk(hidden)
	for i := range rows {
		c := rows[i].Comment
		rows[i].CanReply = CanReply(viewer, c, maxLevel)
		rows[i].CanDelete = CanDelete(viewer, c)
	}
	return rows
}

func (t *Tree) walk(hidden map[int64]bool) []Row {
	type frame struct {
		id    int64
		depth int
	}
	rows := make([]Row, 0, len(t.nodes))
	stack := make([]frame, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: t.roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids := t.children[f.id]
		isHidden := hidden[f.id]
		rows = append(rows, Row{
			Comment:       t.nodes[f.id],
			Depth:         f.depth,
			ReplyCount:    len(kids),
			RepliesHidden: isHidden && len(kids) > 0,
		})
		if isHidden {
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: f.depth + 1})
		}
	}
	return rows
}

// CanReply reports whether viewer may reply to c: a signed-in viewer and a
// comment above maxLevel.
func CanReply(viewer *users.User, c *Comment, maxLevel int) bool {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	return viewer != nil && c != nil && c.Level < maxLevel
}

// CanDelete reports whether viewer may delete c: its author or an admin.
func CanDelete(viewer *users.User, c *Comment) bool {
	if viewer == nil || c == nil {
		return false
	}
	if c.User != nil && c.User.ID == viewer.ID {
		return true
	}
	return viewer.IsAdmin()
}
