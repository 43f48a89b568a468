package playback

import (
	"fmt"
	"storyplayer/internal/models"
)

// Cursor addresses the active story: an author index into the group
// collection and a story index inside that author.
type Cursor struct {
	Author int `json:"author"`
	Story  int `json:"story"`
}

func (c Cursor) String() string {
	return fmt.Sprintf("(%d,%d)", c.Author, c.Story)
}

// Valid reports whether c resolves to an existing story.
func Valid(groups []*models.StoryGroup, c Cursor) bool {
	if c.Author < 0 || c.Author >= len(groups) {
		return false
	}
	return c.Story >= 0 && c.Story < len(groups[c.Author].Stories)
}

// Resolve returns the group and story addressed by c. It panics when c does
// not resolve.
func Resolve(groups []*models.StoryGroup, c Cursor) (*models.StoryGroup, *models.Story) {
	mustResolve(groups, c)
	g := groups[c.Author]
	return g, g.Stories[c.Story]
}

func mustResolve(groups []*models.StoryGroup, c Cursor) {
	if !Valid(groups, c) {
		panic(invariantf("cursor %s does not resolve in %d groups", c, len(groups)))
	}
}

// firstAfter finds the first story of the next non-empty author after author.
func firstAfter(groups []*models.StoryGroup, author int) (Cursor, bool) {
	for i := author + 1; i < len(groups); i++ {
		if len(groups[i].Stories) > 0 {
			return Cursor{Author: i}, true
		}
	}
	return Cursor{}, false
}

// lastBefore finds the last story of the nearest non-empty author before author.
func lastBefore(groups []*models.StoryGroup, author int) (Cursor, bool) {
	for i := author - 1; i >= 0; i-- {
		if n := len(groups[i].Stories); n > 0 {
			return Cursor{Author: i, Story: n - 1}, true
		}
	}
	return Cursor{}, false
}

// Advance moves to the next story, crossing into the next non-empty author
// when the current one is exhausted. A false result means the end of the
// collection was reached and the viewer should close.
func Advance(groups []*models.StoryGroup, c Cursor) (Cursor, bool) {
	mustResolve(groups, c)
	if c.Story < len(groups[c.Author].Stories)-1 {
		return Cursor{Author: c.Author, Story: c.Story + 1}, true
	}
	return firstAfter(groups, c.Author)
}

// Retreat moves to the previous story, crossing into the last story of the
// previous non-empty author. At the very first story it returns c unchanged.
func Retreat(groups []*models.StoryGroup, c Cursor) Cursor {
	mustResolve(groups, c)
	if c.Story > 0 {
		return Cursor{Author: c.Author, Story: c.Story - 1}
	}
	if prev, ok := lastBefore(groups, c.Author); ok {
		return prev
	}
	return c
}

// NextAuthor jumps to the first story of the next non-empty author, or
// signals close when c is on the last one.
func NextAuthor(groups []*models.StoryGroup, c Cursor) (Cursor, bool) {
	mustResolve(groups, c)
	return firstAfter(groups, c.Author)
}

// PreviousAuthor jumps to the first story of the previous non-empty author.
// On the first author it returns c unchanged.
func PreviousAuthor(groups []*models.StoryGroup, c Cursor) Cursor {
	mustResolve(groups, c)
	if prev, ok := lastBefore(groups, c.Author); ok {
		return Cursor{Author: prev.Author}
	}
	return c
}

// JumpToAuthor positions the cursor on the first story of author index. An
// out-of-range index panics. An empty author is skipped forward exactly like
// an author whose last story was deleted.
func JumpToAuthor(groups []*models.StoryGroup, index int) (Cursor, bool) {
	if index < 0 || index >= len(groups) {
		panic(invariantf("author index %d out of range [0,%d)", index, len(groups)))
	}
	if len(groups[index].Stories) > 0 {
		return Cursor{Author: index}, true
	}
	return firstAfter(groups, index)
}

// Reconcile re-derives a valid cursor after the story at c was removed from
// groups. The story that slid into the vacated slot becomes active; when the
// removed story was the last one the cursor steps back, and when the author
// has no stories left the cursor moves on as Advance would from that
// author's last story.
func Reconcile(groups []*models.StoryGroup, c Cursor) (Cursor, bool) {
	if c.Author < 0 || c.Author >= len(groups) || c.Story < 0 {
		panic(invariantf("cannot reconcile cursor %s in %d groups", c, len(groups)))
	}
	n := len(groups[c.Author].Stories)
	switch {
	case n == 0:
		return firstAfter(groups, c.Author)
	case c.Story >= n:
		return Cursor{Author: c.Author, Story: n - 1}, true
	default:
		return c, true
	}
}
