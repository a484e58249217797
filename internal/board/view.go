package board

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"vcboard/internal/clock"
	"vcboard/internal/history"
	"vcboard/internal/storage"
)

// Entry is a post as seen by a node, with the relation of the post's
// timestamp to the node's current clock.
type Entry struct {
	Post     storage.Post   `json:"post"`
	Relation clock.Ordering `json:"relation"`
}

// View is a node's perspective of the board.
type View struct {
	Process  string          `json:"process"`
	Clock    clock.Timestamp `json:"clock"`
	Entries  []Entry         `json:"entries"`
	Frontier []int64         `json:"frontier"`
}

// View returns the board as seen by pid, posts ordered by ID.
func (b *Board) View(pid string) (View, error) {
	n, err := b.Node(pid)
	if err != nil {
		return View{}, err
	}

	current, posts := n.State()
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })

	entries := make([]Entry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, Entry{
			Post:     p,
			Relation: clock.Compare(p.Timestamp, current),
		})
	}

	return View{
		Process:  pid,
		Clock:    current,
		Entries:  entries,
		Frontier: history.FrontierIDs(posts),
	}, nil
}

// RelationLabel describes a post's relation to the viewing node's state.
func RelationLabel(o clock.Ordering) string {
	switch o {
	case clock.Before:
		return "happened before current state"
	case clock.After:
		return "happened after current state"
	case clock.Equal:
		return "identical to current state"
	default:
		return "concurrent with current state"
	}
}

const separator = "=================================================="

// Render writes the text display of v, preceded by a blank line.
func Render(w io.Writer, v View) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n=== Bulletin Board as seen by %s ===\n", v.Process)
	fmt.Fprintf(&sb, "Current vector clock: %s\n", v.Clock)
	fmt.Fprintf(&sb, "Number of posts: %d\n", len(v.Entries))
	if len(v.Frontier) > 0 {
		heads := make([]string, 0, len(v.Frontier))
		for _, id := range v.Frontier {
			heads = append(heads, fmt.Sprintf("#%d", id))
		}
		fmt.Fprintf(&sb, "Frontier: %s\n", strings.Join(heads, ", "))
	}
	sb.WriteString("\n")

	for _, e := range v.Entries {
		fmt.Fprintf(&sb, "Post #%d by %s at %s:\n", e.Post.ID, e.Post.Author, e.Post.Timestamp)
		fmt.Fprintf(&sb, "%s\n", e.Post.Message)
		fmt.Fprintf(&sb, "Causality: %s\n\n", RelationLabel(e.Relation))
	}
	sb.WriteString(separator + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
