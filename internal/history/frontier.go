package history

import (
	"sort"

	"vcboard/internal/clock"
	"vcboard/internal/storage"
)

// Result splits a set of posts into the frontier and the superseded posts.
type Result struct {
	// Frontier holds the posts not strictly preceded by any other post.
	// More than one entry means the heads are concurrent.
	Frontier []storage.Post

	// Superseded holds the posts some other post causally follows.
	Superseded []storage.Post
}

// HasConcurrentHeads returns true if the frontier has more than one post.
func (r Result) HasConcurrentHeads() bool {
	return len(r.Frontier) > 1
}

// Analyze computes the frontier of posts. Posts sharing an ID are counted
// once. Both slices are ordered by post ID.
func Analyze(posts []storage.Post) Result {
	unique := dedup(posts)

	result := Result{
		Frontier:   make([]storage.Post, 0),
		Superseded: make([]storage.Post, 0),
	}
	for i, p1 := range unique {
		dominated := false

		// Check if p1 is dominated by any other post
		for j, p2 := range unique {
			if i == j {
				continue
			}
			if clock.Precedes(p1.Timestamp, p2.Timestamp) {
				dominated = true
				break
			}
		}

		if dominated {
			result.Superseded = append(result.Superseded, p1)
		} else {
			result.Frontier = append(result.Frontier, p1)
		}
	}
	return result
}

// Frontier returns the posts not strictly preceded by any other post.
func Frontier(posts []storage.Post) []storage.Post {
	return Analyze(posts).Frontier
}

// FrontierIDs returns the IDs of Frontier(posts).
func FrontierIDs(posts []storage.Post) []int64 {
	frontier := Frontier(posts)
	ids := make([]int64, 0, len(frontier))
	for _, p := range frontier {
		ids = append(ids, p.ID)
	}
	return ids
}

// CausalOrder returns the posts sorted so that every post comes after all
// posts it causally follows. Ties are broken by post ID. Posts sharing an ID
// are counted once.
//
// A strictly preceding timestamp always has a smaller counter sum, so
// ordering by sum is a linear extension of happened-before.
func CausalOrder(posts []storage.Post) []storage.Post {
	out := dedup(posts)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Timestamp.Sum(), out[j].Timestamp.Sum()
		if si != sj {
			return si < sj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// dedup copies posts keeping the first occurrence of each ID, ordered by ID.
func dedup(posts []storage.Post) []storage.Post {
	seen := make(map[int64]struct{}, len(posts))
	out := make([]storage.Post, 0, len(posts))
	for _, p := range posts {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
