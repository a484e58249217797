package gossip

import (
	"vcboard/internal/storage"
)

// Peer is a replica that can take part in an exchange. *node.Node
// satisfies it.
type Peer interface {
	ID() string
	Posts() []storage.Post
	HasSeen(postID int64) bool
	Receive(post storage.Post) bool
}

// ExchangeStats counts the posts delivered by one exchange.
type ExchangeStats struct {
	Pulled int // posts received by the first peer
	Pushed int // posts received by the second peer
}

// Total returns the number of deliveries in both directions.
func (s ExchangeStats) Total() int {
	return s.Pulled + s.Pushed
}

// Exchange synchronizes x and y. x first receives every post in y's log it
// has not seen, in y's log order; y then receives every post in x's updated
// log it has not seen. Exchanging a peer with itself does nothing.
func Exchange(x, y Peer) ExchangeStats {
	var stats ExchangeStats
	if x.ID() == y.ID() {
		return stats
	}

	stats.Pulled = deliver(y.Posts(), x)
	stats.Pushed = deliver(x.Posts(), y)
	return stats
}

// deliver hands every unseen post to dst and returns how many were taken.
func deliver(posts []storage.Post, dst Peer) int {
	delivered := 0
	for _, p := range posts {
		if dst.HasSeen(p.ID) {
			continue
		}
		if dst.Receive(p) {
			delivered++
		}
	}
	return delivered
}

// Converged reports whether every peer holds every post held by any peer.
func Converged(peers []Peer) bool {
	all := make(map[int64]struct{})
	for _, p := range peers {
		for _, post := range p.Posts() {
			all[post.ID] = struct{}{}
		}
	}
	for _, p := range peers {
		for id := range all {
			if !p.HasSeen(id) {
				return false
			}
		}
	}
	return true
}
