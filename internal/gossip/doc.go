// Package gossip implements anti-entropy synchronization between nodes.
//
// Exchange is the two-node protocol: each side receives the posts of the
// other it has not seen yet. Gossiper repeats exchanges between randomly
// paired peers until every peer holds every post.
//
// Limitations:
// - Exchanges are in-memory; there is no transport or message loss
// - A peer's own counter advances once per delivered post, so converged
//   peers hold causally consistent, not identical, clocks
package gossip
