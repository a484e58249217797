// Package node implements a causal node: one process of the board owning a
// vector clock and a post log. Creating a post and receiving a post both
// advance the clock, and every operation runs under the node's lock so the
// clock, log and seen-set change together.
package node
