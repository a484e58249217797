// Package board orchestrates a set of causal nodes as a bulletin board. It
// allocates post IDs, routes posts to the authoring node, synchronizes node
// pairs and renders a node's view of the board.
package board
