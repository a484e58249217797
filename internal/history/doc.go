// Package history derives causal structure from a post log: the frontier of
// posts no other post follows, and an ordering of posts consistent with
// happened-before.
package history
