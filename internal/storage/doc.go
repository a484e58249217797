// Package storage provides the post log a node keeps: an append-only,
// ordered record of posts plus the set of post IDs it already holds. Posts
// carry the vector clock timestamp they were stamped with.
package storage
