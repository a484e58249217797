package node

import "errors"

var (
	// ErrInvalidPostID is returned by Create for a non-positive post ID.
	ErrInvalidPostID = errors.New("node: post id must be positive")
	// ErrDuplicatePost is returned by Create when the post ID is already in the log.
	ErrDuplicatePost = errors.New("node: duplicate post id")
)
