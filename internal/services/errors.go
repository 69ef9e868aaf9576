package services

import "errors"

var (
	// ErrMissingQuery means a required search parameter was absent; the
	// request is rejected before any network call.
	ErrMissingQuery = errors.New("missing required query field")

	// ErrUnauthenticated means a mutation was attempted without a signed-in
	// viewer; the operation short-circuits with no store work performed.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoCandidates means the wheel had nothing valid left to pick from.
	ErrNoCandidates = errors.New("no valid candidates to spin")

	// ErrInvalidRating means a review rating was outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
