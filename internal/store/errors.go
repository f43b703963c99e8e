package store

import "errors"

// Validation rejections surfaced to the user. Mutations that hit one of these
// leave the state untouched. No-op guards (stopping an idle timer, detaching
// an absent config) return nil instead.
var (
	ErrHighlightLimit   = errors.New("highlight limit reached (max 3 per book)")
	ErrActivityInUse    = errors.New("activity is in use by at least one book")
	ErrLastBook         = errors.New("cannot delete the last remaining book")
	ErrBookNotFound     = errors.New("book not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrNotAttached      = errors.New("activity is not attached to this book")
)
