// Package apperr holds the sentinel errors shared by every item surface.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("could not find the item")
	ErrAlreadyExists = errors.New("an item with the same name already exists")
	ErrEnumeration   = errors.New("could not enumerate the storage root")
	ErrInvalidName   = errors.New("invalid item name")
)
