// Package models defines the domain types for itembox.
package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxNameLength is the longest item name accepted, in bytes.
const MaxNameLength = 255

// Item is a single to-do entry. Its name is used verbatim as a file name
// inside the storage root.
type Item struct {
	Name string `json:"name"`
}

// Validate rejects names that cannot map onto exactly one file directly
// inside the storage root.
func (i Item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name,
			validation.Required,
			validation.Length(1, MaxNameLength),
			validation.By(plainFileName),
		),
	)
}

func plainFileName(value any) error {
	name, _ := value.(string)
	if name == "." || name == ".." {
		return errors.New("must not be a relative directory reference")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return errors.New("must not contain path separators or NUL")
	}
	return nil
}

// Event kinds recorded in the journal.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// Event is one journaled add or remove.
type Event struct {
	ID   int64     `json:"id"`
	Op   string    `json:"op"`
	Item string    `json:"item"`
	At   time.Time `json:"at"`
}
