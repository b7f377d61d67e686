// Package tags manages globally named labels and their many-to-many
// associations with documents. Tag names are unique across all users and
// tags are created lazily on first use.
package tags

import "errors"

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var (
	ErrNotFound     = errors.New("tag not found")
	ErrInvalidInput = errors.New("invalid tag input")
)
