package domain

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Tag-specific validation errors
var (
	// ErrTagIDEmpty is returned when a tag ID is empty or nil.
	ErrTagIDEmpty = errors.New("tag ID cannot be empty")

	// ErrTagNameEmpty is returned when a tag name is empty.
	ErrTagNameEmpty = errors.New("tag name cannot be empty")

	// ErrTagNameTooLong is returned when a tag name exceeds 200 characters.
	ErrTagNameTooLong = errors.New("tag name cannot exceed 200 characters")
)

// Tag is a label shared across tasks. Tag names are unique. Tags have a
// lifecycle independent of the tasks that reference them.
type Tag struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// NewTag creates a new Tag with the given name and description.
// Returns an error if validation fails.
func NewTag(name, description string) (*Tag, error) {
	tag := &Tag{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
// Returns an error if any field fails validation.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTagIDEmpty
	}

	if t.Name == "" {
		return ErrTagNameEmpty
	}

	if utf8.RuneCountInString(t.Name) > 200 {
		return ErrTagNameTooLong
	}

	return nil
}
