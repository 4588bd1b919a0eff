package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment-specific validation errors
var (
	// ErrCommentIDEmpty is returned when a comment ID is empty or nil.
	ErrCommentIDEmpty = errors.New("comment ID cannot be empty")

	// ErrCommentTaskIDEmpty is returned when a comment's task ID is empty or nil.
	ErrCommentTaskIDEmpty = errors.New("comment task ID cannot be empty")

	// ErrCommentAuthorEmpty is returned when a comment's author ID is empty or nil.
	ErrCommentAuthorEmpty = errors.New("comment author ID cannot be empty")

	// ErrCommentTextEmpty is returned when a comment's text is empty.
	ErrCommentTextEmpty = errors.New("comment text cannot be empty")
)

// Comment is a free-form note attached to a task. Comments are append-only
// and are removed together with their task.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task"`
	AuthorID  uuid.UUID `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a new Comment on the given task.
// It generates a new UUID for the comment ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewComment(taskID, authorID uuid.UUID, text string) (*Comment, error) {
	comment := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
// Returns an error if any field fails validation.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCommentIDEmpty
	}

	if c.TaskID == uuid.Nil {
		return ErrCommentTaskIDEmpty
	}

	if c.AuthorID == uuid.Nil {
		return ErrCommentAuthorEmpty
	}

	if c.Text == "" {
		return ErrCommentTextEmpty
	}

	return nil
}
