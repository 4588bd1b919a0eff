package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateUserRequest defines the payload for a partial user profile update.
// Absent fields are left unchanged. ClearTeam removes the team reference and
// wins over TeamID.
type UpdateUserRequest struct {
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Role      *string    `json:"role,omitempty"  validate:"omitempty,max=100"`
	TeamID    *uuid.UUID `json:"team,omitempty"`
	ClearTeam bool       `json:"clear_team,omitempty"`
}

// CreateTeamRequest defines the payload for team creation.
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateTaskRequest defines the payload for task creation. When Template is
// set, the named template supplies defaults for fields left at their zero
// value.
type CreateTaskRequest struct {
	Title          string          `json:"title"            validate:"required,max=200"`
	Description    string          `json:"description"`
	Priority       string          `json:"priority,omitempty"        validate:"omitempty,oneof=low medium high critical"`
	DueDate        time.Time       `json:"due_date"         validate:"required"`
	EstimatedHours float64         `json:"estimated_hours"  validate:"gte=0"`
	AssigneeIDs    []uuid.UUID     `json:"assigned_to,omitempty"`
	TagIDs         []uuid.UUID     `json:"tags,omitempty"`
	ParentTaskID   *uuid.UUID      `json:"parent_task,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Template       string          `json:"template,omitempty"`
}

// UpdateTaskRequest defines the payload for a partial task update. Absent
// fields are left unchanged. ClearParent removes the parent reference and
// wins over ParentTaskID.
type UpdateTaskRequest struct {
	Title          *string          `json:"title,omitempty"           validate:"omitempty,max=200"`
	Description    *string          `json:"description,omitempty"`
	Status         *string          `json:"status,omitempty"          validate:"omitempty,oneof=todo in_progress done overdue"`
	Priority       *string          `json:"priority,omitempty"        validate:"omitempty,oneof=low medium high critical"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	EstimatedHours *float64         `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ActualHours    *float64         `json:"actual_hours,omitempty"    validate:"omitempty,gte=0"`
	AssigneeIDs    *[]uuid.UUID     `json:"assigned_to,omitempty"`
	TagIDs         *[]uuid.UUID     `json:"tags,omitempty"`
	ParentTaskID   *uuid.UUID       `json:"parent_task,omitempty"`
	ClearParent    bool             `json:"clear_parent,omitempty"`
	Metadata       json.RawMessage  `json:"metadata,omitempty"`
	IsArchived     *bool            `json:"is_archived,omitempty"`
}

// AssignUserRequest defines the payload for adding an assignee to a task.
type AssignUserRequest struct {
	UserID uuid.UUID `json:"user"           validate:"required"`
	Role   string    `json:"role,omitempty" validate:"omitempty,max=100"`
}

// AddCommentRequest defines the payload for commenting on a task.
type AddCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// CreateTagRequest defines the payload for tag creation.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

// CreateTemplateRequest defines the payload for task template creation.
type CreateTemplateRequest struct {
	Name                  string          `json:"name"                    validate:"required,max=200"`
	Description           string          `json:"description"`
	DefaultPriority       string          `json:"default_priority,omitempty"        validate:"omitempty,oneof=low medium high critical"`
	DefaultEstimatedHours float64         `json:"default_estimated_hours" validate:"gte=0"`
	Metadata              json.RawMessage `json:"metadata,omitempty"`
}
