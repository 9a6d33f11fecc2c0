// Package types - auth.go defines API request/response types for
// authentication and brief management.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateUserRequest represents the request to create a new user with password authentication.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// CreateBriefRequest represents the request to create a new decision brief.
type CreateBriefRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	MainInput       string   `json:"main_input"`
	InputType       string   `json:"input_type" validate:"omitempty,oneof=feature_idea prd_draft url"`
	IndustryContext string   `json:"industry_context"`
	DataSensitivity []string `json:"data_sensitivity"`
	Geography       string   `json:"geography"`
	LaunchType      string   `json:"launch_type"`
	RiskTolerance   string   `json:"risk_tolerance" validate:"omitempty,oneof=low medium high"`
}

// UpdateBriefRequest represents an edit to a draft brief's input fields.
// Nil pointers leave the current value unchanged.
type UpdateBriefRequest struct {
	Title           *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	MainInput       *string   `json:"main_input,omitempty"`
	IndustryContext *string   `json:"industry_context,omitempty"`
	DataSensitivity *[]string `json:"data_sensitivity,omitempty"`
	Geography       *string   `json:"geography,omitempty"`
	LaunchType      *string   `json:"launch_type,omitempty"`
	RiskTolerance   *string   `json:"risk_tolerance,omitempty" validate:"omitempty,oneof=low medium high"`
}

// RegenerateRequest selects a single unit to regenerate.
type RegenerateRequest struct {
	Type   string `json:"type" validate:"required,oneof=section stakeholder"`
	Target string `json:"target" validate:"required"`
}

// ChecklistToggleRequest flips the checked flag on one checklist item.
type ChecklistToggleRequest struct {
	Category string `json:"category" validate:"required"`
	Index    *int   `json:"index" validate:"required,min=0"`
}

// SectionStatusRequest sets the review status of one PRD section.
type SectionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=needs_review approved risk_identified"`
}

// AssumptionRequest creates or updates a recorded assumption.
type AssumptionRequest struct {
	Text       string `json:"text" validate:"required,min=1"`
	Confidence string `json:"confidence" validate:"required,oneof=low medium high"`
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateBriefRequest using the validator.
func (r *CreateBriefRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateBriefRequest using the validator.
func (r *UpdateBriefRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RegenerateRequest using the validator.
func (r *RegenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
