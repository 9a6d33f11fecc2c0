// Package server provides the HTTP REST API for the decision brief service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/ingestion"
	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/pipeline"
	"github.com/regulapm/nexus/internal/regen"
	"github.com/regulapm/nexus/internal/store"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBriefNotEditable indicates an edit was attempted on a brief whose input
// fields are frozen (any status other than draft).
type ErrBriefNotEditable struct {
	ID     uuid.UUID
	Status string
}

func (e *ErrBriefNotEditable) Error() string {
	return fmt.Sprintf("brief %s is %s; input fields can only be edited while draft", e.ID, e.Status)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Pipeline and regeneration errors arrive wrapped, so matching uses errors.As
// rather than a direct type switch.
func HTTPStatus(err error) int {
	var (
		emailExists   *ErrEmailAlreadyExists
		invalidCreds  *ErrInvalidCredentials
		userNotFound  *ErrUserNotFound
		validation    *ErrValidation
		notEditable   *ErrBriefNotEditable
		notFound      *store.NotFoundError
		inProgress    *pipeline.GenerationInProgressError
		notGenerating *pipeline.NotGeneratingError
		precondition  *regen.PreconditionError
		exhausted     *llm.ModelExhaustedError
		malformed     *llm.MalformedResponseError
		ingestErr     *ingestion.Error
		storeErr      *store.StoreError
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &invalidCreds):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &notEditable),
		errors.As(err, &inProgress),
		errors.As(err, &notGenerating),
		errors.As(err, &precondition):
		return http.StatusConflict
	case errors.As(err, &exhausted), errors.As(err, &malformed):
		return http.StatusBadGateway
	case errors.As(err, &ingestErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
