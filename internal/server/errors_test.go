package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/regulapm/nexus/internal/ingestion"
	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/pipeline"
	"github.com/regulapm/nexus/internal/regen"
	"github.com/regulapm/nexus/internal/store"
	"github.com/regulapm/nexus/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"user not found", &ErrUserNotFound{UserID: id}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "title", Message: "required"}, http.StatusBadRequest},
		{"not editable", &ErrBriefNotEditable{ID: id, Status: "complete"}, http.StatusConflict},
		{"brief not found", &store.NotFoundError{ID: id}, http.StatusNotFound},
		{"generation in progress", &pipeline.GenerationInProgressError{ID: id}, http.StatusConflict},
		{"not generating", &pipeline.NotGeneratingError{ID: id, Status: types.StatusDraft}, http.StatusConflict},
		{"regen precondition", &regen.PreconditionError{Message: "no PRD"}, http.StatusConflict},
		{"model exhausted", &llm.ModelExhaustedError{Attempts: 6}, http.StatusBadGateway},
		{"malformed response", &llm.MalformedResponseError{Message: "bad json"}, http.StatusBadGateway},
		{"ingestion", &ingestion.Error{URL: "http://x", Message: "fetch failed"}, http.StatusUnprocessableEntity},
		{"store", &store.StoreError{Op: "set_fields", Err: errors.New("conn reset")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

// Pipeline failures come back wrapped with stage context; the mapping has to
// see through the wrapping.
func TestHTTPStatusWrapped(t *testing.T) {
	err := fmt.Errorf("entities stage failed: %w", &llm.ModelExhaustedError{Attempts: 6})
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))

	err = fmt.Errorf("load brief: %w", &store.NotFoundError{ID: uuid.New()})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}
