package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/types"
)

// GenerationInProgressError indicates a generation was requested for a brief
// that already has one running (or left stuck at generating). Concurrent
// requests are rejected, never queued.
type GenerationInProgressError struct {
	ID uuid.UUID
}

func (e *GenerationInProgressError) Error() string {
	return fmt.Sprintf("generation already in progress for brief %s", e.ID)
}

// NotGeneratingError indicates a reset was requested for a brief that is not
// stuck at status generating.
type NotGeneratingError struct {
	ID     uuid.UUID
	Status types.BriefStatus
}

func (e *NotGeneratingError) Error() string {
	return fmt.Sprintf("brief %s is not generating (status %s)", e.ID, e.Status)
}
