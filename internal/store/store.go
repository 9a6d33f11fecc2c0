// Package store defines the persistence contract for decision briefs and an
// in-memory implementation used by tests and demo mode.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/types"
)

// Store is the persistence contract the pipeline, regeneration controller,
// and HTTP handlers depend on. GetBrief returns (nil, nil) when no brief
// exists with the given id; callers decide whether absence is an error.
type Store interface {
	GetBrief(ctx context.Context, id uuid.UUID) (*types.Brief, error)
	CreateBrief(ctx context.Context, brief *types.Brief) error

	// SetFields atomically patches the named document fields on one brief
	// and bumps updated_at. Keys are the brief's JSON field names and must
	// be in the updatable set. A key of the form "<field>.<entry>" patches
	// one entry of a map-valued field, leaving its siblings untouched, so
	// writers of different entries never overwrite each other.
	SetFields(ctx context.Context, id uuid.UUID, fields map[string]any) error

	AppendEvent(ctx context.Context, id uuid.UUID, event types.Event) error
	AppendRevision(ctx context.Context, id uuid.UUID, revision types.Revision) error

	ListBriefs(ctx context.Context, userID uuid.UUID) ([]types.BriefSummary, error)
	DeleteBrief(ctx context.Context, id, userID uuid.UUID) error
}

// updatableFields is the set of brief document fields SetFields may patch.
// Identity and audit fields (id, user_id, created_at, revisions,
// timeline_events) are excluded; audit trails grow only through the Append
// methods.
var updatableFields = map[string]bool{
	"title":            true,
	"main_input":       true,
	"input_type":       true,
	"industry_context": true,
	"data_sensitivity": true,
	"geography":        true,
	"launch_type":      true,
	"risk_tolerance":   true,

	"status":           true,
	"generation_stage": true,
	"error_message":    true,

	"entities":              true,
	"graph":                 true,
	"prd_sections":          true,
	"stakeholder_critiques": true,
	"checklist":             true,
	"traceability":          true,
	"executive_summary":     true,

	"section_statuses":        true,
	"stakeholder_risk_levels": true,
	"assumptions":             true,
	"regeneration_diffs":      true,
}

// nestedFields are the map-valued fields whose entries may be patched
// individually with a "<field>.<entry>" key. The entry name is everything
// after the first dot; entry names themselves never contain dots.
var nestedFields = map[string]bool{
	"prd_sections":            true,
	"section_statuses":        true,
	"stakeholder_critiques":   true,
	"stakeholder_risk_levels": true,
	"regeneration_diffs":      true,
}

// IsUpdatableField reports whether name is a field SetFields accepts.
func IsUpdatableField(name string) bool {
	return updatableFields[name]
}

// SplitFieldKey splits a SetFields key into its field name and optional map
// entry. For "prd_sections.goals" it returns ("prd_sections", "goals", true);
// for a plain field name the entry is empty.
func SplitFieldKey(key string) (field, entry string, nested bool) {
	field, entry, nested = strings.Cut(key, ".")
	return field, entry, nested
}

// IsUpdatableKey reports whether key is accepted by SetFields: a whole
// updatable field, or a named entry of a nested map field.
func IsUpdatableKey(key string) bool {
	field, entry, nested := SplitFieldKey(key)
	if !nested {
		return updatableFields[field]
	}
	return entry != "" && nestedFields[field]
}

// NotFoundError indicates a write targeted a brief that does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("brief %s not found", e.ID)
}

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
