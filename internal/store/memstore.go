package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/types"
)

// MemStore is a map-backed Store. Briefs are deep-copied on the way in and
// out so callers can never alias stored state. Used by tests and by
// `nexus serve --memory`.
type MemStore struct {
	mu     sync.RWMutex
	briefs map[uuid.UUID]*types.Brief
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{briefs: make(map[uuid.UUID]*types.Brief)}
}

// GetBrief returns a copy of the brief, or (nil, nil) when absent.
func (m *MemStore) GetBrief(_ context.Context, id uuid.UUID) (*types.Brief, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	brief, ok := m.briefs[id]
	if !ok {
		return nil, nil
	}
	return cloneBrief(brief)
}

// CreateBrief stores a copy of the brief, rejecting duplicate ids.
func (m *MemStore) CreateBrief(_ context.Context, brief *types.Brief) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.briefs[brief.ID]; exists {
		return &StoreError{Op: "create brief", Err: fmt.Errorf("duplicate id %s", brief.ID)}
	}
	copied, err := cloneBrief(brief)
	if err != nil {
		return err
	}
	m.briefs[brief.ID] = copied
	return nil
}

// SetFields patches the named fields on the stored brief document. The patch
// is applied as a JSON merge so values of any artifact type are accepted, and
// either every field applies or none do.
func (m *MemStore) SetFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	brief, ok := m.briefs[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	doc := make(map[string]json.RawMessage)
	raw, err := json.Marshal(brief)
	if err != nil {
		return &StoreError{Op: "set fields", Err: err}
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &StoreError{Op: "set fields", Err: err}
	}

	for key, value := range fields {
		if !IsUpdatableKey(key) {
			return &StoreError{Op: "set fields", Err: fmt.Errorf("field %q is not updatable", key)}
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return &StoreError{Op: "set fields", Err: fmt.Errorf("field %q: %w", key, err)}
		}

		field, entry, nested := SplitFieldKey(key)
		if !nested {
			doc[field] = encoded
			continue
		}

		// Entry patch: rewrite just one key of the map-valued field. A
		// field that is still null starts as an empty map.
		inner := make(map[string]json.RawMessage)
		if raw, ok := doc[field]; ok && string(raw) != "null" {
			if err := json.Unmarshal(raw, &inner); err != nil {
				return &StoreError{Op: "set fields", Err: fmt.Errorf("field %q: %w", field, err)}
			}
		}
		inner[entry] = encoded
		merged, err := json.Marshal(inner)
		if err != nil {
			return &StoreError{Op: "set fields", Err: fmt.Errorf("field %q: %w", field, err)}
		}
		doc[field] = merged
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return &StoreError{Op: "set fields", Err: err}
	}
	updated := new(types.Brief)
	if err := json.Unmarshal(merged, updated); err != nil {
		return &StoreError{Op: "set fields", Err: err}
	}
	updated.UpdatedAt = time.Now().UTC()
	m.briefs[id] = updated
	return nil
}

// AppendEvent appends one timeline event to the stored brief.
func (m *MemStore) AppendEvent(_ context.Context, id uuid.UUID, event types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	brief, ok := m.briefs[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	brief.TimelineEvents = append(brief.TimelineEvents, event)
	brief.UpdatedAt = time.Now().UTC()
	return nil
}

// AppendRevision appends one revision record to the stored brief.
func (m *MemStore) AppendRevision(_ context.Context, id uuid.UUID, revision types.Revision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	brief, ok := m.briefs[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	brief.Revisions = append(brief.Revisions, revision)
	brief.UpdatedAt = time.Now().UTC()
	return nil
}

// ListBriefs returns summaries of the user's briefs, newest first.
func (m *MemStore) ListBriefs(_ context.Context, userID uuid.UUID) ([]types.BriefSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]types.BriefSummary, 0)
	for _, brief := range m.briefs {
		if brief.UserID != userID {
			continue
		}
		summaries = append(summaries, types.BriefSummary{
			ID:              brief.ID,
			Title:           brief.Title,
			Status:          brief.Status,
			GenerationStage: brief.GenerationStage,
			IndustryContext: brief.IndustryContext,
			LaunchType:      brief.LaunchType,
			CreatedAt:       brief.CreatedAt,
			UpdatedAt:       brief.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID.String() < summaries[j].ID.String()
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// DeleteBrief removes the brief if it exists and belongs to the user.
func (m *MemStore) DeleteBrief(_ context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	brief, ok := m.briefs[id]
	if !ok || brief.UserID != userID {
		return &NotFoundError{ID: id}
	}
	delete(m.briefs, id)
	return nil
}

// cloneBrief deep-copies a brief through its JSON form.
func cloneBrief(brief *types.Brief) (*types.Brief, error) {
	raw, err := json.Marshal(brief)
	if err != nil {
		return nil, &StoreError{Op: "clone brief", Err: err}
	}
	copied := new(types.Brief)
	if err := json.Unmarshal(raw, copied); err != nil {
		return nil, &StoreError{Op: "clone brief", Err: err}
	}
	return copied, nil
}
