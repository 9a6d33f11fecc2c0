package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulapm/nexus/internal/types"
)

func newBrief(userID uuid.UUID, title string) *types.Brief {
	now := time.Now().UTC()
	return &types.Brief{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           title,
		MainInput:       "input",
		InputType:       types.InputFeatureIdea,
		Status:          types.StatusDraft,
		GenerationStage: types.StageNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestMemStore_GetBriefAbsent(t *testing.T) {
	s := NewMemStore()

	brief, err := s.GetBrief(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, brief)
}

func TestMemStore_CreateAndGet(t *testing.T) {
	s := NewMemStore()
	userID := uuid.New()
	brief := newBrief(userID, "Instant Payouts")

	require.NoError(t, s.CreateBrief(context.Background(), brief))

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Instant Payouts", got.Title)
	assert.Equal(t, types.StatusDraft, got.Status)

	// Duplicate ids are rejected.
	err = s.CreateBrief(context.Background(), brief)
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestMemStore_CopiesDoNotAlias(t *testing.T) {
	s := NewMemStore()
	brief := newBrief(uuid.New(), "Aliasing")
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	// Mutating the caller's struct after Create must not change the store.
	brief.Title = "mutated"

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aliasing", got.Title)

	// Mutating a returned copy must not change the store either.
	got.Status = types.StatusError
	again, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, again.Status)
}

func TestMemStore_SetFields(t *testing.T) {
	s := NewMemStore()
	brief := newBrief(uuid.New(), "Patch")
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	entities := &types.Entities{FeatureSummary: "summary", Risks: []types.Risk{{Name: "fraud"}}}
	err := s.SetFields(context.Background(), brief.ID, map[string]any{
		"status":           types.StatusGenerating,
		"generation_stage": types.StageEntities,
		"entities":         entities,
	})
	require.NoError(t, err)

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusGenerating, got.Status)
	assert.Equal(t, types.StageEntities, got.GenerationStage)
	require.NotNil(t, got.Entities)
	assert.Equal(t, "summary", got.Entities.FeatureSummary)

	// Untouched fields survive the patch.
	assert.Equal(t, "Patch", got.Title)
	assert.True(t, got.UpdatedAt.After(brief.UpdatedAt) || got.UpdatedAt.Equal(brief.UpdatedAt))
}

func TestMemStore_SetFieldsEntryPatch(t *testing.T) {
	s := NewMemStore()
	brief := newBrief(uuid.New(), "Entry patch")
	brief.PRDSections = map[string]string{"goals": "old goals", "metrics": "old metrics"}
	brief.SectionStatuses = map[string]types.ReviewStatus{
		"goals":   types.ReviewApproved,
		"metrics": types.ReviewApproved,
	}
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	err := s.SetFields(context.Background(), brief.ID, map[string]any{
		"prd_sections.goals":     "new goals",
		"section_statuses.goals": types.ReviewNeedsReview,
	})
	require.NoError(t, err)

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Equal(t, "new goals", got.PRDSections["goals"])
	assert.Equal(t, types.ReviewNeedsReview, got.SectionStatuses["goals"])

	// Sibling entries are untouched.
	assert.Equal(t, "old metrics", got.PRDSections["metrics"])
	assert.Equal(t, types.ReviewApproved, got.SectionStatuses["metrics"])
}

func TestMemStore_SetFieldsEntryPatchOnNilField(t *testing.T) {
	s := NewMemStore()
	brief := newBrief(uuid.New(), "Nil field")
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	err := s.SetFields(context.Background(), brief.ID, map[string]any{
		"regeneration_diffs.section:goals": types.Diff{OldContent: "", NewContent: "drafted"},
	})
	require.NoError(t, err)

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	require.Contains(t, got.RegenerationDiffs, "section:goals")
	assert.Equal(t, "drafted", got.RegenerationDiffs["section:goals"].NewContent)
}

func TestMemStore_SetFieldsRejectsUnknownField(t *testing.T) {
	s := NewMemStore()
	brief := newBrief(uuid.New(), "Whitelist")
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	err := s.SetFields(context.Background(), brief.ID, map[string]any{
		"revisions": []types.Revision{{Type: types.RevisionFullGeneration}},
	})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)

	err = s.SetFields(context.Background(), brief.ID, map[string]any{"id": uuid.New()})
	assert.ErrorAs(t, err, &storeErr)

	// Entry patches are only accepted on map-valued artifact fields.
	err = s.SetFields(context.Background(), brief.ID, map[string]any{"title.x": "y"})
	assert.ErrorAs(t, err, &storeErr)
	err = s.SetFields(context.Background(), brief.ID, map[string]any{"prd_sections.": "y"})
	assert.ErrorAs(t, err, &storeErr)
}

func TestMemStore_SetFieldsMissingBrief(t *testing.T) {
	s := NewMemStore()

	err := s.SetFields(context.Background(), uuid.New(), map[string]any{"title": "x"})
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMemStore_AppendEventAndRevision(t *testing.T) {
	s := NewMemStore()
	brief := newBrief(uuid.New(), "Audit")
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	for i, eventType := range []string{types.EventCreated, types.EventGenerationStarted, types.EventStageCompleted} {
		event := types.Event{ID: uuid.New(), Type: eventType, Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Millisecond)}
		require.NoError(t, s.AppendEvent(context.Background(), brief.ID, event))
	}
	require.NoError(t, s.AppendRevision(context.Background(), brief.ID, types.Revision{
		ID:   uuid.New(),
		Type: types.RevisionFullGeneration,
	}))

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	require.Len(t, got.TimelineEvents, 3)

	// Insertion order is preserved.
	assert.Equal(t, types.EventCreated, got.TimelineEvents[0].Type)
	assert.Equal(t, types.EventStageCompleted, got.TimelineEvents[2].Type)
	require.Len(t, got.Revisions, 1)

	var notFound *NotFoundError
	assert.ErrorAs(t, s.AppendEvent(context.Background(), uuid.New(), types.Event{}), &notFound)
	assert.ErrorAs(t, s.AppendRevision(context.Background(), uuid.New(), types.Revision{}), &notFound)
}

func TestMemStore_ListBriefs(t *testing.T) {
	s := NewMemStore()
	owner := uuid.New()
	other := uuid.New()

	first := newBrief(owner, "first")
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	second := newBrief(owner, "second")
	require.NoError(t, s.CreateBrief(context.Background(), first))
	require.NoError(t, s.CreateBrief(context.Background(), second))
	require.NoError(t, s.CreateBrief(context.Background(), newBrief(other, "theirs")))

	summaries, err := s.ListBriefs(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest first, and only the owner's briefs.
	assert.Equal(t, "second", summaries[0].Title)
	assert.Equal(t, "first", summaries[1].Title)
}

func TestMemStore_DeleteBrief(t *testing.T) {
	s := NewMemStore()
	owner := uuid.New()
	brief := newBrief(owner, "doomed")
	require.NoError(t, s.CreateBrief(context.Background(), brief))

	// Wrong owner cannot delete.
	var notFound *NotFoundError
	assert.ErrorAs(t, s.DeleteBrief(context.Background(), brief.ID, uuid.New()), &notFound)

	require.NoError(t, s.DeleteBrief(context.Background(), brief.ID, owner))

	got, err := s.GetBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
