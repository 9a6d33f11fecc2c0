// Package pipeline orchestrates the staged generation of a decision brief:
// entities, graph, PRD, stakeholder critiques, checklist, traceability, and
// the executive summary, with a persisted checkpoint after each stage.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/graph"
	"github.com/regulapm/nexus/internal/scoring"
	"github.com/regulapm/nexus/internal/stages"
	"github.com/regulapm/nexus/internal/store"
	"github.com/regulapm/nexus/internal/types"
)

// Orchestrator runs the generation pipeline against a store. It exclusively
// owns status and generation_stage transitions.
type Orchestrator struct {
	store  store.Store
	caller stages.Caller
	locks  *LockRegistry
}

// NewOrchestrator wires an orchestrator around a store, a model caller, and
// a shared lock registry.
func NewOrchestrator(s store.Store, caller stages.Caller, locks *LockRegistry) *Orchestrator {
	return &Orchestrator{store: s, caller: caller, locks: locks}
}

// Locks exposes the shared lock registry so the regeneration controller can
// serialize against running generations.
func (o *Orchestrator) Locks() *LockRegistry {
	return o.locks
}

// RunGeneration executes the full pipeline for one brief and returns the
// final persisted state. A brief already generating, whether from a live run
// or a crashed one, is rejected with *GenerationInProgressError; recovery
// from a stuck run goes through ResetStuckGeneration.
func (o *Orchestrator) RunGeneration(ctx context.Context, id uuid.UUID) (*types.Brief, error) {
	release, ok := o.locks.TryAcquire(id.String())
	if !ok {
		return nil, &GenerationInProgressError{ID: id}
	}
	defer release()

	brief, err := o.store.GetBrief(ctx, id)
	if err != nil {
		return nil, err
	}
	if brief == nil {
		return nil, &store.NotFoundError{ID: id}
	}
	if brief.Status == types.StatusGenerating {
		return nil, &GenerationInProgressError{ID: id}
	}

	// Checkpoint 0: claim the brief and reset the stage cursor.
	err = o.store.SetFields(ctx, id, map[string]any{
		"status":           types.StatusGenerating,
		"generation_stage": types.StageEntities,
		"error_message":    "",
	})
	if err != nil {
		return nil, err
	}
	if err := o.appendEvent(ctx, id, types.EventGenerationStarted, "Generation started"); err != nil {
		return nil, err
	}

	fmt.Printf("Stage 1/6: Extracting entities for brief %s...\n", id)
	entities, err := stages.ExtractEntities(ctx, o.caller, stages.EntitiesInputFromBrief(brief))
	if err != nil {
		return nil, o.fail(ctx, id, fmt.Errorf("entities stage failed: %w", err))
	}
	err = o.checkpoint(ctx, id, types.StageGraph, "Entities extracted", map[string]any{
		"entities": entities,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Stage 2/6: Building dependency graph...\n")
	g := graph.Build(entities, brief)
	err = o.checkpoint(ctx, id, types.StagePRD, "Graph built", map[string]any{
		"graph": g,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Stage 3/6: Drafting PRD sections...\n")
	prdSections, err := stages.GeneratePRD(ctx, o.caller, stages.PRDInputFrom(brief, entities))
	if err != nil {
		return nil, o.fail(ctx, id, fmt.Errorf("prd stage failed: %w", err))
	}
	sectionStatuses := make(map[string]types.ReviewStatus, len(types.PRDSectionKeys))
	for _, key := range types.PRDSectionKeys {
		sectionStatuses[key] = types.ReviewNeedsReview
	}
	err = o.checkpoint(ctx, id, types.StageStakeholders, "PRD drafted", map[string]any{
		"prd_sections":     prdSections,
		"section_statuses": sectionStatuses,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Stage 4/6: Collecting stakeholder critiques...\n")
	critiques, err := stages.GenerateStakeholders(ctx, o.caller, stages.StakeholdersInputFrom(brief, entities))
	if err != nil {
		return nil, o.fail(ctx, id, fmt.Errorf("stakeholders stage failed: %w", err))
	}
	riskLevels := scoring.ComputeStakeholderRiskLevels(critiques)
	err = o.checkpoint(ctx, id, types.StageChecklist, "Stakeholder critiques collected", map[string]any{
		"stakeholder_critiques":   critiques,
		"stakeholder_risk_levels": riskLevels,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Stage 5/6: Building launch checklist...\n")
	checklist, err := stages.GenerateChecklist(ctx, o.caller, stages.ChecklistInputFromBrief(brief))
	if err != nil {
		return nil, o.fail(ctx, id, fmt.Errorf("checklist stage failed: %w", err))
	}
	err = o.checkpoint(ctx, id, types.StageTraceability, "Checklist built", map[string]any{
		"checklist": checklist,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Stage 6/6: Tracing requirements and summarizing...\n")
	traceability, err := stages.BuildTraceability(ctx, o.caller, stages.TraceabilityInputFrom(prdSections, g))
	if err != nil {
		return nil, o.fail(ctx, id, fmt.Errorf("traceability stage failed: %w", err))
	}
	summary, err := stages.GenerateExecutiveSummary(ctx, o.caller,
		stages.SummaryInputFrom(brief, entities, critiques, checklist, riskLevels))
	if err != nil {
		return nil, o.fail(ctx, id, fmt.Errorf("executive summary stage failed: %w", err))
	}

	// Final commit. The revision and completion event are appended before
	// the status flips to complete: a crash in between leaves the brief
	// generating and recoverable through reset, never complete without its
	// full_generation revision.
	err = o.store.SetFields(ctx, id, map[string]any{
		"traceability":      traceability,
		"executive_summary": summary,
	})
	if err != nil {
		return nil, err
	}
	err = o.store.AppendRevision(ctx, id, types.Revision{
		ID:        uuid.New(),
		Type:      types.RevisionFullGeneration,
		Summary:   fmt.Sprintf("Full generation of %q", brief.Title),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := o.appendEvent(ctx, id, types.EventGenerationComplete, "Generation complete"); err != nil {
		return nil, err
	}
	err = o.store.SetFields(ctx, id, map[string]any{
		"status":           types.StatusComplete,
		"generation_stage": types.StageDone,
	})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Done. Brief %s is complete.\n", id)

	return o.store.GetBrief(ctx, id)
}

// ResetStuckGeneration flips a brief stuck at status generating back to
// draft so the caller can restart from the first stage. Partial artifacts
// are kept for inspection. A brief with a live run holding the lock is
// rejected.
func (o *Orchestrator) ResetStuckGeneration(ctx context.Context, id uuid.UUID) (*types.Brief, error) {
	release, ok := o.locks.TryAcquire(id.String())
	if !ok {
		return nil, &GenerationInProgressError{ID: id}
	}
	defer release()

	brief, err := o.store.GetBrief(ctx, id)
	if err != nil {
		return nil, err
	}
	if brief == nil {
		return nil, &store.NotFoundError{ID: id}
	}
	if brief.Status != types.StatusGenerating {
		return nil, &NotGeneratingError{ID: id, Status: brief.Status}
	}

	err = o.store.SetFields(ctx, id, map[string]any{
		"status":        types.StatusDraft,
		"error_message": "",
	})
	if err != nil {
		return nil, err
	}
	label := fmt.Sprintf("Generation reset from stage %s", brief.GenerationStage)
	if err := o.appendEvent(ctx, id, types.EventGenerationReset, label); err != nil {
		return nil, err
	}
	return o.store.GetBrief(ctx, id)
}

// checkpoint persists one stage's artifacts, advances the stage cursor, and
// records the transition on the timeline.
func (o *Orchestrator) checkpoint(ctx context.Context, id uuid.UUID, next types.GenerationStage, label string, fields map[string]any) error {
	fields["generation_stage"] = next
	if err := o.store.SetFields(ctx, id, fields); err != nil {
		return err
	}
	return o.appendEvent(ctx, id, types.EventStageCompleted, label)
}

// fail marks the brief errored, keeping the stage cursor and any partial
// artifacts for inspection, and returns the stage error.
func (o *Orchestrator) fail(ctx context.Context, id uuid.UUID, stageErr error) error {
	fmt.Printf("Generation failed for brief %s: %v\n", id, stageErr)

	err := o.store.SetFields(ctx, id, map[string]any{
		"status":        types.StatusError,
		"error_message": stageErr.Error(),
	})
	if err != nil {
		return err
	}
	if err := o.appendEvent(ctx, id, types.EventGenerationFailed, stageErr.Error()); err != nil {
		return err
	}
	return stageErr
}

func (o *Orchestrator) appendEvent(ctx context.Context, id uuid.UUID, eventType, label string) error {
	return o.store.AppendEvent(ctx, id, types.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Label:     label,
		Timestamp: time.Now().UTC(),
	})
}
