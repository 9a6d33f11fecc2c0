// Package regen re-runs a single unit of a generated brief (one PRD
// section, one stakeholder critique, or the executive summary) outside the
// full pipeline, recording a before/after diff and an audit trail.
package regen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/pipeline"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/scoring"
	"github.com/regulapm/nexus/internal/stages"
	"github.com/regulapm/nexus/internal/store"
	"github.com/regulapm/nexus/internal/types"
)

// PreconditionError indicates a regeneration was requested before the brief
// has the artifacts the operation depends on, or for an unknown unit.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// Controller performs single-unit regenerations. It shares the pipeline's
// lock registry; unit keys are scoped under the brief id so regenerating the
// same unit twice serializes. Different units stay concurrent because their
// store writes patch disjoint map entries.
type Controller struct {
	store  store.Store
	caller stages.Caller
	locks  *pipeline.LockRegistry
}

// NewController wires a regeneration controller.
func NewController(s store.Store, caller stages.Caller, locks *pipeline.LockRegistry) *Controller {
	return &Controller{store: s, caller: caller, locks: locks}
}

// RegenerateSection re-drafts one PRD section, stores the new content with a
// diff keyed "section:<key>", and resets that section's review status.
func (c *Controller) RegenerateSection(ctx context.Context, id uuid.UUID, sectionKey string) (*types.Brief, error) {
	if !types.IsValidPRDSection(sectionKey) {
		return nil, &PreconditionError{Message: fmt.Sprintf("unknown PRD section %q", sectionKey)}
	}

	release := c.locks.Acquire(id.String() + "/section/" + sectionKey)
	defer release()

	brief, err := c.store.GetBrief(ctx, id)
	if err != nil {
		return nil, err
	}
	if brief == nil {
		return nil, &store.NotFoundError{ID: id}
	}
	if brief.Entities == nil || brief.Graph == nil {
		return nil, &PreconditionError{Message: "brief has no generated entities and graph to regenerate from"}
	}

	prompt := prompts.Format(prompts.MustGet("regen.json", "section"), map[string]string{
		"Section":        sectionKey,
		"Title":          brief.Title,
		"FeatureSummary": brief.Entities.FeatureSummary,
		"Industry":       brief.IndustryContext,
	})
	raw, err := c.caller.Call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &llm.MalformedResponseError{Message: "section regeneration payload is not an object of strings", Cause: err}
	}
	newContent, ok := payload[sectionKey]
	if !ok || newContent == "" {
		return nil, &llm.MalformedResponseError{Message: fmt.Sprintf("section regeneration payload is missing %q", sectionKey)}
	}

	// Entry patches keep concurrent regenerations of different sections
	// disjoint; nothing outside this section's entries is rewritten.
	oldContent := brief.PRDSections[sectionKey]
	patch := map[string]any{}
	patch["prd_sections."+sectionKey] = newContent
	patch["section_statuses."+sectionKey] = types.ReviewNeedsReview
	patch["regeneration_diffs.section:"+sectionKey] = newDiff(oldContent, newContent)
	err = c.store.SetFields(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	err = c.audit(ctx, id, types.RevisionSectionRegeneration, types.EventSectionRegenerated,
		fmt.Sprintf("Regenerated PRD section %q", sectionKey))
	if err != nil {
		return nil, err
	}
	return c.store.GetBrief(ctx, id)
}

// RegenerateStakeholder re-runs one stakeholder critique, stores it with a
// diff keyed "stakeholder:<name>", and recomputes that stakeholder's risk
// tier.
func (c *Controller) RegenerateStakeholder(ctx context.Context, id uuid.UUID, name string) (*types.Brief, error) {
	if !types.IsValidStakeholder(name) {
		return nil, &PreconditionError{Message: fmt.Sprintf("unknown stakeholder %q", name)}
	}

	release := c.locks.Acquire(id.String() + "/stakeholder/" + name)
	defer release()

	brief, err := c.store.GetBrief(ctx, id)
	if err != nil {
		return nil, err
	}
	if brief == nil {
		return nil, &store.NotFoundError{ID: id}
	}
	if brief.Entities == nil {
		return nil, &PreconditionError{Message: "brief has no generated entities to regenerate from"}
	}

	prompt := prompts.Format(prompts.MustGet("regen.json", "stakeholder"), map[string]string{
		"Stakeholder":    name,
		"Title":          brief.Title,
		"FeatureSummary": brief.Entities.FeatureSummary,
		"Industry":       brief.IndustryContext,
	})
	raw, err := c.caller.Call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var pack types.CritiquePack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, &llm.MalformedResponseError{Message: "stakeholder regeneration payload is not a critique pack", Cause: err}
	}
	fillCritiqueDefaults(&pack)

	oldContent := marshalCritique(brief.StakeholderCritiques[name])
	patch := map[string]any{}
	patch["stakeholder_critiques."+name] = pack
	patch["stakeholder_risk_levels."+name] = scoring.ClassifyCritique(pack)
	patch["regeneration_diffs.stakeholder:"+name] = newDiff(oldContent, marshalCritique(pack))
	err = c.store.SetFields(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	err = c.audit(ctx, id, types.RevisionStakeholderRegeneration, types.EventStakeholderRegenerated,
		fmt.Sprintf("Regenerated %s critique", name))
	if err != nil {
		return nil, err
	}
	return c.store.GetBrief(ctx, id)
}

// RefreshExecutiveSummary re-runs the final synthesis stage against the
// brief's current artifacts, replacing the stored executive summary.
func (c *Controller) RefreshExecutiveSummary(ctx context.Context, id uuid.UUID) (*types.Brief, error) {
	release := c.locks.Acquire(id.String() + "/summary")
	defer release()

	brief, err := c.store.GetBrief(ctx, id)
	if err != nil {
		return nil, err
	}
	if brief == nil {
		return nil, &store.NotFoundError{ID: id}
	}
	if brief.Entities == nil || brief.StakeholderCritiques == nil {
		return nil, &PreconditionError{Message: "brief has no generated entities and critiques to summarize"}
	}

	input := stages.SummaryInputFrom(brief, brief.Entities, brief.StakeholderCritiques, brief.Checklist, brief.StakeholderRiskLevels)
	summary, err := stages.GenerateExecutiveSummary(ctx, c.caller, input)
	if err != nil {
		return nil, err
	}

	err = c.store.SetFields(ctx, id, map[string]any{
		"executive_summary": summary,
	})
	if err != nil {
		return nil, err
	}
	err = c.audit(ctx, id, types.RevisionSummaryRefresh, types.EventSummaryRefreshed, "Executive summary refreshed")
	if err != nil {
		return nil, err
	}
	return c.store.GetBrief(ctx, id)
}

func (c *Controller) audit(ctx context.Context, id uuid.UUID, revisionType, eventType, label string) error {
	now := time.Now().UTC()
	err := c.store.AppendRevision(ctx, id, types.Revision{
		ID:        uuid.New(),
		Type:      revisionType,
		Summary:   label,
		Timestamp: now,
	})
	if err != nil {
		return err
	}
	return c.store.AppendEvent(ctx, id, types.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Label:     label,
		Timestamp: now,
	})
}

// newDiff records the before/after pair for one unit. Written under the
// unit's diff key, it overwrites any diff a previous regeneration of that
// same unit left behind.
func newDiff(oldContent, newContent string) types.Diff {
	return types.Diff{
		OldContent: oldContent,
		NewContent: newContent,
		Timestamp:  time.Now().UTC(),
	}
}

func fillCritiqueDefaults(pack *types.CritiquePack) {
	if pack.Concerns == nil {
		pack.Concerns = []string{}
	}
	if pack.RequiredControls == nil {
		pack.RequiredControls = []string{}
	}
	if pack.RequiredApprovals == nil {
		pack.RequiredApprovals = []string{}
	}
	if pack.Questions == nil {
		pack.Questions = []string{}
	}
}

// marshalCritique renders a critique pack as stable JSON for diff contents.
// An empty pack renders as an empty string so a first regeneration shows an
// empty old side.
func marshalCritique(pack types.CritiquePack) string {
	if len(pack.Concerns) == 0 && len(pack.RequiredControls) == 0 &&
		len(pack.RequiredApprovals) == 0 && len(pack.Questions) == 0 {
		return ""
	}
	raw, err := json.Marshal(pack)
	if err != nil {
		return ""
	}
	return string(raw)
}
