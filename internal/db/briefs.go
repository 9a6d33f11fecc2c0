package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/regulapm/nexus/internal/store"
	"github.com/regulapm/nexus/internal/types"
)

// jsonbColumns are the updatable decision_briefs columns stored as JSONB;
// every other updatable column is text.
var jsonbColumns = map[string]bool{
	"data_sensitivity":        true,
	"entities":                true,
	"graph":                   true,
	"prd_sections":            true,
	"stakeholder_critiques":   true,
	"checklist":               true,
	"traceability":            true,
	"executive_summary":       true,
	"section_statuses":        true,
	"stakeholder_risk_levels": true,
	"assumptions":             true,
	"regeneration_diffs":      true,
}

const briefColumns = `id, user_id, title, main_input, input_type, industry_context,
	data_sensitivity, geography, launch_type, risk_tolerance,
	status, generation_stage, error_message,
	entities, graph, prd_sections, stakeholder_critiques, checklist,
	traceability, executive_summary,
	section_statuses, stakeholder_risk_levels, assumptions, regeneration_diffs,
	revisions, timeline_events, created_at, updated_at`

// GetBrief loads one brief, or (nil, nil) when absent.
func (db *DB) GetBrief(ctx context.Context, id uuid.UUID) (*types.Brief, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+briefColumns+` FROM decision_briefs WHERE id = $1`, id)

	brief, err := scanBrief(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &store.StoreError{Op: "get brief", Err: err}
	}
	return brief, nil
}

// CreateBrief inserts a brief with all of its document fields.
func (db *DB) CreateBrief(ctx context.Context, brief *types.Brief) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO decision_briefs (
			id, user_id, title, main_input, input_type, industry_context,
			data_sensitivity, geography, launch_type, risk_tolerance,
			status, generation_stage, error_message,
			entities, graph, prd_sections, stakeholder_critiques, checklist,
			traceability, executive_summary,
			section_statuses, stakeholder_risk_levels, assumptions, regeneration_diffs,
			revisions, timeline_events, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`,
		brief.ID, brief.UserID, brief.Title, brief.MainInput, string(brief.InputType), brief.IndustryContext,
		mustMarshal(brief.DataSensitivity), brief.Geography, brief.LaunchType, brief.RiskTolerance,
		string(brief.Status), string(brief.GenerationStage), brief.ErrorMessage,
		marshalNullable(brief.Entities == nil, brief.Entities),
		marshalNullable(brief.Graph == nil, brief.Graph),
		marshalNullable(brief.PRDSections == nil, brief.PRDSections),
		marshalNullable(brief.StakeholderCritiques == nil, brief.StakeholderCritiques),
		marshalNullable(brief.Checklist == nil, brief.Checklist),
		marshalNullable(brief.Traceability == nil, brief.Traceability),
		marshalNullable(brief.ExecutiveSummary == nil, brief.ExecutiveSummary),
		mustMarshal(brief.SectionStatuses), mustMarshal(brief.StakeholderRiskLevels),
		mustMarshal(brief.Assumptions), mustMarshal(brief.RegenerationDiffs),
		mustMarshal(brief.Revisions), mustMarshal(brief.TimelineEvents),
		brief.CreatedAt, brief.UpdatedAt,
	)
	if err != nil {
		return &store.StoreError{Op: "create brief", Err: err}
	}
	return nil
}

// SetFields patches the named document fields on one brief in a single
// UPDATE, bumping updated_at.
func (db *DB) SetFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	query, args, err := buildSetFieldsQuery(id, fields)
	if err != nil {
		return err
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return &store.StoreError{Op: "set fields", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &store.NotFoundError{ID: id}
	}
	return nil
}

// AppendEvent appends one timeline event using jsonb array concatenation.
func (db *DB) AppendEvent(ctx context.Context, id uuid.UUID, event types.Event) error {
	return db.appendToList(ctx, id, "timeline_events", event, "append event")
}

// AppendRevision appends one revision record.
func (db *DB) AppendRevision(ctx context.Context, id uuid.UUID, revision types.Revision) error {
	return db.appendToList(ctx, id, "revisions", revision, "append revision")
}

func (db *DB) appendToList(ctx context.Context, id uuid.UUID, column string, item any, op string) error {
	raw, err := json.Marshal([]any{item})
	if err != nil {
		return &store.StoreError{Op: op, Err: err}
	}

	tag, err := db.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE decision_briefs SET %s = %s || $1::jsonb, updated_at = NOW() WHERE id = $2`, column, column),
		raw, id)
	if err != nil {
		return &store.StoreError{Op: op, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &store.NotFoundError{ID: id}
	}
	return nil
}

// ListBriefs returns summaries of the user's briefs, newest first.
func (db *DB) ListBriefs(ctx context.Context, userID uuid.UUID) ([]types.BriefSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, status, generation_stage, industry_context, launch_type, created_at, updated_at
		 FROM decision_briefs WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, &store.StoreError{Op: "list briefs", Err: err}
	}
	defer rows.Close()

	summaries := make([]types.BriefSummary, 0)
	for rows.Next() {
		var s types.BriefSummary
		var status, stage string
		err := rows.Scan(&s.ID, &s.Title, &status, &stage, &s.IndustryContext, &s.LaunchType, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, &store.StoreError{Op: "list briefs", Err: err}
		}
		s.Status = types.BriefStatus(status)
		s.GenerationStage = types.GenerationStage(stage)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteBrief removes the brief if it exists and belongs to the user.
func (db *DB) DeleteBrief(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM decision_briefs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return &store.StoreError{Op: "delete brief", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &store.NotFoundError{ID: id}
	}
	return nil
}

// buildSetFieldsQuery renders the whitelisted UPDATE for a field patch.
// Fields are applied in sorted order so the generated SQL is deterministic.
// A "<column>.<entry>" key becomes a jsonb_set on that one entry, so patches
// of different entries commute.
func buildSetFieldsQuery(id uuid.UUID, fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, &store.StoreError{Op: "set fields", Err: errors.New("no fields to update")}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		if !store.IsUpdatableKey(key) {
			return "", nil, &store.StoreError{Op: "set fields", Err: fmt.Errorf("field %q is not updatable", key)}
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sets []string
	var args []any
	for _, key := range keys {
		column, entry, nested := store.SplitFieldKey(key)
		switch {
		case nested:
			raw, err := json.Marshal(fields[key])
			if err != nil {
				return "", nil, &store.StoreError{Op: "set fields", Err: fmt.Errorf("field %q: %w", key, err)}
			}
			args = append(args, []string{entry})
			pathArg := len(args)
			args = append(args, raw)
			sets = append(sets, fmt.Sprintf("%s = jsonb_set(COALESCE(%s, '{}'::jsonb), $%d::text[], $%d::jsonb, true)",
				column, column, pathArg, pathArg+1))
		case jsonbColumns[column]:
			raw, err := json.Marshal(fields[key])
			if err != nil {
				return "", nil, &store.StoreError{Op: "set fields", Err: fmt.Errorf("field %q: %w", key, err)}
			}
			args = append(args, raw)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		default:
			args = append(args, fmt.Sprintf("%v", fields[key]))
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE decision_briefs SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	return query, args, nil
}

// scanBrief reads one decision_briefs row into a Brief.
func scanBrief(row pgx.Row) (*types.Brief, error) {
	var brief types.Brief
	var inputType, status, stage string
	var sensitivity, statuses, riskLevels, assumptions, diffs, revisions, events []byte
	var entities, graphDoc, sections, critiques, checklist, traceability, summary []byte

	err := row.Scan(
		&brief.ID, &brief.UserID, &brief.Title, &brief.MainInput, &inputType, &brief.IndustryContext,
		&sensitivity, &brief.Geography, &brief.LaunchType, &brief.RiskTolerance,
		&status, &stage, &brief.ErrorMessage,
		&entities, &graphDoc, &sections, &critiques, &checklist, &traceability, &summary,
		&statuses, &riskLevels, &assumptions, &diffs,
		&revisions, &events, &brief.CreatedAt, &brief.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	brief.InputType = types.InputType(inputType)
	brief.Status = types.BriefStatus(status)
	brief.GenerationStage = types.GenerationStage(stage)

	for _, field := range []struct {
		raw []byte
		dst any
	}{
		{sensitivity, &brief.DataSensitivity},
		{entities, &brief.Entities},
		{graphDoc, &brief.Graph},
		{sections, &brief.PRDSections},
		{critiques, &brief.StakeholderCritiques},
		{checklist, &brief.Checklist},
		{traceability, &brief.Traceability},
		{summary, &brief.ExecutiveSummary},
		{statuses, &brief.SectionStatuses},
		{riskLevels, &brief.StakeholderRiskLevels},
		{assumptions, &brief.Assumptions},
		{diffs, &brief.RegenerationDiffs},
		{revisions, &brief.Revisions},
		{events, &brief.TimelineEvents},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("failed to decode brief document field: %w", err)
		}
	}
	return &brief, nil
}

// mustMarshal renders a collection column value, writing nil slices and maps
// as their empty form. A bare null scalar would poison later jsonb appends
// ('null'::jsonb || '[x]'::jsonb is [null, x]).
func mustMarshal(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		if reflect.ValueOf(v).Kind() == reflect.Map {
			return []byte("{}")
		}
		return []byte("[]")
	}
	return raw
}

// marshalNullable keeps nil artifacts as SQL NULL instead of the JSON
// literal null.
func marshalNullable(isNil bool, v any) []byte {
	if isNil {
		return nil
	}
	return mustMarshal(v)
}
