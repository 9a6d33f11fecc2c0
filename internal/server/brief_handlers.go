// Package server provides the HTTP REST API for the decision brief service.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/ingestion"
	"github.com/regulapm/nexus/internal/scoring"
	"github.com/regulapm/nexus/internal/server/middleware"
	"github.com/regulapm/nexus/internal/store"
	"github.com/regulapm/nexus/internal/types"
)

// requestContext resolves the authenticated user and the {id} path value.
func (s *Server) requestContext(w http.ResponseWriter, r *http.Request) (userID, briefID uuid.UUID, ok bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	briefID, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid brief ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, briefID, true
}

// getOwnedBrief loads a brief and enforces ownership. Briefs belonging to
// other users are reported as not found, not forbidden.
func (s *Server) getOwnedBrief(r *http.Request, id, userID uuid.UUID) (*types.Brief, error) {
	brief, err := s.briefs.GetBrief(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if brief == nil || brief.UserID != userID {
		return nil, &store.NotFoundError{ID: id}
	}
	return brief, nil
}

// handleCreateBrief creates a draft brief. URL inputs are fetched and
// reduced to readable text before the brief is stored.
func (s *Server) handleCreateBrief(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.CreateBriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	mainInput := req.MainInput
	if types.InputType(req.InputType) == types.InputURL {
		text, err := ingestion.IngestFromURL(r.Context(), req.MainInput)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		mainInput = text
	}

	inputType := types.InputType(req.InputType)
	if inputType == "" {
		inputType = types.InputFeatureIdea
	}
	riskTolerance := req.RiskTolerance
	if riskTolerance == "" {
		riskTolerance = "medium"
	}

	now := time.Now().UTC()
	brief := &types.Brief{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           req.Title,
		MainInput:       mainInput,
		InputType:       inputType,
		IndustryContext: req.IndustryContext,
		DataSensitivity: req.DataSensitivity,
		Geography:       req.Geography,
		LaunchType:      req.LaunchType,
		RiskTolerance:   riskTolerance,
		Status:          types.StatusDraft,
		GenerationStage: types.StageNone,
		TimelineEvents: []types.Event{{
			ID:        uuid.New(),
			Type:      types.EventCreated,
			Label:     fmt.Sprintf("Brief %q created", req.Title),
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.briefs.CreateBrief(r.Context(), brief); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, brief)
}

// handleListBriefs returns the caller's briefs, newest first.
func (s *Server) handleListBriefs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summaries, err := s.briefs.ListBriefs(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if summaries == nil {
		summaries = []types.BriefSummary{}
	}

	s.jsonResponse(w, http.StatusOK, summaries)
}

// handleGetBrief returns a single brief with all artifacts.
func (s *Server) handleGetBrief(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, brief)
}

// handleUpdateBrief patches input fields. Allowed only while the brief is
// still a draft; generated briefs are append-only from the user's side.
func (s *Server) handleUpdateBrief(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	var req types.UpdateBriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if brief.Status != types.StatusDraft {
		err := &ErrBriefNotEditable{ID: briefID, Status: string(brief.Status)}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.MainInput != nil {
		fields["main_input"] = *req.MainInput
	}
	if req.IndustryContext != nil {
		fields["industry_context"] = *req.IndustryContext
	}
	if req.DataSensitivity != nil {
		fields["data_sensitivity"] = *req.DataSensitivity
	}
	if req.Geography != nil {
		fields["geography"] = *req.Geography
	}
	if req.LaunchType != nil {
		fields["launch_type"] = *req.LaunchType
	}
	if req.RiskTolerance != nil {
		fields["risk_tolerance"] = *req.RiskTolerance
	}
	if len(fields) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := s.briefs.SetFields(r.Context(), briefID, fields); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	updated, err := s.briefs.GetBrief(r.Context(), briefID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteBrief removes a brief the caller owns.
func (s *Server) handleDeleteBrief(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	if err := s.briefs.DeleteBrief(r.Context(), briefID, userID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGenerate runs the full pipeline synchronously and returns the
// completed brief.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	if _, err := s.getOwnedBrief(r, briefID, userID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	brief, err := s.orchestrator.RunGeneration(r.Context(), briefID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, brief)
}

// handleRegenerate regenerates a single PRD section or stakeholder critique.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	var req types.RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if _, err := s.getOwnedBrief(r, briefID, userID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var (
		brief *types.Brief
		err   error
	)
	switch req.Type {
	case "section":
		brief, err = s.regen.RegenerateSection(r.Context(), briefID, req.Target)
	case "stakeholder":
		brief, err = s.regen.RegenerateStakeholder(r.Context(), briefID, req.Target)
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, brief)
}

// handleSummaryRefresh re-synthesizes the executive summary from current
// artifacts.
func (s *Server) handleSummaryRefresh(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	if _, err := s.getOwnedBrief(r, briefID, userID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	brief, err := s.regen.RefreshExecutiveSummary(r.Context(), briefID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, brief)
}

// handleReset returns a brief stuck in generating back to draft.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	if _, err := s.getOwnedBrief(r, briefID, userID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	brief, err := s.orchestrator.ResetStuckGeneration(r.Context(), briefID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, brief)
}

// handleReadiness computes the readiness score on demand.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, scoring.ComputeReadiness(brief))
}

// handleChecklistToggle flips the checked flag on a single checklist item.
func (s *Server) handleChecklistToggle(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	var req types.ChecklistToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	items, exists := brief.Checklist[req.Category]
	if !exists {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown checklist category: %s", req.Category))
		return
	}
	idx := *req.Index
	if idx >= len(items) {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Checklist index %d out of range for %s", idx, req.Category))
		return
	}

	items[idx].Checked = !items[idx].Checked
	if err := s.briefs.SetFields(r.Context(), briefID, map[string]any{"checklist": brief.Checklist}); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	state := "unchecked"
	if items[idx].Checked {
		state = "checked"
	}
	s.appendEvent(r, briefID, types.EventChecklistToggled,
		fmt.Sprintf("%s: %q %s", req.Category, items[idx].Item, state))

	s.respondWithBrief(w, r, briefID)
}

// handleSetSectionStatus sets the review status of one PRD section.
func (s *Server) handleSetSectionStatus(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}
	key := r.PathValue("key")
	if !types.IsValidPRDSection(key) {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown PRD section: %s", key))
		return
	}

	var req types.SectionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if brief.PRDSections == nil {
		s.errorResponse(w, http.StatusConflict, "Brief has no PRD yet")
		return
	}

	statuses := brief.SectionStatuses
	if statuses == nil {
		statuses = map[string]types.ReviewStatus{}
	}
	statuses[key] = types.ReviewStatus(req.Status)
	if err := s.briefs.SetFields(r.Context(), briefID, map[string]any{"section_statuses": statuses}); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.appendEvent(r, briefID, types.EventSectionStatusSet,
		fmt.Sprintf("Section %s marked %s", key, req.Status))

	s.respondWithBrief(w, r, briefID)
}

// handleCreateAssumption records a new assumption on the brief.
func (s *Server) handleCreateAssumption(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}

	var req types.AssumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	assumption := types.Assumption{
		ID:         uuid.New(),
		Text:       req.Text,
		Confidence: req.Confidence,
		CreatedAt:  time.Now().UTC(),
	}
	assumptions := append(brief.Assumptions, assumption)
	if err := s.briefs.SetFields(r.Context(), briefID, map[string]any{"assumptions": assumptions}); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.appendEvent(r, briefID, types.EventAssumptionChanged, "Assumption added")

	s.jsonResponse(w, http.StatusCreated, assumption)
}

// handleUpdateAssumption edits an existing assumption's text or confidence.
func (s *Server) handleUpdateAssumption(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}
	assumptionID, err := uuid.Parse(r.PathValue("aid"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid assumption ID")
		return
	}

	var req types.AssumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	found := false
	for i := range brief.Assumptions {
		if brief.Assumptions[i].ID == assumptionID {
			brief.Assumptions[i].Text = req.Text
			brief.Assumptions[i].Confidence = req.Confidence
			found = true
			break
		}
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "Assumption not found")
		return
	}

	if err := s.briefs.SetFields(r.Context(), briefID, map[string]any{"assumptions": brief.Assumptions}); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.appendEvent(r, briefID, types.EventAssumptionChanged, "Assumption updated")

	s.respondWithBrief(w, r, briefID)
}

// handleDeleteAssumption removes an assumption.
func (s *Server) handleDeleteAssumption(w http.ResponseWriter, r *http.Request) {
	userID, briefID, ok := s.requestContext(w, r)
	if !ok {
		return
	}
	assumptionID, err := uuid.Parse(r.PathValue("aid"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid assumption ID")
		return
	}

	brief, err := s.getOwnedBrief(r, briefID, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	kept := make([]types.Assumption, 0, len(brief.Assumptions))
	for _, a := range brief.Assumptions {
		if a.ID != assumptionID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(brief.Assumptions) {
		s.errorResponse(w, http.StatusNotFound, "Assumption not found")
		return
	}

	if err := s.briefs.SetFields(r.Context(), briefID, map[string]any{"assumptions": kept}); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.appendEvent(r, briefID, types.EventAssumptionChanged, "Assumption removed")

	w.WriteHeader(http.StatusNoContent)
}

// handleSeed creates the demo briefs for the authenticated user.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ids, err := SeedBriefs(r.Context(), s.briefs, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{"brief_ids": ids})
}

// appendEvent records a user-action timeline event. Append failures are
// logged, not surfaced; the primary write already succeeded.
func (s *Server) appendEvent(r *http.Request, briefID uuid.UUID, eventType, label string) {
	event := types.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Label:     label,
		Timestamp: time.Now().UTC(),
	}
	if err := s.briefs.AppendEvent(r.Context(), briefID, event); err != nil {
		log.Printf("failed to append %s event for %s: %v", eventType, briefID, err)
	}
}

// respondWithBrief re-reads the brief and returns it.
func (s *Server) respondWithBrief(w http.ResponseWriter, r *http.Request, briefID uuid.UUID) {
	brief, err := s.briefs.GetBrief(r.Context(), briefID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, brief)
}
