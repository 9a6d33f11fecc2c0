// Package server provides the HTTP REST API for the decision brief service.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/regulapm/nexus/internal/store"
	"github.com/regulapm/nexus/internal/types"
)

// seedInput describes one demo brief.
type seedInput struct {
	Title           string
	MainInput       string
	IndustryContext string
	DataSensitivity []string
	Geography       string
	LaunchType      string
	RiskTolerance   string
}

// seedInputs are the three demo briefs created by POST /seed and the seed CLI
// command.
var seedInputs = []seedInput{
	{
		Title:           "Instant Payouts for SMB Customers",
		MainInput:       "Enable instant payouts for small and medium business customers, allowing them to receive funds within minutes instead of the standard 2-3 business day settlement. This involves integrating with real-time payment rails (RTP/FedNow), implementing fraud detection for instant transactions, and building a tiered eligibility system based on merchant risk profiles.",
		IndustryContext: "Fintech",
		DataSensitivity: []string{"PII", "Financial transactions"},
		Geography:       "US",
		LaunchType:      "beta",
		RiskTolerance:   "low",
	},
	{
		Title:           "Patient Appointment Reminders via SMS",
		MainInput:       "Implement automated SMS appointment reminders for patients, including confirmation, rescheduling options, and no-show follow-ups. Must comply with HIPAA for PHI handling, support multiple languages, and integrate with existing EHR systems. Include opt-in/opt-out management and audit trails.",
		IndustryContext: "Healthcare",
		DataSensitivity: []string{"PII", "Health data"},
		Geography:       "US",
		LaunchType:      "GA",
		RiskTolerance:   "low",
	},
	{
		Title:           "Enterprise SSO Rollout",
		MainInput:       "Roll out SAML-based Single Sign-On for enterprise customers, supporting identity providers like Okta, Azure AD, and Google Workspace. Includes just-in-time user provisioning, role mapping from IdP groups, session management policies, and admin dashboard for SSO configuration. Must support multi-tenant isolation.",
		IndustryContext: "Enterprise SaaS",
		DataSensitivity: []string{"PII"},
		Geography:       "Global",
		LaunchType:      "GA",
		RiskTolerance:   "medium",
	},
}

// SeedBriefs inserts the demo briefs for userID concurrently and returns
// their IDs in seed order.
func SeedBriefs(ctx context.Context, st store.Store, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(seedInputs))

	g, ctx := errgroup.WithContext(ctx)
	for i, input := range seedInputs {
		ids[i] = uuid.New()
		brief := newSeedBrief(ids[i], userID, input)
		g.Go(func() error {
			if err := st.CreateBrief(ctx, brief); err != nil {
				return fmt.Errorf("seed %q: %w", brief.Title, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ids, nil
}

func newSeedBrief(id, userID uuid.UUID, input seedInput) *types.Brief {
	now := time.Now().UTC()
	return &types.Brief{
		ID:              id,
		UserID:          userID,
		Title:           input.Title,
		MainInput:       input.MainInput,
		InputType:       types.InputFeatureIdea,
		IndustryContext: input.IndustryContext,
		DataSensitivity: input.DataSensitivity,
		Geography:       input.Geography,
		LaunchType:      input.LaunchType,
		RiskTolerance:   input.RiskTolerance,
		Status:          types.StatusDraft,
		GenerationStage: types.StageNone,
		TimelineEvents: []types.Event{{
			ID:        uuid.New(),
			Type:      types.EventCreated,
			Label:     fmt.Sprintf("Brief %q created", input.Title),
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
