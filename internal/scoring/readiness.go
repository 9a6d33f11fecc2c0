package scoring

import (
	"fmt"

	"github.com/regulapm/nexus/internal/types"
)

// Readiness is the derived launch-readiness view of a brief. It is computed
// on read and never persisted, so it always reflects current checklist,
// section, and assumption state.
type Readiness struct {
	Score   int            `json:"score"`
	Tier    types.RiskTier `json:"tier"`
	Factors []string       `json:"factors"`
}

// Penalty weights.
const (
	penaltyChecklistPartial  = 10 // 50-99% checked
	penaltyChecklistLagging  = 25 // under 50% checked
	penaltyHighStakeholder   = 10
	penaltyMediumStakeholder = 5
	penaltyRiskSection       = 8
	penaltyReviewSection     = 3
	penaltyLowConfidence     = 5
)

// Tier cutoffs.
const (
	tierHighMin   = 75
	tierMediumMin = 45
)

// ComputeReadiness scores how reviewed and mitigated a brief is on a 0-100
// scale. Incomplete briefs always score zero; complete briefs start at 100
// and lose points for unchecked checklist items, risky stakeholders, flagged
// sections, and low-confidence assumptions. Every applied penalty is recorded
// as a human-readable factor string.
func ComputeReadiness(brief *types.Brief) Readiness {
	if brief.Status != types.StatusComplete {
		return Readiness{Score: 0, Tier: types.RiskLow, Factors: []string{}}
	}

	score := 100
	factors := []string{}

	if done, total := checklistProgress(brief.Checklist); total > 0 {
		pct := done * 100 / total
		switch {
		case pct < 50:
			score -= penaltyChecklistLagging
			factors = append(factors, fmt.Sprintf("checklist lagging: %d of %d items checked (-%d)", done, total, penaltyChecklistLagging))
		case pct < 100:
			score -= penaltyChecklistPartial
			factors = append(factors, fmt.Sprintf("checklist incomplete: %d of %d items checked (-%d)", done, total, penaltyChecklistPartial))
		}
	}

	for _, name := range types.StakeholderNames {
		switch brief.StakeholderRiskLevels[name] {
		case types.RiskHigh:
			score -= penaltyHighStakeholder
			factors = append(factors, fmt.Sprintf("high-risk stakeholder: %s (-%d)", name, penaltyHighStakeholder))
		case types.RiskMedium:
			score -= penaltyMediumStakeholder
			factors = append(factors, fmt.Sprintf("medium-risk stakeholder: %s (-%d)", name, penaltyMediumStakeholder))
		}
	}

	for _, key := range types.PRDSectionKeys {
		switch brief.SectionStatuses[key] {
		case types.ReviewRiskIdentified:
			score -= penaltyRiskSection
			factors = append(factors, fmt.Sprintf("risk identified in section: %s (-%d)", key, penaltyRiskSection))
		case types.ReviewNeedsReview:
			score -= penaltyReviewSection
			factors = append(factors, fmt.Sprintf("section awaiting review: %s (-%d)", key, penaltyReviewSection))
		}
	}

	for _, assumption := range brief.Assumptions {
		if assumption.Confidence == "low" {
			score -= penaltyLowConfidence
			factors = append(factors, fmt.Sprintf("low-confidence assumption: %s (-%d)", assumption.Text, penaltyLowConfidence))
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Readiness{Score: score, Tier: tierFor(score), Factors: factors}
}

func tierFor(score int) types.RiskTier {
	switch {
	case score >= tierHighMin:
		return types.RiskHigh
	case score >= tierMediumMin:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func checklistProgress(checklist map[string][]types.ChecklistItem) (done, total int) {
	for _, items := range checklist {
		for _, item := range items {
			total++
			if item.Checked {
				done++
			}
		}
	}
	return done, total
}
