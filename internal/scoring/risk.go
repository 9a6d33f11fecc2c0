// Package scoring provides deterministic risk and readiness heuristics over
// generated brief state. Everything here is a pure function of its inputs and
// is recomputable at any time without a model call.
package scoring

import (
	"strings"

	"github.com/regulapm/nexus/internal/types"
)

// highRiskKeywords escalate a stakeholder straight to the high tier when any
// appears in its concerns or required controls.
var highRiskKeywords = []string{
	"breach",
	"regulatory fine",
	"non-compliance",
	"lawsuit",
	"audit failure",
	"data leak",
	"penalty",
	"violation",
}

// mediumRiskKeywords mark a stakeholder as medium when no high signal fired.
var mediumRiskKeywords = []string{
	"review",
	"unclear",
	"missing",
	"dependency",
	"training",
	"manual process",
}

// Volume thresholds: enough concerns or controls are a risk signal on their
// own, regardless of wording.
const (
	highConcernCount   = 5
	highControlCount   = 5
	mediumConcernCount = 3
)

// ClassifyCritique assigns a risk tier to a single stakeholder critique.
func ClassifyCritique(pack types.CritiquePack) types.RiskTier {
	text := strings.ToLower(strings.Join(pack.Concerns, " ") + " " + strings.Join(pack.RequiredControls, " "))

	if containsAny(text, highRiskKeywords) ||
		len(pack.Concerns) >= highConcernCount ||
		len(pack.RequiredControls) >= highControlCount {
		return types.RiskHigh
	}

	if containsAny(text, mediumRiskKeywords) || len(pack.Concerns) >= mediumConcernCount {
		return types.RiskMedium
	}

	return types.RiskLow
}

// ComputeStakeholderRiskLevels classifies every stakeholder critique pack.
func ComputeStakeholderRiskLevels(critiques map[string]types.CritiquePack) map[string]types.RiskTier {
	levels := make(map[string]types.RiskTier, len(critiques))
	for name, pack := range critiques {
		levels[name] = ClassifyCritique(pack)
	}
	return levels
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
