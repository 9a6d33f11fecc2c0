package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/regulapm/nexus/internal/types"
)

func TestClassifyCritique_HighKeyword(t *testing.T) {
	pack := types.CritiquePack{
		Concerns: []string{"A data breach would be catastrophic here"},
	}
	assert.Equal(t, types.RiskHigh, ClassifyCritique(pack))
}

func TestClassifyCritique_HighByConcernVolume(t *testing.T) {
	pack := types.CritiquePack{
		Concerns: []string{"a", "b", "c", "d", "e"},
	}
	assert.Equal(t, types.RiskHigh, ClassifyCritique(pack))
}

func TestClassifyCritique_HighByControlVolume(t *testing.T) {
	pack := types.CritiquePack{
		RequiredControls: []string{"a", "b", "c", "d", "e"},
	}
	assert.Equal(t, types.RiskHigh, ClassifyCritique(pack))
}

func TestClassifyCritique_MediumKeyword(t *testing.T) {
	pack := types.CritiquePack{
		Concerns: []string{"Rollback behavior is unclear"},
	}
	assert.Equal(t, types.RiskMedium, ClassifyCritique(pack))
}

func TestClassifyCritique_MediumByConcernCount(t *testing.T) {
	pack := types.CritiquePack{
		Concerns: []string{"latency budgets", "capacity planning", "oncall load"},
	}
	assert.Equal(t, types.RiskMedium, ClassifyCritique(pack))
}

func TestClassifyCritique_Low(t *testing.T) {
	assert.Equal(t, types.RiskLow, ClassifyCritique(types.CritiquePack{}))

	pack := types.CritiquePack{
		Concerns: []string{"nothing notable"},
	}
	assert.Equal(t, types.RiskLow, ClassifyCritique(pack))
}

func TestClassifyCritique_CaseInsensitive(t *testing.T) {
	pack := types.CritiquePack{
		RequiredControls: []string{"Prevent any DATA LEAK via DLP tooling"},
	}
	assert.Equal(t, types.RiskHigh, ClassifyCritique(pack))
}

func TestComputeStakeholderRiskLevels(t *testing.T) {
	critiques := map[string]types.CritiquePack{
		"Security": {Concerns: []string{"potential breach vector"}},
		"Legal":    {Concerns: []string{"contract review is pending"}},
		"Support":  {},
	}

	levels := ComputeStakeholderRiskLevels(critiques)
	assert.Equal(t, types.RiskHigh, levels["Security"])
	assert.Equal(t, types.RiskMedium, levels["Legal"])
	assert.Equal(t, types.RiskLow, levels["Support"])
}
