package pipeline

import "github.com/regulapm/nexus/internal/types"

// NextStage is the pure stage transition function. The pipeline is linear
// with no branching or skips; done is terminal.
func NextStage(stage types.GenerationStage) types.GenerationStage {
	switch stage {
	case types.StageNone:
		return types.StageEntities
	case types.StageEntities:
		return types.StageGraph
	case types.StageGraph:
		return types.StagePRD
	case types.StagePRD:
		return types.StageStakeholders
	case types.StageStakeholders:
		return types.StageChecklist
	case types.StageChecklist:
		return types.StageTraceability
	default:
		return types.StageDone
	}
}
