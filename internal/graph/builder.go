// Package graph builds the dependency graph for a brief from its extracted
// entities. The builder is fully deterministic: node and edge ids are derived
// from input positions so recomputation never produces duplicates.
package graph

import (
	"fmt"

	"github.com/regulapm/nexus/internal/types"
)

// FeatureNodeID is the id of the single node representing the brief itself.
const FeatureNodeID = "feature-main"

// Edge labels by target node type.
const (
	labelRisk        = "has risk"
	labelCompliance  = "requires"
	labelStakeholder = "involves"
	labelMetric      = "measured by"
	labelTriggers    = "triggers"
)

// Build derives the node/edge structure for a brief. One feature node always
// exists; every risk, compliance signal, stakeholder, and metric becomes a
// node with a directed edge from the feature node. When the brief handles
// sensitive data (PII or financial transactions), every risk node is
// additionally cross-linked to every compliance node with a triggers edge so
// sensitive-data risks are always checked against every known regulation.
func Build(entities *types.Entities, brief *types.Brief) *types.Graph {
	g := &types.Graph{}

	g.Nodes = append(g.Nodes, types.Node{
		ID:          FeatureNodeID,
		Type:        "feature",
		Label:       brief.Title,
		Description: entities.FeatureSummary,
	})

	var riskIDs, complianceIDs []string

	for i, risk := range entities.Risks {
		nid := fmt.Sprintf("risk-%d", i)
		riskIDs = append(riskIDs, nid)
		g.Nodes = append(g.Nodes, types.Node{
			ID:          nid,
			Type:        "risk",
			Label:       risk.Name,
			Description: risk.Description,
			Severity:    risk.Severity,
		})
		g.Edges = append(g.Edges, featureEdge(nid, labelRisk))
	}

	for i, signal := range entities.ComplianceSignals {
		nid := fmt.Sprintf("compliance-%d", i)
		complianceIDs = append(complianceIDs, nid)
		g.Nodes = append(g.Nodes, types.Node{
			ID:          nid,
			Type:        "compliance",
			Label:       signal.Regulation,
			Description: signal.Description,
			Relevance:   signal.Relevance,
		})
		g.Edges = append(g.Edges, featureEdge(nid, labelCompliance))
	}

	for i, name := range entities.Stakeholders {
		nid := fmt.Sprintf("stakeholder-%d", i)
		g.Nodes = append(g.Nodes, types.Node{
			ID:          nid,
			Type:        "stakeholder",
			Label:       name,
			Description: fmt.Sprintf("%s team stakeholder", name),
		})
		g.Edges = append(g.Edges, featureEdge(nid, labelStakeholder))
	}

	for i, metric := range entities.Metrics {
		nid := fmt.Sprintf("metric-%d", i)
		g.Nodes = append(g.Nodes, types.Node{
			ID:          nid,
			Type:        "metric",
			Label:       metric.Name,
			Description: metric.Description,
		})
		g.Edges = append(g.Edges, featureEdge(nid, labelMetric))
	}

	if handlesSensitiveData(brief.DataSensitivity) {
		for _, rid := range riskIDs {
			for _, cid := range complianceIDs {
				g.Edges = append(g.Edges, types.Edge{
					ID:     fmt.Sprintf("e-%s-%s", rid, cid),
					Source: rid,
					Target: cid,
					Label:  labelTriggers,
				})
			}
		}
	}

	return g
}

// NodeSummaries returns the compact id/label/type view used in traceability
// prompts.
func NodeSummaries(g *types.Graph) []map[string]string {
	summaries := make([]map[string]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		summaries = append(summaries, map[string]string{
			"id":    n.ID,
			"label": n.Label,
			"type":  n.Type,
		})
	}
	return summaries
}

func featureEdge(target, label string) types.Edge {
	return types.Edge{
		ID:     fmt.Sprintf("e-f-%s", target),
		Source: FeatureNodeID,
		Target: target,
		Label:  label,
	}
}

func handlesSensitiveData(sensitivity []string) bool {
	for _, s := range sensitivity {
		for _, sensitive := range types.SensitiveDataClasses {
			if s == sensitive {
				return true
			}
		}
	}
	return false
}
