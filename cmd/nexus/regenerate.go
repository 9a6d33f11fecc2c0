package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/regulapm/nexus/internal/pipeline"
	"github.com/regulapm/nexus/internal/regen"
	"github.com/regulapm/nexus/internal/types"
)

var (
	regenConfigPath string
	regenBriefID    string
	regenType       string
	regenTarget     string
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Regenerate a single PRD section or stakeholder critique",
	Long:  `Re-runs the model for one unit of a completed brief and records a before/after diff. Use --type summary to re-synthesize the executive summary instead.`,
	RunE:  runRegenerate,
}

func init() {
	regenerateCmd.Flags().StringVar(&regenConfigPath, "config", "", "Path to config.json file")
	regenerateCmd.Flags().StringVar(&regenBriefID, "brief-id", "", "ID of the brief (required)")
	regenerateCmd.Flags().StringVar(&regenType, "type", "", "Unit type: section, stakeholder, or summary (required)")
	regenerateCmd.Flags().StringVar(&regenTarget, "target", "", "Section key or stakeholder name (not used for summary)")
	_ = regenerateCmd.MarkFlagRequired("brief-id")
	_ = regenerateCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	briefID, err := uuid.Parse(regenBriefID)
	if err != nil {
		return fmt.Errorf("invalid brief id %q: %w", regenBriefID, err)
	}

	cfg, err := loadConfig(regenConfigPath)
	if err != nil {
		return err
	}
	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	caller, err := newCaller(ctx, cfg)
	if err != nil {
		return err
	}

	controller := regen.NewController(database, caller, pipeline.NewLockRegistry())

	var brief *types.Brief
	switch regenType {
	case "section":
		brief, err = controller.RegenerateSection(ctx, briefID, regenTarget)
	case "stakeholder":
		brief, err = controller.RegenerateStakeholder(ctx, briefID, regenTarget)
	case "summary":
		brief, err = controller.RefreshExecutiveSummary(ctx, briefID)
	default:
		return fmt.Errorf("unknown type %q: must be section, stakeholder, or summary", regenType)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Regenerated %s for %q\n", regenType, brief.Title)
	return nil
}
