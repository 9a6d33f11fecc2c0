package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/regulapm/nexus/internal/pipeline"
)

var (
	generateConfigPath string
	generateBriefID    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full generation pipeline for one brief",
	Long:  `Runs the staged pipeline (entities -> graph -> PRD -> stakeholders -> checklist -> traceability -> summary) against an existing brief and prints the resulting recommendation.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateConfigPath, "config", "", "Path to config.json file")
	generateCmd.Flags().StringVar(&generateBriefID, "brief-id", "", "ID of the brief to generate (required)")
	_ = generateCmd.MarkFlagRequired("brief-id")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	briefID, err := uuid.Parse(generateBriefID)
	if err != nil {
		return fmt.Errorf("invalid brief id %q: %w", generateBriefID, err)
	}

	cfg, err := loadConfig(generateConfigPath)
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

	orchestrator := pipeline.NewOrchestrator(database, caller, pipeline.NewLockRegistry())
	brief, err := orchestrator.RunGeneration(ctx, briefID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Generation complete for %q (status: %s)\n", brief.Title, brief.Status)
	if brief.ExecutiveSummary != nil {
		fmt.Fprintf(os.Stdout, "Recommendation: %s\n", brief.ExecutiveSummary.Recommendation)
		fmt.Fprintf(os.Stdout, "Rationale: %s\n", brief.ExecutiveSummary.RecommendationRationale)
	}
	return nil
}
