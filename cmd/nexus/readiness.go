package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/regulapm/nexus/internal/scoring"
)

var (
	readinessConfigPath string
	readinessBriefID    string
)

var readinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Print the launch readiness score for a brief",
	Long:  `Computes the readiness score from current checklist, section review, stakeholder risk, and assumption state. The score is derived on read and never stored.`,
	RunE:  runReadiness,
}

func init() {
	readinessCmd.Flags().StringVar(&readinessConfigPath, "config", "", "Path to config.json file")
	readinessCmd.Flags().StringVar(&readinessBriefID, "brief-id", "", "ID of the brief (required)")
	_ = readinessCmd.MarkFlagRequired("brief-id")
	rootCmd.AddCommand(readinessCmd)
}

func runReadiness(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	briefID, err := uuid.Parse(readinessBriefID)
	if err != nil {
		return fmt.Errorf("invalid brief id %q: %w", readinessBriefID, err)
	}

	cfg, err := loadConfig(readinessConfigPath)
	if err != nil {
		return err
	}
	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	brief, err := database.GetBrief(ctx, briefID)
	if err != nil {
		return err
	}
	if brief == nil {
		return fmt.Errorf("brief %s not found", briefID)
	}

	readiness := scoring.ComputeReadiness(brief)
	fmt.Fprintf(os.Stdout, "Brief:  %s\n", brief.Title)
	fmt.Fprintf(os.Stdout, "Score:  %d/100\n", readiness.Score)
	fmt.Fprintf(os.Stdout, "Tier:   %s\n", readiness.Tier)
	for _, factor := range readiness.Factors {
		fmt.Fprintf(os.Stdout, "  - %s\n", factor)
	}
	return nil
}
