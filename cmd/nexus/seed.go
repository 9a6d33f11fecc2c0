package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regulapm/nexus/internal/server"
)

var (
	seedConfigPath string
	seedUserEmail  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the three demo briefs for an existing user",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedConfigPath, "config", "", "Path to config.json file")
	seedCmd.Flags().StringVar(&seedUserEmail, "user-email", "", "Email of the user to own the demo briefs (required)")
	_ = seedCmd.MarkFlagRequired("user-email")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(seedConfigPath)
	if err != nil {
		return err
	}
	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	user, err := database.GetUserByEmail(ctx, seedUserEmail)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %q; sign up first", seedUserEmail)
	}

	ids, err := server.SeedBriefs(ctx, database, user.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Seeded %d demo briefs for %s:\n", len(ids), seedUserEmail)
	for _, id := range ids {
		fmt.Fprintf(os.Stdout, "  %s\n", id)
	}
	return nil
}
