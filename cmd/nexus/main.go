// Package main provides the entry point for the RegulaPM Nexus decision
// brief server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "RegulaPM Nexus decision brief service",
	Long:  "Nexus turns a raw feature idea into a reviewable decision brief: extracted entities, a dependency graph, PRD sections, stakeholder critiques, a launch checklist, traceability links, and an executive summary.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
