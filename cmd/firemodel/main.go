// Command firemodel trains, evaluates, and applies the forest-fire
// classifier offline. The ETL service only loads artifacts produced here; it
// never trains.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	commands "github.com/couchcryptid/fire-detection-etl/cmd/firemodel/internal/commands"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "firemodel",
		Short: "Forest-fire classifier training and scoring tool",
		Long: `firemodel trains classifiers that separate forest-fire detections from
other thermal anomalies (agricultural burns, gas flares, volcanoes) in
satellite active fire data.

Training data is a labeled CSV produced by joining detections against
state-agency fire perimeters. Model selection uses day-by-day time folds so
the classifier is always validated on days it never trained on.`,
		SilenceUsage: true,
	}

	if err := commands.InitModelCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}
