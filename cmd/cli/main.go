// Command cli analyzes a dataset file from the terminal without a database:
// it runs the full pipeline and prints the report as JSON or a short digest.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sentinel/domain/report"
	"sentinel/internal/pipeline"
	"sentinel/internal/simulation"

	"github.com/spf13/cobra"
)

var (
	flagTarget  string
	flagFormat  string
	flagMaxRows int
	flagSeed    int64
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Sentinel: dataset readiness analysis",
	Long:  `Sentinel analyzes tabular datasets for model-readiness hazards: missing data, leakage, class imbalance, weak signal, and structural risks.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV or XLSX file and print the readiness report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe := pipeline.New(pipeline.WithSimulationOptions(simulation.Options{
			MaxRows: flagMaxRows,
			Seed:    flagSeed,
		}))

		rep, score, err := pipe.Run(context.Background(), args[0], flagTarget)
		if err != nil {
			return err
		}

		switch flagFormat {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rep)
		case "summary":
			printSummary(rep, score)
			return nil
		default:
			return fmt.Errorf("unknown format %q (expected json or summary)", flagFormat)
		}
	},
}

func printSummary(rep *report.Report, score int) {
	fmt.Printf("Score: %d/100 (%s difficulty, %s modeling risk)\n",
		score, rep.Scoring.DatasetDifficulty, rep.Scoring.ModelingRisk)

	if issues := rep.Summary.Strings("top_issues"); len(issues) > 0 {
		fmt.Println("\nCritical issues:")
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
	}
	if warnings := rep.Summary.Strings("warnings"); len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, warning := range warnings {
			fmt.Printf("  - %s\n", warning)
		}
	}
	if actions := rep.Recommendations.Strings("top_actions"); len(actions) > 0 {
		fmt.Println("\nRecommended actions:")
		for i, action := range actions {
			fmt.Printf("  %d. %s\n", i+1, action)
		}
	}
	if failed := rep.FailedAnalyzers; len(failed) > 0 {
		fmt.Printf("\nFailed analyzers: %s\n", strings.Join(failed, ", "))
	}
}

func init() {
	analyzeCmd.Flags().StringVarP(&flagTarget, "target", "t", "", "target column for supervised diagnostics")
	analyzeCmd.Flags().StringVarP(&flagFormat, "format", "f", "json", "output format: json or summary")
	analyzeCmd.Flags().IntVar(&flagMaxRows, "max-rows", 0, "row cap for model simulation (default 100000)")
	analyzeCmd.Flags().Int64Var(&flagSeed, "seed", 0, "seed for sampling and training (default 42)")
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
