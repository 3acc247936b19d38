// Package main implements the verifier CLI, a development tool that runs
// the verification sandbox against local files: a snippet in the
// annotated dialect and a YAML (or JSON) file of test cases.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snippetlab/verifier/config"
	"github.com/snippetlab/verifier/harness"
	"github.com/snippetlab/verifier/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "verifier",
		Short:         "Verify annotated snippets against test cases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newAnalyzeCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var casesPath string
	var functionName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <snippet-file>",
		Short: "Run a snippet against a test-case file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := buildRunner()
			if err != nil {
				return err
			}

			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading snippet: %w", err)
			}

			casesData, err := os.ReadFile(casesPath)
			if err != nil {
				return fmt.Errorf("reading test cases: %w", err)
			}
			cases, err := harness.LoadCases(casesData)
			if err != nil {
				return err
			}

			result := runner.Run(cmd.Context(), string(source), cases, functionName)

			if asJSON {
				return printJSON(cmd, result)
			}
			printRunResult(cmd, result)
			if !result.AllPassed {
				return fmt.Errorf("%d of %d test cases failed", countFailed(result), len(result.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&casesPath, "cases", "c", "", "path to the YAML/JSON test-case file (required)")
	cmd.Flags().StringVarP(&functionName, "function", "f", "", "explicit name of the callable under test")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	_ = cmd.MarkFlagRequired("cases")

	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <snippet-file>",
		Short: "Safety-analyze a snippet without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := buildRunner()
			if err != nil {
				return err
			}

			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading snippet: %w", err)
			}

			analysis := runner.Analyze(string(source))

			if asJSON {
				return printJSON(cmd, analysis)
			}
			if analysis.Safe {
				cmd.Println("safe")
			} else {
				cmd.Println("blocked")
			}
			for _, issue := range analysis.Issues {
				cmd.Printf("  issue: %s\n", issue)
			}
			for _, warning := range analysis.Warnings {
				cmd.Printf("  warning: %s\n", warning)
			}
			if !analysis.Safe {
				return fmt.Errorf("snippet blocked by safety analysis")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	return cmd
}

func buildRunner() (*harness.Runner, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return harness.New(cfg, log)
}

func printRunResult(cmd *cobra.Command, result harness.RunResult) {
	for i, tr := range result.Results {
		status := "PASS"
		if !tr.Passed {
			status = "FAIL"
		}
		cmd.Printf("case %d: %s", i+1, status)
		if tr.Description != "" {
			cmd.Printf("  (%s)", tr.Description)
		}
		cmd.Println()
		if tr.Error != "" {
			cmd.Printf("  error: %s\n", tr.Error)
		} else if !tr.Passed {
			cmd.Printf("  expected %v, got %v\n", tr.ExpectedOutput, tr.ActualOutput)
		}
	}
	if result.Error != "" {
		cmd.Printf("output: %s\n", result.Error)
	}
}

func countFailed(result harness.RunResult) int {
	n := 0
	for _, tr := range result.Results {
		if !tr.Passed {
			n++
		}
	}
	return n
}

func printJSON(cmd *cobra.Command, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
