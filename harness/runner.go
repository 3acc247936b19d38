package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snippetlab/verifier/classify"
	"github.com/snippetlab/verifier/config"
	"github.com/snippetlab/verifier/dialect"
	"github.com/snippetlab/verifier/safety"
	"github.com/snippetlab/verifier/sandbox"
)

// Runner is the core's public surface. It is safe for concurrent use:
// every Run builds its own interpreter, callable table, and console
// buffer, and the Runner itself holds only configuration.
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	analyzer *safety.Analyzer
	executor *sandbox.Executor
}

// New creates a Runner, compiling the configured safety rule table.
func New(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	analyzer, err := safety.Compile(cfg.Safety.Rules)
	if err != nil {
		return nil, fmt.Errorf("compiling safety rules: %w", err)
	}

	return &Runner{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
		executor: sandbox.NewExecutor(logger,
			sandbox.WithCapabilityMarkers(cfg.Sandbox.CapabilityMarkers)),
	}, nil
}

// Analyze performs the non-executing pre-flight safety check.
func (r *Runner) Analyze(source string) safety.AnalysisResult {
	return r.analyzer.Analyze(source)
}

// Run verifies a snippet against a sequence of test cases and returns a
// normally-shaped RunResult on every path; no failure mode escapes as a
// panic or error. The whole run races a wall-clock timeout: if the timer
// fires first the result is a run-level timeout error and any in-flight
// interpreter work is abandoned.
func (r *Runner) Run(ctx context.Context, source string, cases []TestCase, functionName string) RunResult {
	runLogger := r.logger.With(zap.String("run_id", uuid.NewString()))
	started := time.Now()
	timeout := r.cfg.Timeout()

	done := make(chan RunResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				runLogger.Error("run panicked", zap.Any("cause", rec))
				done <- failedRun(classify.KindInternal,
					"internal error: "+classify.Sanitize(classify.Message(rec)))
			}
		}()
		done <- r.runOnce(ctx, runLogger, source, cases, functionName)
	}()

	select {
	case result := <-done:
		runLogger.Info("run completed",
			zap.Bool("all_passed", result.AllPassed),
			zap.Int("cases", len(result.Results)),
			zap.Duration("elapsed", time.Since(started)))
		return result
	case <-time.After(timeout):
		runLogger.Warn("run timed out", zap.Duration("timeout", timeout))
		return failedRun(classify.KindTimeout,
			fmt.Sprintf("execution timed out after %s", timeout))
	case <-ctx.Done():
		runLogger.Warn("run cancelled", zap.Error(ctx.Err()))
		return failedRun(classify.KindTimeout, "run cancelled: "+ctx.Err().Error())
	}
}

// runOnce walks the gate sequence and the per-case loop.
func (r *Runner) runOnce(ctx context.Context, logger *zap.Logger, source string, cases []TestCase, functionName string) RunResult {
	if strings.TrimSpace(source) == "" {
		return failedRun(classify.KindEmptyInput, "no source code provided")
	}

	if len(source) > r.cfg.Sandbox.MaxSourceBytes {
		return failedRun(classify.KindSizeExceeded,
			fmt.Sprintf("source exceeds maximum size of %d bytes", r.cfg.Sandbox.MaxSourceBytes))
	}

	analysis := r.analyzer.Analyze(source)
	if !analysis.Safe {
		return failedRun(classify.KindSafetyBlocked,
			"snippet blocked by safety analysis: "+strings.Join(analysis.Issues, "; "))
	}
	for _, warning := range analysis.Warnings {
		logger.Warn("safety warning", zap.String("warning", warning))
	}

	normalized := dialect.Normalize(source)
	if normalized.Error != "" {
		return failedRun(classify.KindNormalization, "compilation failed: "+normalized.Error)
	}

	names := dialect.ExtractNames(normalized.Code)
	if len(names) == 0 {
		return failedRun(classify.KindNoCallables, "no function declarations found in the snippet")
	}

	table, console, err := r.executor.Populate(ctx, normalized.Code, names)
	if err != nil {
		return failedRun(classify.KindOf(err), classify.Message(err))
	}

	results := make([]TestResult, 0, len(cases))
	allPassed := true
	for i, tc := range cases {
		result := r.runCase(ctx, logger, table, tc, functionName)
		allPassed = allPassed && result.Passed
		results = append(results, result)
		logger.Debug("test case graded",
			zap.Int("case", i),
			zap.Bool("passed", result.Passed))
	}

	return RunResult{
		AllPassed: allPassed,
		Results:   results,
		// Captured console text is informational, not a failure signal.
		Error: classify.Sanitize(console),
	}
}

// runCase grades one test case. Resolution, invocation, and rejection
// failures are recorded on the result and never abort the remaining
// cases.
func (r *Runner) runCase(ctx context.Context, logger *zap.Logger, table *sandbox.CallableTable, tc TestCase, functionName string) TestResult {
	result := TestResult{
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		Description:    tc.Description,
	}

	name := Resolve(tc, table, functionName, logger)
	fn, callable := table.Lookup(name)
	if !callable {
		result.Error = fmt.Sprintf("function %q is not defined or is not callable", name)
		return result
	}

	actual, err := r.executor.Invoke(ctx, name, fn, tc.Input)
	if err != nil {
		result.Error = classify.Message(err)
		return result
	}

	result.ActualOutput = actual
	result.Passed = DeepEqual(actual, tc.ExpectedOutput)
	return result
}

func failedRun(kind classify.Kind, msg string) RunResult {
	return RunResult{
		AllPassed: false,
		Results:   []TestResult{},
		Error:     fmt.Sprintf("[%s] %s", kind, msg),
	}
}
