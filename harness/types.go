package harness

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TestCase is one input/expected-output pair. Test cases are owned by the
// external problem catalog and read-only to the core; Description doubles
// as a resolver hint when it starts with a callable's name.
type TestCase struct {
	Input          any    `json:"input" yaml:"input"`
	ExpectedOutput any    `json:"expectedOutput" yaml:"expected_output"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TestResult is the graded outcome of a single test case.
type TestResult struct {
	Passed         bool   `json:"passed"`
	Input          any    `json:"input"`
	ExpectedOutput any    `json:"expectedOutput"`
	ActualOutput   any    `json:"actualOutput,omitempty"`
	Error          string `json:"error,omitempty"`
	Description    string `json:"description,omitempty"`
}

// RunResult aggregates one complete verification run. Results[i] always
// corresponds to the i-th submitted test case. When Error describes a
// fatal run-level condition, Results is empty and AllPassed is false;
// Error may also carry non-fatal captured console output alongside a
// populated Results.
type RunResult struct {
	AllPassed bool         `json:"allPassed"`
	Results   []TestResult `json:"results"`
	Error     string       `json:"error,omitempty"`
}

// LoadCases decodes a sequence of test cases from YAML (and therefore
// also JSON) fixture data.
func LoadCases(data []byte) ([]TestCase, error) {
	var cases []TestCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("decoding test cases: %w", err)
	}
	return cases, nil
}
