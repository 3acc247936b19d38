package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a single compiled pattern rule.
type Rule struct {
	Pattern     *regexp.Regexp
	Description string
	Blocking    bool
	// Unless suppresses the rule when the snippet contains this token
	// anywhere. Used by the unbounded-loop heuristic: a loop with a break
	// token somewhere in the snippet is assumed to terminate.
	Unless string
}

// RuleSpec is the uncompiled form of a Rule, as it appears in configuration.
type RuleSpec struct {
	Pattern     string `mapstructure:"pattern" yaml:"pattern"`
	Description string `mapstructure:"description" yaml:"description"`
	Blocking    bool   `mapstructure:"blocking" yaml:"blocking"`
	Unless      string `mapstructure:"unless" yaml:"unless"`
}

// AnalysisResult is the outcome of one safety analysis. Safe is false iff
// at least one blocking rule matched.
type AnalysisResult struct {
	Safe     bool     `json:"safe"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// Analyzer scans snippets with an ordered rule table.
type Analyzer struct {
	rules []Rule
}

// DefaultRules returns the built-in rule table for the Go snippet dialect.
func DefaultRules() []RuleSpec {
	return []RuleSpec{
		// Blocking: constructs that break out of the interpreter's world.
		{
			Pattern:     `\binterp\s*\.\s*New\b|\.\s*Eval(WithContext)?\s*\(`,
			Description: "dynamic code construction: snippets may not invoke an embedded interpreter",
			Blocking:    true,
		},
		{
			Pattern:     `\breflect\s*\.\s*MakeFunc\b`,
			Description: "construction of a callable from data via reflect.MakeFunc is not allowed",
			Blocking:    true,
		},
		{
			Pattern:     `\bunsafe\s*\.\s*\w+|"unsafe"`,
			Description: "direct memory manipulation through package unsafe is not allowed",
			Blocking:    true,
		},
		{
			Pattern:     `\bsyscall\s*\.\s*\w+|"syscall"`,
			Description: "raw system calls are not allowed",
			Blocking:    true,
		},
		{
			Pattern:     `\bexec\s*\.\s*Command\b|"os/exec"`,
			Description: "spawning processes is not allowed",
			Blocking:    true,
		},
		// Advisory: surfaced but not fatal.
		{
			Pattern:     `\bos\s*\.\s*(WriteFile|Create|Remove|RemoveAll|Mkdir|MkdirAll)\b`,
			Description: "snippet writes to the host filesystem",
		},
		{
			Pattern:     `\bos\s*\.\s*(Exit|Chdir|Setenv)\b`,
			Description: "snippet manipulates host process state",
		},
		{
			Pattern:     `\bfor\s*\{|\bfor\s+true\s*\{`,
			Description: "possible infinite loop: unconditioned for without a break",
			Unless:      "break",
		},
		{
			Pattern:     `\bmake\(\s*\[\]\w+[\w.\[\]]*\s*,\s*\d{6,}`,
			Description: "very large slice allocation requested",
		},
	}
}

// Compile turns rule specs into an analyzer, validating every pattern.
func Compile(specs []RuleSpec) (*Analyzer, error) {
	if len(specs) == 0 {
		specs = DefaultRules()
	}
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid safety rule %d (%q): %w", i, spec.Pattern, err)
		}
		rules = append(rules, Rule{
			Pattern:     re,
			Description: spec.Description,
			Blocking:    spec.Blocking,
			Unless:      spec.Unless,
		})
	}
	return &Analyzer{rules: rules}, nil
}

// Analyze scans raw, un-normalized source text against the rule table.
// It never executes or parses the snippet.
func (a *Analyzer) Analyze(source string) AnalysisResult {
	result := AnalysisResult{
		Safe:     true,
		Issues:   []string{},
		Warnings: []string{},
	}

	for _, rule := range a.rules {
		if !rule.Pattern.MatchString(source) {
			continue
		}
		if rule.Unless != "" && strings.Contains(source, rule.Unless) {
			continue
		}
		if rule.Blocking {
			result.Safe = false
			result.Issues = append(result.Issues, rule.Description)
		} else {
			result.Warnings = append(result.Warnings, rule.Description)
		}
	}

	return result
}
