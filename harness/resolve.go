package harness

import (
	"strings"

	"go.uber.org/zap"

	"github.com/snippetlab/verifier/sandbox"
)

// Resolve decides which callable a test case should invoke. Priority:
// an explicit name supplied for the whole run; a case-insensitive match
// between the description's prefix and a callable entry (which lets one
// snippet define several callables and route each case by convention);
// the first callable in declaration order; and finally the first
// extracted name even if it never resolved, so the eventual failure can
// name the expected-but-missing callable. Empty only when nothing was
// extracted at all, which the runner raises before any case is processed.
func Resolve(tc TestCase, table *sandbox.CallableTable, explicit string, logger *zap.Logger) string {
	if explicit != "" {
		return explicit
	}

	desc := strings.ToLower(strings.TrimSpace(tc.Description))
	if desc != "" {
		for _, name := range table.Names() {
			if table.IsCallable(name) && strings.HasPrefix(desc, strings.ToLower(name)) {
				return name
			}
		}
	}

	for _, name := range table.Names() {
		if table.IsCallable(name) {
			if desc != "" && logger != nil {
				// Prefix routing missed; the fallback can mask an
				// authoring typo, so leave a trace.
				logger.Debug("test case description matched no callable, using first available",
					zap.String("description", tc.Description),
					zap.String("callable", name))
			}
			return name
		}
	}

	if names := table.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}
