package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies where in the pipeline a failure occurred.
type Kind int

const (
	KindEmptyInput Kind = iota
	KindSizeExceeded
	KindSafetyBlocked
	KindNormalization
	KindNoCallables
	KindSandbox
	KindCallableNotFound
	KindInvocation
	KindRejection
	KindTimeout
	KindInternal
)

// String returns the stable name used in logs.
func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty-input"
	case KindSizeExceeded:
		return "size-exceeded"
	case KindSafetyBlocked:
		return "safety-blocked"
	case KindNormalization:
		return "normalization-error"
	case KindNoCallables:
		return "no-callables-declared"
	case KindSandbox:
		return "sandbox-construction-error"
	case KindCallableNotFound:
		return "callable-not-found"
	case KindInvocation:
		return "invocation-error"
	case KindRejection:
		return "rejection-error"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// RunLevel reports whether a failure of this kind aborts the whole run.
// Per-test-case kinds are caught, recorded on the case, and never abort
// the remaining cases.
func (k Kind) RunLevel() bool {
	switch k {
	case KindCallableNotFound, KindInvocation, KindRejection:
		return false
	default:
		return true
	}
}

// Failure is a tagged failure value with a printable message.
type Failure struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// NewFailure builds a Failure from any thrown/recovered value.
func NewFailure(kind Kind, v any) *Failure {
	return &Failure{Kind: kind, Message: Message(v)}
}

// KindOf extracts the Kind from an error, or KindInternal when the error
// does not carry one.
func KindOf(err error) Kind {
	if f, ok := err.(*Failure); ok {
		return f.Kind
	}
	return KindInternal
}

// Message reduces an arbitrary failure value (error, string, recovered
// panic payload, foreign object) to a single printable message.
func Message(v any) string {
	switch val := v.(type) {
	case nil:
		return "unknown error"
	case error:
		return val.Error()
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// maxMessageLen bounds user-visible diagnostics.
const maxMessageLen = 500

// pathShaped matches filesystem-path-shaped substrings (two or more
// slash-separated segments), including yaegi's synthetic source positions.
var pathShaped = regexp.MustCompile(`(?:/[\w.$~-]+){2,}|\b_[\w./$-]+\.go\b`)

// Sanitize redacts filesystem-path-shaped substrings and truncates overly
// long messages before they become presentable.
func Sanitize(msg string) string {
	msg = pathShaped.ReplaceAllString(msg, "<path>")
	msg = strings.TrimSpace(msg)
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "..."
	}
	return msg
}

// IsMissingCapability reports whether a failure message indicates the
// snippet depends on a capability the sandbox does not provide (network,
// storage, third-party packages), rather than being broken code.
func IsMissingCapability(msg string, markers []string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
