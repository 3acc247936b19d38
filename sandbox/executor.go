package sandbox

import (
	"bytes"
	"context"
	"reflect"
	"regexp"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"github.com/snippetlab/verifier/classify"
)

// Executor evaluates normalized snippets in a per-run yaegi interpreter.
// The Executor itself is stateless apart from configuration; concurrent
// runs each get an independent interpreter, callable table, and console
// buffer.
type Executor struct {
	logger  *zap.Logger
	markers []string
}

// ExecutorOption defines a functional option for Executor.
type ExecutorOption func(*Executor)

// WithCapabilityMarkers overrides the unavailable-capability markers used
// to classify interpreter construction failures. An empty set keeps the
// defaults.
func WithCapabilityMarkers(markers []string) ExecutorOption {
	return func(e *Executor) {
		if len(markers) > 0 {
			e.markers = markers
		}
	}
}

// DefaultCapabilityMarkers lists failure-message fragments that indicate
// the snippet depends on a capability the sandbox does not provide
// (third-party packages, environment-bound network or storage primitives)
// rather than being malformed.
func DefaultCapabilityMarkers() []string {
	return []string{
		"unable to find source",
		"not in std",
		"not provided by the sandbox",
	}
}

// NewExecutor creates an Executor with default capability markers.
func NewExecutor(logger *zap.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		logger:  logger,
		markers: DefaultCapabilityMarkers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var snippetPackage = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z_]\w*)`)

// Populate evaluates the normalized snippet once and probes each
// extracted name, returning the callable table and any console output the
// snippet produced. Evaluation failures are swallowed so that unrelated
// declarations in the same snippet still resolve; only a failure to
// construct the program at all is surfaced, and even that is silently
// reduced to an empty table when it matches an unavailable-capability
// marker.
func (e *Executor) Populate(ctx context.Context, code string, names []string) (*CallableTable, string, error) {
	var console bytes.Buffer
	table := NewCallableTable()

	i := interp.New(interp.Options{Stdout: &console, Stderr: &console})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, console.String(), &classify.Failure{
			Kind:    classify.KindSandbox,
			Message: "execution error: " + classify.Sanitize(classify.Message(err)),
		}
	}

	prog, err := compileProgram(i, code)
	if err != nil {
		msg := classify.Message(err)
		if classify.IsMissingCapability(msg, e.markers) {
			// The snippet depends on something the sandbox does not
			// provide. Not a syntax error: return a table of sentinels so
			// per-case failures can still name the expected callable.
			e.logger.Debug("snippet requires unavailable capability", zap.String("cause", msg))
			for _, name := range names {
				table.Add(name, reflect.Value{})
			}
			return table, console.String(), nil
		}
		return nil, console.String(), &classify.Failure{
			Kind:    classify.KindSandbox,
			Message: "execution error: " + classify.Sanitize(msg),
		}
	}

	if evalErr := executeProgram(ctx, i, prog); evalErr != nil {
		// Swallowed: declarations evaluated before the failure survive
		// and are still probed below.
		e.logger.Debug("snippet evaluation failed", zap.String("cause", classify.Message(evalErr)))
	}

	pkg := "main"
	if m := snippetPackage.FindStringSubmatch(code); m != nil {
		pkg = m[1]
	}
	for _, name := range names {
		table.Add(name, probe(i, pkg, name))
	}

	return table, console.String(), nil
}

// compileProgram guards yaegi's compile stage against panics on
// pathological input.
func compileProgram(i *interp.Interpreter, code string) (prog *interp.Program, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = classify.NewFailure(classify.KindSandbox, rec)
		}
	}()
	return i.Compile(code)
}

// executeProgram runs the compiled snippet once, recovering panics raised
// by top-level declarations.
func executeProgram(ctx context.Context, i *interp.Interpreter, prog *interp.Program) (err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = classify.NewFailure(classify.KindInvocation, rec)
		}
	}()
	_, err = i.Execute(prog)
	return err
}

// probe resolves a single name in the evaluated scope. A miss (not
// declared at top level, declaration failed, not a func) yields the
// invalid sentinel rather than an error.
func probe(i *interp.Interpreter, pkg, name string) (fn reflect.Value) {
	defer func() {
		if recover() != nil {
			fn = reflect.Value{}
		}
	}()
	v, err := i.Eval(pkg + "." + name)
	if err != nil || !v.IsValid() || v.Kind() != reflect.Func {
		return reflect.Value{}
	}
	return v
}
