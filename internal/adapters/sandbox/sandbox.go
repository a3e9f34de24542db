// Package sandbox implements the Sandbox port on top of the goja ECMAScript
// engine. Every execution gets a fresh runtime.
package sandbox

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Sandbox = (*Sandbox)(nil)

// maxCallStackSize turns runaway recursion into a RangeError instead of
// exhausting the goroutine stack.
const maxCallStackSize = 4096

var errPending = errors.New("export never settled")

// Options configure a Sandbox.
type Options struct {
	// Timeout is the wall-clock budget of one execution. Zero disables it.
	Timeout time.Duration
}

// Sandbox executes asset modules. It is safe for concurrent use; executions
// share nothing.
type Sandbox struct {
	fetcher ports.RemoteFetcher
	logger  ports.Logger
	opts    Options
}

// New creates a Sandbox. fetcher backs fetchText and may be nil, in which
// case fetchText rejects.
func New(fetcher ports.RemoteFetcher, logger ports.Logger, opts Options) *Sandbox {
	return &Sandbox{fetcher: fetcher, logger: logger, opts: opts}
}

// Execute runs unit and returns the text of its default export.
func (s *Sandbox) Execute(
	ctx context.Context,
	unit *domain.SourceUnit,
	imports map[string]domain.Import,
	console io.Writer,
) (string, error) {
	execCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.opts.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
	}
	defer cancel()

	x := newExecution(execCtx, s, console)
	stop := context.AfterFunc(execCtx, func() {
		x.rt.Interrupt(context.Cause(execCtx))
	})
	defer stop()

	text, err := x.run(unit, imports)
	if err == nil {
		return text, nil
	}

	switch {
	case ctx.Err() != nil:
		return "", zerr.With(zerr.Wrap(ctx.Err(), "execution cancelled"), "module", unit.Name)
	case execCtx.Err() != nil, errors.Is(err, errPending):
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrExecTimeout, err.Error()),
			"module", unit.Name), "timeout", s.opts.Timeout.String())
	}
	return "", err
}

func (x *execution) run(unit *domain.SourceUnit, imports map[string]domain.Import) (string, error) {
	if err := x.init(); err != nil {
		return "", err
	}

	rec, err := x.evaluate(unit, imports)
	if err != nil {
		return "", x.thrown(unit, err)
	}
	if err := x.settle(unit, rec.done); err != nil {
		return "", err
	}

	exported := exportOf(rec.module)
	if err := x.settle(unit, exported); err != nil {
		return "", err
	}
	if p, ok := exported.Export().(*goja.Promise); ok {
		exported = p.Result()
	}
	return x.text(unit, exported)
}

// settle checks a value that may be a promise. The job queue has drained by
// the time control returns to Go, so a pending promise can never settle.
func (x *execution) settle(unit *domain.SourceUnit, v goja.Value) error {
	if v == nil {
		return nil
	}
	p, ok := v.Export().(*goja.Promise)
	if !ok {
		return nil
	}
	switch p.State() {
	case goja.PromiseStatePending:
		return errPending
	case goja.PromiseStateRejected:
		return x.rejected(unit, p.Result())
	default:
		return nil
	}
}

// exportOf returns exports.default when present, else module.exports.
func exportOf(module *goja.Object) goja.Value {
	exports := module.Get("exports")
	if obj, ok := exports.(*goja.Object); ok {
		if _, isPromise := obj.Export().(*goja.Promise); !isPromise {
			if def := obj.Get("default"); def != nil {
				return def
			}
		}
	}
	return exports
}

func (x *execution) text(unit *domain.SourceUnit, v goja.Value) (string, error) {
	kind := x.typeOf(v)
	switch {
	case kind == "string":
		return v.String(), nil
	case kind == "object" && unit.Kind == domain.KindJSON:
		out, err := x.helper("stringify")(goja.Undefined(), v)
		if err != nil {
			return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidExport, "export is not serializable"),
				"module", unit.Name), "cause", x.describeError(err))
		}
		return out.String(), nil
	default:
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidExport, "default export is "+kind),
			"module", unit.Name), "type", kind)
	}
}

// thrown converts an error that escaped the runtime into ErrThrown.
func (x *execution) thrown(unit *domain.SourceUnit, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return err
	}
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrThrown, unit.Name), "module", unit.Name), "cause", x.describeError(err))
}

func (x *execution) rejected(unit *domain.SourceUnit, reason goja.Value) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrThrown, unit.Name), "module", unit.Name), "cause", x.describe(reason))
}

func (x *execution) describeError(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return x.describe(exc.Value())
	}
	return err.Error()
}

func (x *execution) describe(v goja.Value) string {
	out, err := x.helper("describe")(goja.Undefined(), v)
	if err != nil {
		return "uncaught exception"
	}
	return cleanCause(out.String())
}

// syntaxPrefix is repeated by goja on compile errors: the SyntaxError value
// carries the message of the compiler error, which names its type again.
const syntaxPrefix = "SyntaxError: "

func cleanCause(s string) string {
	for strings.HasPrefix(s, syntaxPrefix+syntaxPrefix) {
		s = strings.TrimPrefix(s, syntaxPrefix)
	}
	return s
}

func (x *execution) typeOf(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	out, err := x.helper("typeOf")(goja.Undefined(), v)
	if err != nil {
		return "unknown"
	}
	return out.String()
}
