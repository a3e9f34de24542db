package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"go.trai.ch/spool/internal/core/domain"
)

// prelude holds the helpers shared by all modules of one runtime.
const prelude = `(function () {
  function namespace(exp) {
    if (exp !== null && typeof exp === "object" && exp.__esModule) return exp;
    var ns = (exp !== null && typeof exp === "object") ? Object.assign({}, exp) : {};
    ns.default = exp;
    return ns;
  }
  function inspect(v) {
    if (typeof v === "object" && v !== null) {
      try { return JSON.stringify(v); } catch (e) {}
    }
    return String(v);
  }
  return {
    importer: function (load) {
      return function (spec) {
        try {
          var m = load(spec);
          return Promise.resolve(m.done).then(function () { return namespace(m.module.exports); });
        } catch (e) {
          return Promise.reject(e);
        }
      };
    },
    exportStar: function (exports, ns) {
      Object.keys(ns).forEach(function (k) {
        if (k === "default" || Object.prototype.hasOwnProperty.call(exports, k)) return;
        Object.defineProperty(exports, k, { enumerable: true, get: function () { return ns[k]; } });
      });
    },
    stringify: function (v) { return JSON.stringify(v); },
    typeOf: function (v) { return v === null ? "null" : typeof v; },
    describe: function (v) { return v instanceof Error ? String(v) : inspect(v); },
    inspect: inspect,
  };
})()`

// record is one evaluated module of a runtime.
type record struct {
	module *goja.Object
	// done is the promise returned by the module body.
	done goja.Value
}

// execution is the state of one Execute call. It is confined to the calling
// goroutine apart from Interrupt.
type execution struct {
	ctx     context.Context
	rt      *goja.Runtime
	sandbox *Sandbox
	console io.Writer
	helpers *goja.Object
	records map[string]*record
}

func newExecution(ctx context.Context, s *Sandbox, console io.Writer) *execution {
	rt := goja.New()
	rt.SetMaxCallStackSize(maxCallStackSize)
	return &execution{
		ctx:     ctx,
		rt:      rt,
		sandbox: s,
		console: console,
		records: make(map[string]*record),
	}
}

func (x *execution) init() error {
	v, err := x.rt.RunString(prelude)
	if err != nil {
		return err
	}
	x.helpers = v.ToObject(x.rt)

	console := x.rt.NewObject()
	for _, level := range []string{"log", "info", "debug", "warn", "error"} {
		if err := console.Set(level, x.consoleFunc(level)); err != nil {
			return err
		}
	}
	if err := x.rt.Set("console", console); err != nil {
		return err
	}
	return x.rt.Set("fetchText", x.fetchText)
}

func (x *execution) helper(name string) goja.Callable {
	fn, ok := goja.AssertFunction(x.helpers.Get(name))
	if !ok {
		panic("sandbox: missing prelude helper " + name)
	}
	return fn
}

// evaluate compiles unit and runs its body. Imports of the body are served
// from imports only.
func (x *execution) evaluate(unit *domain.SourceUnit, imports map[string]domain.Import) (*record, error) {
	fn, err := x.rt.RunScript(unit.Name, wrapModule(unit.Content))
	if err != nil {
		return nil, err
	}
	call, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, errors.New("module wrapper is not callable")
	}

	exports := x.rt.NewObject()
	module := x.rt.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	_ = module.Set("id", unit.ID)

	rec := &record{module: module}
	x.records[unit.ID] = rec

	load := x.rt.ToValue(x.loader(imports))
	importFn, err := x.helper("importer")(goja.Undefined(), load)
	if err != nil {
		return nil, err
	}

	done, err := call(goja.Undefined(),
		exports,
		x.rt.ToValue(x.require(imports)),
		module,
		x.rt.ToValue(unit.ID),
		x.rt.ToValue(unit.Dir()),
		importFn,
		x.rt.ToValue(x.readFile(unit)),
		x.helpers,
	)
	if err != nil {
		return nil, err
	}
	rec.done = done
	return rec, nil
}

// record returns the evaluated module behind imp, evaluating library units on
// first use.
func (x *execution) record(imp domain.Import) (*record, error) {
	switch {
	case imp.Asset != nil:
		key := "asset:" + imp.Asset.Fingerprint.String()
		if rec, ok := x.records[key]; ok && !imp.Asset.Fingerprint.IsZero() {
			return rec, nil
		}
		exports := x.rt.NewObject()
		_ = exports.Set("__esModule", true)
		_ = exports.Set("default", imp.Asset.Text)
		module := x.rt.NewObject()
		_ = module.Set("exports", exports)
		rec := &record{module: module}
		x.records[key] = rec
		return rec, nil
	case imp.Unit != nil:
		if rec, ok := x.records[imp.Unit.ID]; ok {
			return rec, nil
		}
		return x.evaluate(imp.Unit, imp.Imports)
	default:
		return nil, errors.New("empty import")
	}
}

func (x *execution) lookup(imports map[string]domain.Import, spec string) *record {
	imp, ok := imports[spec]
	if !ok {
		panic(x.rt.NewTypeError("Cannot find module '%s'", spec))
	}
	rec, err := x.record(imp)
	if err != nil {
		panic(x.jsError(err))
	}
	return rec
}

// loader backs import declarations and dynamic import().
func (x *execution) loader(imports map[string]domain.Import) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		rec := x.lookup(imports, call.Argument(0).String())
		out := x.rt.NewObject()
		_ = out.Set("module", rec.module)
		_ = out.Set("done", rec.done)
		return out
	}
}

// require returns module.exports synchronously. A library whose body
// rejected rethrows its reason.
func (x *execution) require(imports map[string]domain.Import) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		rec := x.lookup(imports, call.Argument(0).String())
		if rec.done != nil {
			if p, ok := rec.done.Export().(*goja.Promise); ok && p.State() == goja.PromiseStateRejected {
				panic(p.Result())
			}
		}
		return rec.module.Get("exports")
	}
}

func (x *execution) jsError(err error) any {
	var exc *goja.Exception
	var interrupted *goja.InterruptedError
	switch {
	case errors.As(err, &interrupted):
		return interrupted
	case errors.As(err, &exc):
		// Compile errors arrive as SyntaxError exceptions too.
		return exc
	}
	return x.rt.NewGoError(err)
}

// readFile reads a file relative to the directory of a local module.
func (x *execution) readFile(unit *domain.SourceUnit) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if unit.IsRemote() {
			panic(x.rt.NewTypeError("readFile is not available to remote module %s", unit.ID))
		}
		name := call.Argument(0).String()
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(unit.Dir(), filepath.FromSlash(path))
		}
		// #nosec G304 -- modules read files of their own project
		data, err := os.ReadFile(path)
		if err != nil {
			panic(x.rt.NewGoError(readError(name, err)))
		}
		return x.rt.ToValue(string(data))
	}
}

// readError names the file as the module wrote it, without the host path.
func readError(name string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return fmt.Errorf("readFile %s: %w", name, err)
}

// fetchText returns a promise for the body of an https resource. The fetch
// blocks the runtime; the promise is settled before fetchText returns.
func (x *execution) fetchText(call goja.FunctionCall) goja.Value {
	promise, resolve, reject := x.rt.NewPromise()
	url := call.Argument(0).String()
	integrity := ""
	if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		integrity = arg.String()
	}

	if x.sandbox.fetcher == nil {
		_ = reject(x.rt.NewGoError(errors.New("fetchText is not available")))
		return x.rt.ToValue(promise)
	}
	unit, err := x.sandbox.fetcher.Fetch(x.ctx, url, integrity)
	if err != nil {
		_ = reject(x.rt.NewGoError(err))
		return x.rt.ToValue(promise)
	}
	_ = resolve(unit.Content)
	return x.rt.ToValue(promise)
}

func (x *execution) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		inspect := x.helper("inspect")
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			if s, ok := arg.Export().(string); ok {
				parts = append(parts, s)
				continue
			}
			out, err := inspect(goja.Undefined(), arg)
			if err != nil {
				panic(x.jsError(err))
			}
			parts = append(parts, out.String())
		}
		x.print(level, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

func (x *execution) print(level, line string) {
	if x.console != nil {
		if level == "warn" || level == "error" {
			line = level + ": " + line
		}
		_, _ = fmt.Fprintln(x.console, line)
		return
	}
	if x.sandbox.logger == nil {
		return
	}
	if level == "warn" || level == "error" {
		x.sandbox.logger.Warn(line)
		return
	}
	x.sandbox.logger.Info(line)
}
