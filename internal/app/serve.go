package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.trai.ch/spool/internal/adapters/watcher"
	"go.trai.ch/spool/internal/adapters/web"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	Dir        string
	ConfigPath string
	// Addr overrides the configured listen address.
	Addr string
	// Watch forgets changed sources so the next request renders them again.
	Watch bool
	// OnListen is called with the bound address once the server accepts requests.
	OnListen func(addr string)
}

// Serve renders asset modules on request until ctx is cancelled.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	project, err := a.load(opts.Dir, opts.ConfigPath)
	if err != nil {
		return err
	}
	eng, err := a.newEngine(project)
	if err != nil {
		return err
	}
	stop := a.startTelemetry()
	defer stop(ctx)

	if opts.Watch || project.Watch {
		w, err := a.newWatcher()
		if err != nil {
			return err
		}
		if err := w.Start(ctx, project.SourceDir); err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()
		go a.forgetChanges(w, eng)
	}

	addr := opts.Addr
	if addr == "" {
		addr = project.ServeAddr
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}

	handler := web.NewHandler(eng.pipeline, project.SourceDir, a.tracer, a.logger)
	srv := &http.Server{
		Handler:           web.NewRouter(handler, a.requestLog(), nil),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	bound := ln.Addr().String()
	a.logger.Info(fmt.Sprintf("serving %s on http://%s", project.SourceDir, bound))
	if opts.OnListen != nil {
		opts.OnListen(bound)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return zerr.Wrap(err, "failed to shut down server")
	}
	a.logger.Info("server stopped")
	return nil
}

// forgetChanges drops changed sources from the resolver, debounced, until the
// watcher stops.
func (a *App) forgetChanges(w ports.Watcher, eng *engine) {
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		eng.resolver.Forget(paths...)
		a.logger.Info(fmt.Sprintf("%d source file(s) changed", len(paths)))
	})
	for ev := range w.Events() {
		debouncer.Add(ev.Path)
	}
	debouncer.Flush()
}

func (a *App) requestLog() *slog.Logger {
	if l, ok := a.logger.(interface{ Slog() *slog.Logger }); ok {
		return l.Slog()
	}
	return nil
}

func defaultWatcher(log ports.Logger) func() (ports.Watcher, error) {
	return func() (ports.Watcher, error) {
		return watcher.NewWatcher(log)
	}
}
