// Package web serves asset modules over HTTP, rendering them on request.
package web

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/engine/pipeline"
)

// FingerprintHeader carries the fingerprint of a served asset.
const FingerprintHeader = "X-Spool-Fingerprint"

// Handler renders the asset module matching a request path. Requests that no
// source module can answer are handed to the next handler.
type Handler struct {
	pipeline  *pipeline.Pipeline
	sourceDir string
	tracer    ports.Tracer
	logger    ports.Logger
}

// NewHandler creates a new Handler serving modules below sourceDir.
func NewHandler(p *pipeline.Pipeline, sourceDir string, tracer ports.Tracer, logger ports.Logger) *Handler {
	return &Handler{
		pipeline:  p,
		sourceDir: sourceDir,
		tracer:    tracer,
		logger:    logger,
	}
}

// Middleware wraps next.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		source, ok := h.match(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := h.tracer.Start(r.Context(), "serve "+r.URL.Path, ports.AsRoot())
		defer span.End()
		span.SetAttribute("spool.entry", source)

		res, plan, err := h.pipeline.Render(ctx, domain.ModuleRef{Specifier: "/" + source})
		if plan != nil && !plan.Replaced.IsZero() {
			h.logger.Info(fmt.Sprintf("%s changed: %s -> %s", source, plan.Replaced.Short(), plan.Fingerprint().Short()))
		}
		if err != nil {
			if !h.exists(source) {
				// Removed between matching and rendering.
				next.ServeHTTP(w, r)
				return
			}
			span.RecordError(err)
			h.logger.Error(err)
			http.Error(w, domain.Summarize(err), http.StatusInternalServerError)
			return
		}

		fp := plan.Fingerprint()
		span.SetAttribute("spool.fingerprint", fp)

		etag := strconv.Quote(fp.String())
		header := w.Header()
		header.Set("ETag", etag)
		header.Set(FingerprintHeader, fp.String())
		header.Set("Cache-Control", "no-cache")

		if match := r.Header.Get("If-None-Match"); match != "" && (match == etag || match == "*") {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		header.Set("Content-Type", res.Kind.ContentType())
		header.Set("Content-Length", strconv.Itoa(len(res.Text)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte(res.Text))
	})
}

// match returns the first source candidate for a request path that exists.
func (h *Handler) match(requestPath string) (string, bool) {
	for _, candidate := range domain.SourceCandidates(requestPath) {
		if h.exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (h *Handler) exists(source string) bool {
	info, err := os.Stat(filepath.Join(h.sourceDir, filepath.FromSlash(source)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("cannot stat " + source + ": " + err.Error())
		}
		return false
	}
	return info.Mode().IsRegular()
}
