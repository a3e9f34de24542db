// Package pipeline renders asset modules: it builds the module graph,
// fingerprints every module and executes asset modules through the cache.
package pipeline

import (
	"context"
	"time"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/engine/graph"
	"go.trai.ch/zerr"
)

// Plan is a validated module graph with the fingerprint of every module.
// Replaced holds the previous fingerprint of the entry when it changed since
// the last Prepare of the same entry.
type Plan struct {
	Graph        *domain.Graph
	Fingerprints map[string]domain.Fingerprint
	Replaced     domain.Fingerprint
}

// Entry returns the module the plan renders.
func (p *Plan) Entry() *domain.SourceUnit {
	return p.Graph.Entry()
}

// Fingerprint returns the fingerprint of the entry.
func (p *Plan) Fingerprint() domain.Fingerprint {
	return p.Fingerprints[p.Entry().ID]
}

// Pipeline is shared by static builds and the dev server.
type Pipeline struct {
	graphs  *graph.Builder
	hasher  ports.Fingerprinter
	sandbox ports.Sandbox
	cache   ports.AssetCache
	tracer  ports.Tracer
}

// New creates a Pipeline.
func New(
	resolver ports.ModuleResolver,
	hasher ports.Fingerprinter,
	sandbox ports.Sandbox,
	cache ports.AssetCache,
	tracer ports.Tracer,
) *Pipeline {
	return &Pipeline{
		graphs:  graph.NewBuilder(resolver, tracer),
		hasher:  hasher,
		sandbox: sandbox,
		cache:   cache,
		tracer:  tracer,
	}
}

// Prepare resolves the graph of entry and fingerprints it bottom-up. Asset
// modules are fingerprinted with their kind, library modules as js.
func (p *Pipeline) Prepare(ctx context.Context, entry domain.ModuleRef) (*Plan, error) {
	g, err := p.graphs.Build(ctx, entry)
	if err != nil {
		return nil, err
	}

	fps := make(map[string]domain.Fingerprint, g.Len())
	for unit := range g.Walk() {
		deps := g.Dependencies(unit.ID)
		depFps := make([]domain.Fingerprint, len(deps))
		for i, dep := range deps {
			depFps[i] = fps[dep.ID]
		}
		kind := domain.KindJS
		if unit.Asset {
			kind = unit.Kind
		}
		fps[unit.ID] = p.hasher.Fingerprint(kind, unit, depFps)
	}

	plan := &Plan{Graph: g, Fingerprints: fps}
	if root := plan.Entry(); root.Asset {
		if prev, changed := p.hasher.Record(root.ID, plan.Fingerprint()); changed {
			plan.Replaced = prev
		}
	}
	return plan, nil
}

// Execute renders the entry of plan. Every asset module reached, the entry
// included, goes through the asset cache; library modules are handed to the
// sandbox together with their resolved imports. The boolean reports whether
// the entry was served from the cache.
func (p *Pipeline) Execute(ctx context.Context, plan *Plan) (*domain.AssetResult, bool, error) {
	entry := plan.Entry()
	if !entry.Asset {
		return nil, false, zerr.With(zerr.Wrap(domain.ErrNotAnEntry, "cannot render a library module"), "module", entry.Name)
	}
	r := &render{p: p, plan: plan, libraries: make(map[string]map[string]domain.Import)}
	return r.asset(ctx, entry)
}

// Render prepares and executes entry.
func (p *Pipeline) Render(ctx context.Context, entry domain.ModuleRef) (*domain.AssetResult, *Plan, error) {
	plan, err := p.Prepare(ctx, entry)
	if err != nil {
		return nil, nil, err
	}
	res, _, err := p.Execute(ctx, plan)
	if err != nil {
		return nil, plan, err
	}
	return res, plan, nil
}

// Stats exposes the asset cache counters.
func (p *Pipeline) Stats() ports.CacheStats {
	return p.cache.Stats()
}

// render is the state of one Execute call.
type render struct {
	p         *Pipeline
	plan      *Plan
	libraries map[string]map[string]domain.Import
}

func (r *render) asset(ctx context.Context, unit *domain.SourceUnit) (*domain.AssetResult, bool, error) {
	fp := r.plan.Fingerprints[unit.ID]
	return r.p.cache.GetOrBuild(ctx, fp, func(ctx context.Context) (*domain.AssetResult, error) {
		imports, err := r.imports(ctx, unit)
		if err != nil {
			return nil, err
		}

		ctx, span := r.p.tracer.Start(ctx, "execute "+unit.Name)
		defer span.End()
		span.SetAttribute("spool.fingerprint", fp)

		text, err := r.p.sandbox.Execute(ctx, unit, imports, span)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return &domain.AssetResult{
			Fingerprint: fp,
			Kind:        unit.Kind,
			Text:        text,
			ProducedAt:  time.Now(),
		}, nil
	})
}

// imports satisfies the imports of unit: asset modules are rendered first,
// library modules are passed on with their own imports.
func (r *render) imports(ctx context.Context, unit *domain.SourceUnit) (map[string]domain.Import, error) {
	if cached, ok := r.libraries[unit.ID]; ok {
		return cached, nil
	}

	specs := r.plan.Graph.Imports(unit.ID)
	out := make(map[string]domain.Import, len(specs))
	for spec, id := range specs {
		dep, _ := r.plan.Graph.Unit(id)
		if dep.Asset {
			res, _, err := r.asset(ctx, dep)
			if err != nil {
				return nil, err
			}
			out[spec] = domain.Import{Asset: res}
			continue
		}
		sub, err := r.imports(ctx, dep)
		if err != nil {
			return nil, err
		}
		out[spec] = domain.Import{Unit: dep, Imports: sub}
	}

	r.libraries[unit.ID] = out
	return out, nil
}
