// Package graph builds the dependency graph of an asset module.
package graph

import (
	"context"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Builder resolves an entry and everything it imports into a validated graph.
// It keeps no state between builds; memoization lives in the resolver.
type Builder struct {
	resolver ports.ModuleResolver
	tracer   ports.Tracer
}

// NewBuilder creates a Builder.
func NewBuilder(resolver ports.ModuleResolver, tracer ports.Tracer) *Builder {
	return &Builder{resolver: resolver, tracer: tracer}
}

// Build resolves entry and, transitively, every import of every reached
// module. The returned graph is validated from the entry, so Walk yields
// dependencies before dependents. A failed resolution anywhere or a cycle
// fails the whole build.
func (b *Builder) Build(ctx context.Context, entry domain.ModuleRef) (*domain.Graph, error) {
	ctx, span := b.tracer.Start(ctx, "resolve")
	defer span.End()

	g, err := b.build(ctx, entry)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("spool.modules", g.Len())
	return g, nil
}

func (b *Builder) build(ctx context.Context, entry domain.ModuleRef) (*domain.Graph, error) {
	root, err := b.resolver.Resolve(ctx, entry)
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph()
	if err := g.AddUnit(root); err != nil {
		return nil, err
	}

	queue := []*domain.SourceUnit{root}
	for len(queue) > 0 {
		unit := queue[0]
		queue = queue[1:]

		deps, err := b.resolveImports(ctx, unit)
		if err != nil {
			return nil, err
		}

		for i, dep := range deps {
			if !g.Has(dep.ID) {
				if err := g.AddUnit(dep); err != nil {
					return nil, err
				}
				queue = append(queue, dep)
			}
			if err := g.Link(unit.ID, unit.Imports[i], dep.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := g.Validate(root.ID); err != nil {
		return nil, err
	}
	return g, nil
}

// resolveImports resolves the imports of unit concurrently and returns them
// in import order.
func (b *Builder) resolveImports(ctx context.Context, unit *domain.SourceUnit) ([]*domain.SourceUnit, error) {
	deps := make([]*domain.SourceUnit, len(unit.Imports))
	if len(deps) == 0 {
		return deps, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, spec := range unit.Imports {
		eg.Go(func() error {
			dep, err := b.resolver.Resolve(ctx, domain.ModuleRef{Specifier: spec, Base: unit.ID})
			if err != nil {
				return err
			}
			deps[i] = dep
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return deps, nil
}
