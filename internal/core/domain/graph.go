// Package domain contains the core domain models of the module graph and the assets it produces.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph of the modules reachable from one entry.
// Edges point from importer to imported module.
type Graph struct {
	units          map[InternedString]*SourceUnit
	edges          map[InternedString][]InternedString
	specifiers     map[InternedString]map[string]InternedString
	insertion      []InternedString
	executionOrder []InternedString
	entry          InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		units:      make(map[InternedString]*SourceUnit),
		edges:      make(map[InternedString][]InternedString),
		specifiers: make(map[InternedString]map[string]InternedString),
	}
}

// AddUnit adds a module to the graph.
// It returns an error if a module with the same identity already exists.
func (g *Graph) AddUnit(u *SourceUnit) error {
	id := NewInternedString(u.ID)
	if _, exists := g.units[id]; exists {
		return zerr.With(zerr.Wrap(ErrUnitAlreadyExists, "cannot add module"), "module", u.Name)
	}
	g.units[id] = u
	g.insertion = append(g.insertion, id)
	return nil
}

// AddEdge records that module from imports module to.
// Both modules must already be in the graph. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	f, t := NewInternedString(from), NewInternedString(to)
	if _, ok := g.units[f]; !ok {
		return zerr.With(zerr.Wrap(ErrMissingDependency, "unknown importer"), "dependency", from)
	}
	if _, ok := g.units[t]; !ok {
		return zerr.With(zerr.Wrap(ErrMissingDependency, "unknown import"), "dependency", to)
	}
	for _, existing := range g.edges[f] {
		if existing == t {
			return nil
		}
	}
	g.edges[f] = append(g.edges[f], t)
	return nil
}

// Link records that module from imports module to under specifier spec and
// adds the edge between them. Several specifiers may lead to one module.
func (g *Graph) Link(from, spec, to string) error {
	if err := g.AddEdge(from, to); err != nil {
		return zerr.With(err, "specifier", spec)
	}
	f := NewInternedString(from)
	if g.specifiers[f] == nil {
		g.specifiers[f] = make(map[string]InternedString)
	}
	g.specifiers[f][spec] = NewInternedString(to)
	return nil
}

// Imports returns the specifiers linked from a module, mapped to the
// identities they resolved to.
func (g *Graph) Imports(id string) map[string]string {
	specs := g.specifiers[NewInternedString(id)]
	out := make(map[string]string, len(specs))
	for spec, to := range specs {
		out[spec] = to.String()
	}
	return out
}

// Has reports whether a module with the given identity is in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.units[NewInternedString(id)]
	return ok
}

// Unit returns the module with the given identity.
func (g *Graph) Unit(id string) (*SourceUnit, bool) {
	u, ok := g.units[NewInternedString(id)]
	return u, ok
}

// Dependencies returns the direct imports of a module in import order.
func (g *Graph) Dependencies(id string) []*SourceUnit {
	deps := g.edges[NewInternedString(id)]
	out := make([]*SourceUnit, 0, len(deps))
	for _, d := range deps {
		out = append(out, g.units[d])
	}
	return out
}

// Dependents returns the identities of the modules that import id.
func (g *Graph) Dependents(id string) []string {
	target := NewInternedString(id)
	var out []string
	for _, from := range g.insertion {
		for _, to := range g.edges[from] {
			if to == target {
				out = append(out, from.String())
				break
			}
		}
	}
	return out
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int {
	return len(g.units)
}

// Entry returns the module the graph was validated from.
func (g *Graph) Entry() *SourceUnit {
	return g.units[g.entry]
}

// Validate checks the graph for cycles with a depth-first search starting at
// entry, then covers any module not reachable from it. On success it
// populates the execution order used by Walk; on failure the order is empty.
func (g *Graph) Validate(entry string) error {
	root := NewInternedString(entry)
	if _, ok := g.units[root]; !ok {
		return zerr.With(zerr.Wrap(ErrMissingDependency, "entry is not in graph"), "dependency", entry)
	}
	g.entry = root
	g.executionOrder = make([]InternedString, 0, len(g.units))

	visited := make(map[InternedString]int, len(g.units)) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.edges[u] {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	starts := append([]InternedString{root}, g.insertion...)
	for _, id := range starts {
		if visited[id] != 0 {
			continue
		}
		if err := visit(id); err != nil {
			g.executionOrder = nil
			return err
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}

	names := make([]string, 0, len(path)-startIdx+1)
	for _, id := range path[startIdx:] {
		names = append(names, g.units[id].Name)
	}
	names = append(names, g.units[dep].Name)

	return zerr.With(zerr.Wrap(ErrCycleDetected, "module graph is not acyclic"), "cycle", strings.Join(names, " -> "))
}

// Walk returns an iterator that yields modules with dependencies before dependents.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*SourceUnit] {
	return func(yield func(*SourceUnit) bool) {
		for _, id := range g.executionOrder {
			if !yield(g.units[id]) {
				return
			}
		}
	}
}
