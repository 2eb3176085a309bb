package epub

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Graph is the registry of resources for one package build plus the
// dependency relation between them. An edge A → B means "A requires B".
//
// Nodes are kept in insertion order, and so are the edges leaving each node,
// so every traversal is deterministic. Nodes that only act as dependency
// sources (such as the package document itself) carry no resource.
type Graph struct {
	nodes     *orderedmap.OrderedMap[string, *node]
	resources int
}

// node holds the resource at a path, if any, and the paths it requires.
type node struct {
	resource *Resource
	edges    *orderedmap.OrderedMap[string, struct{}]
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	g := &Graph{}
	g.Reset()
	return g
}

// Reset discards all nodes and edges.
func (g *Graph) Reset() {
	g.nodes = orderedmap.New[string, *node]()
	g.resources = 0
}

// Len returns the number of registered resources. Source-only nodes are not
// counted.
func (g *Graph) Len() int {
	return g.resources
}

// Contains reports whether a resource is registered at p.
func (g *Graph) Contains(p string) bool {
	n, ok := g.nodes.Get(p)
	return ok && n.resource != nil
}

// Get returns the resource registered at p.
func (g *Graph) Get(p string) (Resource, bool) {
	n, ok := g.nodes.Get(p)
	if !ok || n.resource == nil {
		return Resource{}, false
	}
	return *n.resource, true
}

// Upsert registers res, or merges it into the resource already registered at
// the same path, and records that requiredBy depends on it. requiredBy is
// created as a source-only node if it does not exist. Registering a path
// twice with different media types fails with ErrMediaTypeConflict.
func (g *Graph) Upsert(res Resource, requiredBy string) (Resource, error) {
	if res.Path == "" {
		return Resource{}, fmt.Errorf("epub: resource has no path")
	}

	n := g.ensure(res.Path)
	if n.resource == nil {
		stored := res
		n.resource = &stored
		g.resources++
	} else {
		merged, err := n.resource.merge(res)
		if err != nil {
			return Resource{}, err
		}
		*n.resource = merged
	}

	if err := g.AddDependency(requiredBy, res.Path); err != nil {
		return Resource{}, err
	}
	return *n.resource, nil
}

// AddDependency records that from requires to. The target must already be
// registered; the source is created on demand. Adding an existing edge is a
// no-op.
func (g *Graph) AddDependency(from, to string) error {
	if !g.Contains(to) {
		return fmt.Errorf("%w: %s requires %s", ErrDanglingDependency, from, to)
	}
	if from == to {
		return nil
	}

	g.ensure(from).edges.Set(to, struct{}{})
	return nil
}

// OrderedDependenciesOf returns every resource reachable from the given node,
// each exactly once, excluding the node itself. Resources are visited
// breadth-first and in edge insertion order, so the direct dependencies of
// the node come first in the order they were registered, followed by what
// those require.
func (g *Graph) OrderedDependenciesOf(from string) ([]Resource, error) {
	if _, ok := g.nodes.Get(from); !ok {
		return nil, fmt.Errorf("%w: %s", ErrDanglingDependency, from)
	}

	seen := map[string]bool{from: true}
	queue := []string{from}
	var out []Resource

	for len(queue) > 0 {
		cur, _ := g.nodes.Get(queue[0])
		queue = queue[1:]

		for edge := cur.edges.Oldest(); edge != nil; edge = edge.Next() {
			dep := edge.Key
			if seen[dep] {
				continue
			}
			seen[dep] = true
			queue = append(queue, dep)
			if target, _ := g.nodes.Get(dep); target.resource != nil {
				out = append(out, *target.resource)
			}
		}
	}

	return out, nil
}

// Paths returns the path of every node in insertion order, including
// source-only nodes.
func (g *Graph) Paths() []string {
	out := make([]string, 0, g.nodes.Len())
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (g *Graph) ensure(p string) *node {
	if n, ok := g.nodes.Get(p); ok {
		return n
	}
	n := &node{edges: orderedmap.New[string, struct{}]()}
	g.nodes.Set(p, n)
	return n
}
