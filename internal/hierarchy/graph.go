package hierarchy

import (
	"fmt"
	"sort"
	"sync"
)

// Graph stores single-inheritance edges between named classes.
type Graph struct {
	mu       sync.RWMutex
	parents  map[string]string              // Key: class, Value: declared base
	children map[string]map[string]struct{} // Key: base, Value: set of direct derived classes
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		parents:  make(map[string]string),
		children: make(map[string]map[string]struct{}),
	}
}

// SetParent records that child derives from parent, replacing any previous
// base of child. An empty parent removes the edge.
func (g *Graph) SetParent(child, parent string) error {
	if child == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if child == parent {
		return fmt.Errorf("self-referential inheritance not allowed: %s -> %s", child, parent)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.unlinkLocked(child)
	if parent == "" {
		return nil
	}

	g.parents[child] = parent
	if g.children[parent] == nil {
		g.children[parent] = make(map[string]struct{})
	}
	g.children[parent][child] = struct{}{}
	return nil
}

// Remove drops the base edge of name. Edges of classes deriving from name
// are kept, since they still declare name as their base.
func (g *Graph) Remove(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlinkLocked(name)
}

func (g *Graph) unlinkLocked(child string) {
	old, ok := g.parents[child]
	if !ok {
		return
	}
	delete(g.parents, child)
	if set := g.children[old]; set != nil {
		delete(set, child)
		if len(set) == 0 {
			delete(g.children, old)
		}
	}
}

// Descendants returns every class that transitively derives from name, in
// breadth-first order with siblings sorted. name itself is never included,
// even when it takes part in a cycle.
func (g *Graph) Descendants(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]struct{}{name: {}}
	var out []string
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range sortedKeys(g.children[current]) {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
