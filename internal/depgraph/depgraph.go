package depgraph

import (
	"github.com/rocm-systems/package-planner/internal/manifest"
)

// Graph maps a package name to its declared dependencies, restricted
// to the subset it was built from. Dependencies on packages outside
// the subset impose no ordering constraint and carry no edge.
type Graph map[string][]string

// Build derives the dependency graph for the given records under the
// given dependency format. The returned keys preserve manifest order
// and drive deterministic iteration in Sort.
func Build(records []manifest.PackageRecord, format manifest.Format) (Graph, []string) {
	names := make(map[string]bool, len(records))
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		names[rec.Name] = true
		keys = append(keys, rec.Name)
	}

	graph := make(Graph, len(records))
	for _, rec := range records {
		var deps []string
		for _, dep := range rec.Depends(format) {
			if names[dep] {
				deps = append(deps, dep)
			}
		}
		graph[rec.Name] = deps
	}
	return graph, keys
}

// Result carries the best-effort install order plus any dependency
// cycles met along the way. A cyclic subset still terminates and every
// name still appears exactly once; the order inside a cycle is
// undefined and reported rather than rejected.
type Result struct {
	Order  []string
	Cycles [][]string
}

// Sort produces a depth-first post-order over the graph: every node is
// appended immediately after its recursively visited dependencies, so
// dependencies land strictly before their dependents in acyclic
// graphs. Keys are visited in manifest order, which makes the output
// byte-identical across runs.
func Sort(graph Graph, keys []string) Result {
	visited := make(map[string]bool, len(graph))
	onStack := make(map[string]bool, len(graph))
	var stack []string
	var res Result

	var visit func(name string)
	visit = func(name string) {
		if onStack[name] {
			res.Cycles = append(res.Cycles, cyclePath(stack, name))
			return
		}
		if visited[name] {
			return
		}
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)
		for _, dep := range graph[name] {
			visit(dep)
		}
		stack = stack[:len(stack)-1]
		onStack[name] = false
		res.Order = append(res.Order, name)
	}

	for _, name := range keys {
		visit(name)
	}
	return res
}

// cyclePath extracts the slice of the DFS stack from the first
// occurrence of name to the top, which is exactly the cycle.
func cyclePath(stack []string, name string) []string {
	for i, n := range stack {
		if n == name {
			return append([]string(nil), stack[i:]...)
		}
	}
	return []string{name}
}
