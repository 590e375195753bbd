package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/qopt/internal/ir"
)

// RecursionCycle is a set of composites whose bodies reach each other.
type RecursionCycle struct {
	Path    []string `json:"path"`    // Cycle path: ["gate-a", "gate-b", "gate-a"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeRecursion finds composites that expand into themselves.
//
// The algorithm:
//  1. Build composite → referenced composite graph from body ops; a
//     reference to <name>_dg counts as a reference to <name>
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Output is ordered by the first gate name of each cycle.
func AnalyzeRecursion(specs []ir.CompositeSpec) []RecursionCycle {
	if len(specs) == 0 {
		return nil
	}

	graph := buildDependencyGraph(specs)
	sccs := tarjanSCC(graph)

	var cycles []RecursionCycle
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Path[0] < cycles[j].Path[0] })
	return cycles
}

// dependencyGraph maps gate name → gate names its body references.
type dependencyGraph map[string][]string

// buildDependencyGraph constructs the body reference graph. Edges are
// deduplicated and sorted so traversal is deterministic.
func buildDependencyGraph(specs []ir.CompositeSpec) dependencyGraph {
	owners := make(map[string]string, 2*len(specs))
	for _, spec := range specs {
		owners[spec.Name] = spec.Name
		owners[spec.InverseName()] = spec.Name
	}

	graph := make(dependencyGraph, len(specs))
	for _, spec := range specs {
		seen := make(map[string]bool)
		edges := []string{}
		for _, op := range spec.Body {
			target, ok := owners[op.Op]
			if !ok || seen[target] {
				continue
			}
			seen[target] = true
			edges = append(edges, target)
		}
		sort.Strings(edges)
		graph[spec.Name] = edges
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of gate names.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// Root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// sccToCycle converts an SCC to a RecursionCycle starting at its
// lexically smallest member.
func sccToCycle(scc []string, graph dependencyGraph) RecursionCycle {
	sort.Strings(scc)
	if len(scc) == 1 {
		name := scc[0]
		return RecursionCycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("gate %s references itself", name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return RecursionCycle{
		Path:    path,
		Message: fmt.Sprintf("recursive gate definitions: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
