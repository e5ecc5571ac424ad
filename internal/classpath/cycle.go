package classpath

import (
	"fmt"
	"slices"
	"strings"
)

// Cycle is a chain of classes that inherit from each other. Path starts
// and ends with the same class.
type Cycle struct {
	Path []string `json:"path"`
}

func (c Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// Cycles reports every inheritance cycle among the classes of s, following
// superclass and interface edges between described classes. Names are
// visited in sorted order so the result is deterministic. A well-formed
// classpath returns an empty list.
//
// Supertype chains are walked without a visited set elsewhere, so a
// cyclic source must be rejected before it backs a module.
func Cycles(s *Source) []Cycle {
	graph := supertypeGraph(s)
	out := []Cycle{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || slices.Contains(graph[scc[0]], scc[0]) {
			out = append(out, Cycle{Path: cyclePath(scc, graph)})
		}
	}
	slices.SortFunc(out, func(a, b Cycle) int { return strings.Compare(a.Path[0], b.Path[0]) })
	return out
}

// supertypeGraph maps each class to its described direct supertypes.
func supertypeGraph(s *Source) map[string][]string {
	graph := make(map[string][]string, len(s.classes))
	for name, d := range s.classes {
		edges := []string{}
		if _, ok := s.classes[d.Superclass]; ok {
			edges = append(edges, d.Superclass)
		}
		for _, i := range d.Interfaces {
			if _, ok := s.classes[i]; ok {
				edges = append(edges, i)
			}
		}
		graph[name] = edges
	}
	return graph
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph map[string][]string) [][]string {
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

		// v is a root: pop its component
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
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// cyclePath follows edges inside scc from its smallest member back to
// itself.
func cyclePath(scc []string, graph map[string][]string) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	path := []string{start}
	visited := map[string]bool{}
	for current := start; ; {
		visited[current] = true
		next := ""
		for _, w := range graph[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		current = next
	}
}

// checkCycles fails with ErrCodeCycle when s has an inheritance cycle.
func checkCycles(s *Source, path string) error {
	cycles := Cycles(s)
	if len(cycles) == 0 {
		return nil
	}
	msgs := make([]string, len(cycles))
	for i, c := range cycles {
		msgs[i] = c.String()
	}
	return &LoadError{
		Code:    ErrCodeCycle,
		Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(msgs, "; ")),
		Path:    path,
	}
}
