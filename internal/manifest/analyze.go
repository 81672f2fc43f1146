package manifest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/flaggraph/internal/model"
)

// ProblemKind categorizes manifest problems.
type ProblemKind string

const (
	// ProblemInvalidName: a flag or dependency name is empty after normalization.
	ProblemInvalidName ProblemKind = "invalid_name"

	// ProblemDuplicate: the same flag is declared twice.
	ProblemDuplicate ProblemKind = "duplicate"

	// ProblemCycle: declared dependencies form a cycle.
	ProblemCycle ProblemKind = "cycle"

	// ProblemExternal: a dependency is not declared in the manifest. Not an
	// error by itself; the flag must already exist in the store at apply time.
	ProblemExternal ProblemKind = "external"
)

// Problem is one finding of Analyze.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	Flag    string      `json:"flag"`
	Path    []string    `json:"path,omitempty"` // Cycle path: ["a", "b", "a"]
	Message string      `json:"message"`
}

// Analysis is the result of Analyze.
type Analysis struct {
	Problems []Problem `json:"problems"`
}

// Errors returns the problems that block Apply.
func (a Analysis) Errors() []Problem {
	var out []Problem
	for _, p := range a.Problems {
		if p.Kind != ProblemExternal {
			out = append(out, p)
		}
	}
	return out
}

// OK reports whether the manifest can be applied.
func (a Analysis) OK() bool {
	return len(a.Errors()) == 0
}

// Analyze checks a manifest without touching the store.
//
// Names are normalized the way the engine normalizes them. Cycles are found
// with Tarjan's algorithm over the declared edges; every strongly connected
// component with more than one member, or with a self-loop, is one problem.
func Analyze(m *Manifest) Analysis {
	analysis := Analysis{Problems: []Problem{}}

	declared := make(map[string]bool, len(m.Flags))
	var order []string
	graph := make(dependencyGraph)

	for _, decl := range m.Flags {
		name := model.NormalizeName(decl.Name)
		if name == "" {
			analysis.Problems = append(analysis.Problems, Problem{
				Kind:    ProblemInvalidName,
				Message: "flag name must not be empty",
			})
			continue
		}
		if declared[name] {
			analysis.Problems = append(analysis.Problems, Problem{
				Kind:    ProblemDuplicate,
				Flag:    name,
				Message: fmt.Sprintf("flag %s declared more than once", name),
			})
			continue
		}
		declared[name] = true
		order = append(order, name)
		graph[name] = []string{}

		for _, raw := range decl.DependsOn {
			dep := model.NormalizeName(raw)
			if dep == "" {
				analysis.Problems = append(analysis.Problems, Problem{
					Kind:    ProblemInvalidName,
					Flag:    name,
					Message: fmt.Sprintf("flag %s has an empty dependency name", name),
				})
				continue
			}
			if !slices.Contains(graph[name], dep) {
				graph[name] = append(graph[name], dep)
			}
		}
	}

	for _, name := range order {
		for _, dep := range graph[name] {
			if !declared[dep] {
				analysis.Problems = append(analysis.Problems, Problem{
					Kind:    ProblemExternal,
					Flag:    name,
					Message: fmt.Sprintf("dependency %s is not declared; it must already exist", dep),
				})
			}
		}
	}

	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			path := reconstructCyclePath(scc, graph)
			analysis.Problems = append(analysis.Problems, Problem{
				Kind:    ProblemCycle,
				Flag:    path[0],
				Path:    path,
				Message: fmt.Sprintf("circular dependency: %s", strings.Join(path, " → ")),
			})
		}
	}

	return analysis
}

// Order returns the declared flags sorted so that every flag follows its
// declared dependencies. Ties keep declaration order. Undeclared
// dependencies are ignored. Returns an error if the manifest has a cycle.
func Order(m *Manifest) ([]FlagDecl, error) {
	index := make(map[string]int, len(m.Flags))
	decls := make([]FlagDecl, 0, len(m.Flags))
	for _, decl := range m.Flags {
		decl.Name = model.NormalizeName(decl.Name)
		if _, dup := index[decl.Name]; dup || decl.Name == "" {
			continue
		}
		index[decl.Name] = len(decls)
		decls = append(decls, decl)
	}

	// pending[i] counts declared, unplaced dependencies of decls[i].
	pending := make([]int, len(decls))
	dependents := make([][]int, len(decls))
	for i, decl := range decls {
		seen := make(map[string]bool)
		for _, raw := range decl.DependsOn {
			dep := model.NormalizeName(raw)
			j, ok := index[dep]
			if !ok || seen[dep] {
				continue
			}
			seen[dep] = true
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	placed := make([]bool, len(decls))
	out := make([]FlagDecl, 0, len(decls))
	for len(out) < len(decls) {
		// Lowest declaration index with no pending dependencies.
		next := -1
		for i := range decls {
			if !placed[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("order manifest: dependency cycle among %d flags", len(decls)-len(out))
		}
		placed[next] = true
		out = append(out, decls[next])
		for _, d := range dependents[next] {
			pending[d]--
		}
	}
	return out, nil
}

// dependencyGraph maps flag → flags it depends on.
type dependencyGraph map[string][]string

func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so results are deterministic.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
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
			if _, known := graph[w]; !known {
				continue // Undeclared dependency
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

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

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside an SCC from its root back to itself.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	// The SCC is in stack-pop order, so the root (first member reached) is last.
	start := scc[len(scc)-1]
	if len(scc) == 1 {
		return []string{start, start}
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
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
		visited[next] = true
		current = next
	}
	return path
}
