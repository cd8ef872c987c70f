// Package validator checks a workflow graph for structural problems before it
// is stored or executed.
package validator

import (
	"fmt"
	"strings"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// ValidateGraph checks for duplicate ids, dangling edges, incompatible handle
// pairs and dependency cycles among executable nodes. All problems are
// collected and reported together.
func ValidateGraph(nodes []domain.Node, edges []domain.Edge) error {
	var errors []string

	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			errors = append(errors, fmt.Sprintf("Duplicate node id: '%s'", n.ID))
			continue
		}
		byID[n.ID] = n
	}

	seenEdges := make(map[string]bool, len(edges))
	incoming := make(map[string][]string)
	for _, e := range edges {
		if seenEdges[e.ID] {
			errors = append(errors, fmt.Sprintf("Duplicate edge id: '%s'", e.ID))
		}
		seenEdges[e.ID] = true

		if _, ok := byID[e.Source]; !ok {
			errors = append(errors, fmt.Sprintf("Edge '%s' references missing source: '%s'", e.ID, e.Source))
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			errors = append(errors, fmt.Sprintf("Edge '%s' references missing target: '%s'", e.ID, e.Target))
			continue
		}
		if !domain.CompatibleHandles(e.SourceHandle, e.TargetHandle) {
			errors = append(errors, fmt.Sprintf("Edge '%s' connects incompatible handles: '%s' to '%s'",
				e.ID, e.SourceHandle, e.TargetHandle))
		}
		incoming[e.Target] = append(incoming[e.Target], e.Source)
	}

	for _, cycle := range findCycles(byID, incoming) {
		errors = append(errors, fmt.Sprintf("Dependency cycle: %s", strings.Join(cycle, " -> ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

// findCycles walks incoming edges depth-first and reports each cycle once.
func findCycles(nodes map[string]domain.Node, incoming map[string][]string) [][]string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))
	var cycles [][]string

	var walk func(id string, path []string)
	walk = func(id string, path []string) {
		state[id] = inStack
		path = append(path, id)

		for _, src := range incoming[id] {
			switch state[src] {
			case unvisited:
				walk(src, path)
			case inStack:
				// Trim the path to the cycle itself.
				start := 0
				for i, p := range path {
					if p == src {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), src)
				cycles = append(cycles, cycle)
			}
		}
		state[id] = done
	}

	for id := range nodes {
		if state[id] == unvisited {
			walk(id, nil)
		}
	}
	return cycles
}
