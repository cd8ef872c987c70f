package runtime

import "github.com/mosaicflow/mosaic/pkg/domain"

// graphIndex is an immutable view of the graph taken at the start of an
// operation. Edge slices keep the graph's edge-list order so extraction
// tie-breaks stay deterministic.
type graphIndex struct {
	nodes    map[string]domain.Node
	order    []string
	incoming map[string][]domain.Edge
	outgoing map[string][]domain.Edge
}

func indexGraph(nodes []domain.Node, edges []domain.Edge) *graphIndex {
	g := &graphIndex{
		nodes:    make(map[string]domain.Node, len(nodes)),
		order:    make([]string, 0, len(nodes)),
		incoming: make(map[string][]domain.Edge),
		outgoing: make(map[string][]domain.Edge),
	}
	for _, n := range nodes {
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for _, e := range edges {
		g.incoming[e.Target] = append(g.incoming[e.Target], e)
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	}
	return g
}

// executables returns the ids of all executable nodes in graph order.
func (g *graphIndex) executables() []string {
	var out []string
	for _, id := range g.order {
		if g.nodes[id].Kind.Executable() {
			out = append(out, id)
		}
	}
	return out
}

// upstreamExecutable computes the transitive set of executable nodes the
// given node depends on, walking incoming edges depth-first. Traversal
// continues through non-executable nodes so a raw input simply passes
// through; a visited set makes the walk cycle-safe. The starting node is not
// part of its own dependency set.
func (g *graphIndex) upstreamExecutable(id string) map[string]bool {
	result := make(map[string]bool)
	visited := map[string]bool{id: true}

	var walk func(string)
	walk = func(cur string) {
		for _, e := range g.incoming[cur] {
			src := e.Source
			if visited[src] {
				continue
			}
			visited[src] = true
			if n, ok := g.nodes[src]; ok && n.Kind.Executable() {
				result[src] = true
			}
			walk(src)
		}
	}
	walk(id)
	return result
}
