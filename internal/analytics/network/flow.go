package network

import (
	"errors"
	"sort"
)

const flowHubCount = 5

var ErrUnknownNode = errors.New("UNKNOWN_NODE")

// InformationFlow describes how far content can travel from one author.
type InformationFlow struct {
	Source string
	// Levels holds newly reached nodes per hop, each at its shallowest depth.
	Levels      map[int][]string
	TotalReach  int
	PathsToHubs map[string][]string
}

// AnalyzeInformationFlow walks out-edges breadth first from source for at most
// maxDepth hops (maxDepth < 0 means unbounded). PathsToHubs holds a shortest
// path to each of the five reached nodes with the highest in-degree.
//
// An empty graph yields an empty flow. A source missing from a non-empty graph
// is ErrUnknownNode.
func AnalyzeInformationFlow(g *Graph, source string, maxDepth int) (InformationFlow, error) {
	flow := InformationFlow{Source: source, Levels: map[int][]string{}, PathsToHubs: map[string][]string{}}
	if g.Empty() {
		return flow, nil
	}
	s, ok := g.index[source]
	if !ok {
		return flow, ErrUnknownNode
	}

	n := g.NodeCount()
	depth := make([]int, n)
	parent := make([]int, n)
	for i := range depth {
		depth[i], parent[i] = -1, -1
	}
	depth[s] = 0

	reached := make([]int, 0)
	queue := []int{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if maxDepth >= 0 && depth[u] >= maxDepth {
			continue
		}
		for _, e := range g.out[u] {
			v := e.to
			if depth[v] >= 0 {
				continue
			}
			depth[v] = depth[u] + 1
			parent[v] = u
			flow.Levels[depth[v]] = append(flow.Levels[depth[v]], g.names[v])
			reached = append(reached, v)
			queue = append(queue, v)
		}
	}
	flow.TotalReach = len(reached)

	hubs := append([]int(nil), reached...)
	sort.SliceStable(hubs, func(a, b int) bool {
		if da, db := g.inDegree(hubs[a]), g.inDegree(hubs[b]); da != db {
			return da > db
		}
		return hubs[a] < hubs[b]
	})
	if len(hubs) > flowHubCount {
		hubs = hubs[:flowHubCount]
	}
	for _, h := range hubs {
		var p []string
		for v := h; v >= 0; v = parent[v] {
			p = append([]string{g.names[v]}, p...)
		}
		flow.PathsToHubs[g.names[h]] = p
	}
	return flow, nil
}
