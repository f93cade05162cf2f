package network

import "fmt"

// Community detection methods reported in CommunityAssignment.Method.
const (
	MethodLouvain         = "louvain"
	MethodWeakComponents  = "weakly_connected_components"
	minNodesForModularity = 3
)

// CommunityAssignment maps every node to exactly one community id.
// Ids are numbered 0..Count-1 in order of each community's first node.
type CommunityAssignment struct {
	Method     string
	Membership map[string]int
	Count      int
}

// Sizes returns member counts indexed by community id.
func (c CommunityAssignment) Sizes() []int {
	sizes := make([]int, c.Count)
	for _, id := range c.Membership {
		sizes[id]++
	}
	return sizes
}

// DetectCommunities runs modularity partitioning on the undirected projection
// and falls back to weakly connected components when analytics is nil, the
// graph has fewer than three nodes, or the partitioner fails.
func DetectCommunities(g *Graph, analytics GraphAnalytics) (CommunityAssignment, error) {
	if g.Empty() {
		return CommunityAssignment{Method: MethodWeakComponents, Membership: map[string]int{}}, nil
	}

	var (
		labels []int
		err    error
	)
	method := MethodLouvain
	if analytics != nil && g.NodeCount() >= minNodesForModularity {
		labels, err = safeCommunities(analytics, g)
	}
	if labels == nil || len(labels) != g.NodeCount() {
		method = MethodWeakComponents
		labels = g.WeakComponents()
	}

	out := CommunityAssignment{Method: method, Membership: make(map[string]int, len(labels))}
	labels = canonical(labels)
	for i, l := range labels {
		out.Membership[g.names[i]] = l
		if l+1 > out.Count {
			out.Count = l + 1
		}
	}
	return out, err
}

func safeCommunities(analytics GraphAnalytics, g *Graph) (labels []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			labels, err = nil, fmt.Errorf("%s communities: %v", analytics.Name(), r)
		}
	}()
	return analytics.Communities(g)
}
