package network

// DefaultBetweennessNodeLimit is the node count at which betweenness is skipped.
// Brandes is O(n*m); above the limit the ranking uses the remaining metrics.
const DefaultBetweennessNodeLimit = 500

// CentralityProfile holds every centrality metric for one node. Optional
// metrics are nil when they were not computed for this graph.
type CentralityProfile struct {
	Node        string
	PageRank    float64
	InDegree    float64
	OutDegree   float64
	Betweenness *float64
	Eigenvector *float64
	Closeness   *float64
}

// CentralityOptions controls which optional metrics are attempted.
type CentralityOptions struct {
	BetweennessNodeLimit int
}

// ComputeCentrality returns one profile per node in insertion order.
// Betweenness is computed only below the node limit. Eigenvector and closeness
// are computed only for strongly connected graphs.
func ComputeCentrality(g *Graph, analytics GraphAnalytics, opts CentralityOptions) []CentralityProfile {
	if g.Empty() {
		return nil
	}
	if analytics == nil {
		analytics = NativeAnalytics{}
	}
	limit := opts.BetweennessNodeLimit
	if limit <= 0 {
		limit = DefaultBetweennessNodeLimit
	}

	n := g.NodeCount()
	profiles := make([]CentralityProfile, n)
	pr := analytics.PageRank(g)
	for i := 0; i < n; i++ {
		profiles[i] = CentralityProfile{
			Node:     g.names[i],
			PageRank: pr[i],
		}
		if n > 1 {
			profiles[i].InDegree = float64(g.inDegree(i)) / float64(n-1)
			profiles[i].OutDegree = float64(g.outDegree(i)) / float64(n-1)
		}
	}

	if n < limit {
		bc := analytics.Betweenness(g)
		scale := 0.0
		if n > 2 {
			scale = 1 / float64((n-1)*(n-2))
		}
		for i := range profiles {
			v := bc[i] * scale
			profiles[i].Betweenness = &v
		}
	}

	if g.StronglyConnected() {
		if ev, err := analytics.Eigenvector(g); err == nil {
			for i := range profiles {
				v := ev[i]
				profiles[i].Eigenvector = &v
			}
		}
		cl := analytics.Closeness(g)
		for i := range profiles {
			v := cl[i]
			profiles[i].Closeness = &v
		}
	}
	return profiles
}
