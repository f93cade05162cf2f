// Package network builds the author interaction graph and ranks its nodes.
package network

import "social-insights/internal/models"

// Interaction weights per edge kind.
const (
	MentionWeight = 1.0
	ReplyWeight   = 1.0
	RetweetWeight = 2.0
)

// DefaultMinInteractions is the edge weight floor applied when none is configured.
const DefaultMinInteractions = 3

type edge struct {
	to     int
	weight float64
}

// Graph is a directed weighted graph over author handles. Node and edge
// iteration follow first-appearance order so every result is reproducible.
type Graph struct {
	names []string
	index map[string]int
	out   [][]edge
	in    [][]edge
	edges int
}

func newGraph() *Graph {
	return &Graph{index: map[string]int{}}
}

func (g *Graph) addNode(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	i := len(g.names)
	g.names = append(g.names, name)
	g.index[name] = i
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return i
}

func (g *Graph) addEdge(from, to string, w float64) {
	u, v := g.addNode(from), g.addNode(to)
	g.out[u] = append(g.out[u], edge{to: v, weight: w})
	g.in[v] = append(g.in[v], edge{to: u, weight: w})
	g.edges++
}

type edgeKey struct{ from, to string }

// Build collapses interactions into weighted author edges and drops every edge
// whose accumulated weight is below minInteractions. Self-interactions are
// ignored. Nodes exist only as endpoints of surviving edges.
func Build(interactions []models.Interaction, minInteractions int) *Graph {
	if minInteractions < 1 {
		minInteractions = 1
	}

	weights := map[edgeKey]float64{}
	order := make([]edgeKey, 0)
	add := func(from, to string, w float64) {
		if from == "" || to == "" || from == to {
			return
		}
		k := edgeKey{from, to}
		if _, ok := weights[k]; !ok {
			order = append(order, k)
		}
		weights[k] += w
	}

	for _, it := range interactions {
		for _, m := range models.UniqueStrings(it.MentionedUsers) {
			add(it.Author, m, MentionWeight)
		}
		if it.InReplyToUser != nil {
			add(it.Author, *it.InReplyToUser, ReplyWeight)
		}
		if it.RetweetedAuthor != nil {
			add(it.Author, *it.RetweetedAuthor, RetweetWeight)
		}
	}

	g := newGraph()
	for _, k := range order {
		if w := weights[k]; w >= float64(minInteractions) {
			g.addEdge(k.from, k.to, w)
		}
	}
	return g
}

func (g *Graph) NodeCount() int { return len(g.names) }

func (g *Graph) EdgeCount() int { return g.edges }

func (g *Graph) Empty() bool { return g == nil || len(g.names) == 0 }

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.names...)
}

func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Weight returns the edge weight from -> to, or 0 when there is no edge.
func (g *Graph) Weight(from, to string) float64 {
	u, ok := g.index[from]
	if !ok {
		return 0
	}
	v, ok := g.index[to]
	if !ok {
		return 0
	}
	for _, e := range g.out[u] {
		if e.to == v {
			return e.weight
		}
	}
	return 0
}

// Edges calls fn for each edge in insertion order of its source node.
func (g *Graph) Edges(fn func(from, to string, weight float64)) {
	for u, es := range g.out {
		for _, e := range es {
			fn(g.names[u], g.names[e.to], e.weight)
		}
	}
}

func (g *Graph) inDegree(i int) int  { return len(g.in[i]) }
func (g *Graph) outDegree(i int) int { return len(g.out[i]) }

// Density is edges over n(n-1) possible directed edges.
func (g *Graph) Density() float64 {
	n := g.NodeCount()
	if n < 2 {
		return 0
	}
	return float64(g.edges) / float64(n*(n-1))
}

func (g *Graph) reach(start int, reverse bool) int {
	adj := g.out
	if reverse {
		adj = g.in
	}
	seen := make([]bool, g.NodeCount())
	seen[start] = true
	queue := []int{start}
	count := 1
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range adj[u] {
			if !seen[e.to] {
				seen[e.to] = true
				count++
				queue = append(queue, e.to)
			}
		}
	}
	return count
}

// StronglyConnected reports whether every node reaches every other node.
func (g *Graph) StronglyConnected() bool {
	n := g.NodeCount()
	if n == 0 {
		return false
	}
	return g.reach(0, false) == n && g.reach(0, true) == n
}

// undirected returns the symmetric projection with weights summed across both directions.
func (g *Graph) undirected() []map[int]float64 {
	adj := make([]map[int]float64, g.NodeCount())
	for i := range adj {
		adj[i] = map[int]float64{}
	}
	for u, es := range g.out {
		for _, e := range es {
			adj[u][e.to] += e.weight
			adj[e.to][u] += e.weight
		}
	}
	return adj
}

// neighbors lists undirected neighbors of u in insertion order.
func (g *Graph) neighbors(u int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(g.out[u])+len(g.in[u]))
	for _, e := range g.out[u] {
		if !seen[e.to] {
			seen[e.to] = true
			out = append(out, e.to)
		}
	}
	for _, e := range g.in[u] {
		if !seen[e.to] {
			seen[e.to] = true
			out = append(out, e.to)
		}
	}
	return out
}

// WeakComponents labels nodes by weakly connected component, numbering
// components in order of their first node.
func (g *Graph) WeakComponents() []int {
	n := g.NodeCount()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	for s := 0; s < n; s++ {
		if labels[s] >= 0 {
			continue
		}
		labels[s] = next
		queue := []int{s}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range g.neighbors(u) {
				if labels[v] < 0 {
					labels[v] = next
					queue = append(queue, v)
				}
			}
		}
		next++
	}
	return labels
}
