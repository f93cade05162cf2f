package network

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/community"
	gonet "gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// GonumAnalytics delegates to gonum's graph packages. Node IDs are the
// Graph's node indices so results map straight back to positions.
type GonumAnalytics struct{}

func (GonumAnalytics) Name() string { return "gonum" }

func (g *Graph) weightedDirected() *simple.WeightedDirectedGraph {
	wg := simple.NewWeightedDirectedGraph(0, 0)
	for i := range g.names {
		wg.AddNode(simple.Node(int64(i)))
	}
	for u, es := range g.out {
		for _, e := range es {
			wg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(int64(u)), T: simple.Node(int64(e.to)), W: e.weight})
		}
	}
	return wg
}

// unweightedDirected copies the topology; reversed flips every edge.
func (g *Graph) unweightedDirected(reversed bool) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := range g.names {
		dg.AddNode(simple.Node(int64(i)))
	}
	for u, es := range g.out {
		for _, e := range es {
			from, to := simple.Node(int64(u)), simple.Node(int64(e.to))
			if reversed {
				from, to = to, from
			}
			dg.SetEdge(simple.Edge{F: from, T: to})
		}
	}
	return dg
}

func (g *Graph) weightedUndirected() *simple.WeightedUndirectedGraph {
	ug := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range g.names {
		ug.AddNode(simple.Node(int64(i)))
	}
	for u, nbrs := range g.undirected() {
		for _, v := range sortedKeys(nbrs) {
			if v > u {
				ug.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(int64(u)), T: simple.Node(int64(v)), W: nbrs[v]})
			}
		}
	}
	return ug
}

func indexed(n int, m map[int64]float64) []float64 {
	out := make([]float64, n)
	for id, v := range m {
		out[id] = v
	}
	return out
}

func (GonumAnalytics) PageRank(g *Graph) []float64 {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}
	return indexed(n, gonet.PageRank(g.weightedDirected(), Damping, pageRankTol))
}

func (GonumAnalytics) Betweenness(g *Graph) []float64 {
	return indexed(g.NodeCount(), gonet.Betweenness(g.unweightedDirected(false)))
}

// Eigenvector runs the same shifted power iteration as NativeAnalytics on a
// dense adjacency matrix.
func (GonumAnalytics) Eigenvector(g *Graph) ([]float64, error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, ErrEmptyGraph
	}

	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	for u, es := range g.out {
		for _, e := range es {
			m.Set(e.to, u, m.At(e.to, u)+e.weight)
		}
	}

	x := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.SetVec(i, 1/float64(n))
	}
	next := mat.NewVecDense(n, nil)
	for iter := 0; iter < maxEigenIter; iter++ {
		next.MulVec(m, x)
		norm := mat.Norm(next, 2)
		if norm == 0 {
			return nil, ErrEigenvectorNotConverged
		}
		next.ScaleVec(1/norm, next)

		var diff float64
		for i := 0; i < n; i++ {
			diff += math.Abs(next.AtVec(i) - x.AtVec(i))
		}
		x, next = next, x
		if diff < float64(n)*eigenTol {
			return mat.Col(nil, 0, x), nil
		}
	}
	return nil, ErrEigenvectorNotConverged
}

func (GonumAnalytics) Closeness(g *Graph) []float64 {
	n := g.NodeCount()
	if n < 2 {
		return make([]float64, n)
	}
	// gonum sums outgoing distances; reversing yields d(u, v) into each node.
	dg := g.unweightedDirected(true)
	c := indexed(n, gonet.Closeness(dg, path.DijkstraAllPaths(dg)))
	for i := range c {
		c[i] *= float64(n - 1)
	}
	return c
}

// Communities uses gonum's Louvain with a fixed seed.
func (GonumAnalytics) Communities(g *Graph) (labels []int, err error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	defer func() {
		if r := recover(); r != nil {
			labels, err = nil, fmt.Errorf("gonum modularize: %v", r)
		}
	}()

	reduced := community.Modularize(g.weightedUndirected(), 1, rand.NewPCG(1, 2))
	labels = make([]int, n)
	for c, members := range reduced.Communities() {
		for _, node := range members {
			labels[node.ID()] = c
		}
	}
	return canonical(labels), nil
}
