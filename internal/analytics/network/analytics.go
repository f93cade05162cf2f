package network

import (
	"errors"
	"fmt"
	"math"
)

const (
	Damping      = 0.85
	pageRankTol  = 1e-6
	maxPageRank  = 100
	eigenTol     = 1e-6
	maxEigenIter = 100
)

var (
	ErrEigenvectorNotConverged = errors.New("EIGENVECTOR_NOT_CONVERGED")
	ErrEmptyGraph              = errors.New("EMPTY_GRAPH")
)

// GraphAnalytics is the capability behind centrality and community detection.
// Every slice result is indexed by node position in g.Nodes().
type GraphAnalytics interface {
	Name() string
	PageRank(g *Graph) []float64
	// Betweenness returns raw directed unweighted betweenness.
	Betweenness(g *Graph) []float64
	Eigenvector(g *Graph) ([]float64, error)
	// Closeness uses incoming hop distances: (n-1) / sum of d(u, v).
	Closeness(g *Graph) []float64
	// Communities partitions the undirected projection; labels need not be canonical.
	Communities(g *Graph) ([]int, error)
}

// NewAnalytics returns the backend named by name ("native" or "gonum").
func NewAnalytics(name string) (GraphAnalytics, error) {
	switch name {
	case "", "native":
		return NativeAnalytics{}, nil
	case "gonum":
		return GonumAnalytics{}, nil
	default:
		return nil, fmt.Errorf("unknown graph backend %q", name)
	}
}

// NativeAnalytics implements the algorithms directly over Graph.
type NativeAnalytics struct{}

func (NativeAnalytics) Name() string { return "native" }

// PageRank runs weighted power iteration. Dangling mass is spread uniformly.
func (NativeAnalytics) PageRank(g *Graph) []float64 {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}

	outWeight := make([]float64, n)
	for u, es := range g.out {
		for _, e := range es {
			outWeight[u] += e.weight
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	next := make([]float64, n)

	for iter := 0; iter < maxPageRank; iter++ {
		var dangling float64
		for u := 0; u < n; u++ {
			if outWeight[u] == 0 {
				dangling += rank[u]
			}
		}
		base := (1-Damping)/float64(n) + Damping*dangling/float64(n)
		for i := range next {
			next[i] = base
		}
		for u, es := range g.out {
			if outWeight[u] == 0 {
				continue
			}
			share := Damping * rank[u] / outWeight[u]
			for _, e := range es {
				next[e.to] += share * e.weight
			}
		}

		var diff float64
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if diff < float64(n)*pageRankTol {
			break
		}
	}
	return rank
}

// Betweenness is Brandes' algorithm over unweighted out-edges.
func (NativeAnalytics) Betweenness(g *Graph) []float64 {
	n := g.NodeCount()
	cb := make([]float64, n)

	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)

	for s := 0; s < n; s++ {
		for i := 0; i < n; i++ {
			sigma[i], dist[i], delta[i] = 0, -1, 0
			preds[i] = preds[i][:0]
		}
		sigma[s], dist[s] = 1, 0

		stack := make([]int, 0, n)
		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, e := range g.out[v] {
				w := e.to
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}
	return cb
}

// Eigenvector iterates x <- (I + A^T) x with L2 normalisation, so a node's
// score grows with the scores of nodes pointing at it.
func (NativeAnalytics) Eigenvector(g *Graph) ([]float64, error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, ErrEmptyGraph
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}

	for iter := 0; iter < maxEigenIter; iter++ {
		last := append([]float64(nil), x...)
		for u, es := range g.out {
			for _, e := range es {
				x[e.to] += last[u] * e.weight
			}
		}

		var norm float64
		for _, v := range x {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return nil, ErrEigenvectorNotConverged
		}

		var diff float64
		for i := range x {
			x[i] /= norm
			diff += math.Abs(x[i] - last[i])
		}
		if diff < float64(n)*eigenTol {
			return x, nil
		}
	}
	return nil, ErrEigenvectorNotConverged
}

// Closeness uses BFS over in-edges. Unreachable nodes are not counted.
func (NativeAnalytics) Closeness(g *Graph) []float64 {
	n := g.NodeCount()
	c := make([]float64, n)
	if n < 2 {
		return c
	}
	for v := 0; v < n; v++ {
		dist := make([]int, n)
		for i := range dist {
			dist[i] = -1
		}
		dist[v] = 0
		queue := []int{v}
		total, reached := 0, 0
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, e := range g.in[u] {
				if dist[e.to] < 0 {
					dist[e.to] = dist[u] + 1
					total += dist[e.to]
					reached++
					queue = append(queue, e.to)
				}
			}
		}
		if total > 0 {
			c[v] = float64(reached) / float64(total) * float64(reached) / float64(n-1)
		}
	}
	return c
}

// Communities runs Louvain modularity optimisation on the undirected projection.
func (NativeAnalytics) Communities(g *Graph) ([]int, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	return louvain(g.undirected()), nil
}
