package network

import "sort"

// louvain partitions a symmetric weighted adjacency by greedy modularity
// optimisation with aggregation. Nodes are visited in index order and ties
// keep the current community, so the result is deterministic.
func louvain(adj []map[int]float64) []int {
	n := len(adj)
	membership := make([]int, n)
	for i := range membership {
		membership[i] = i
	}

	cur := adj
	for {
		part, moved := louvainLevel(cur)
		if !moved {
			break
		}
		part, k := compact(part)
		for i := range membership {
			membership[i] = part[membership[i]]
		}
		if k == len(cur) {
			break
		}
		cur = aggregate(cur, part, k)
	}
	return canonical(membership)
}

func degree(adj []map[int]float64, i int) float64 {
	var k float64
	for j, w := range adj[i] {
		k += w
		if j == i {
			k += w
		}
	}
	return k
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func louvainLevel(adj []map[int]float64) ([]int, bool) {
	n := len(adj)
	comm := make([]int, n)
	k := make([]float64, n)
	tot := make([]float64, n)
	var m2 float64
	for i := 0; i < n; i++ {
		comm[i] = i
		k[i] = degree(adj, i)
		tot[i] = k[i]
		m2 += k[i]
	}
	if m2 == 0 {
		return comm, false
	}

	movedAny := false
	for {
		moved := false
		for i := 0; i < n; i++ {
			ci := comm[i]
			tot[ci] -= k[i]

			links := map[int]float64{}
			for _, j := range sortedKeys(adj[i]) {
				if j != i {
					links[comm[j]] += adj[i][j]
				}
			}

			best := ci
			bestGain := links[ci] - tot[ci]*k[i]/m2
			for _, c := range sortedKeys(links) {
				gain := links[c] - tot[c]*k[i]/m2
				if gain > bestGain+1e-12 {
					best, bestGain = c, gain
				}
			}

			tot[best] += k[i]
			if best != ci {
				comm[i] = best
				moved = true
				movedAny = true
			}
		}
		if !moved {
			break
		}
	}
	return comm, movedAny
}

// compact renumbers labels to 0..k-1 in order of first appearance.
func compact(labels []int) ([]int, int) {
	ids := map[int]int{}
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out, len(ids)
}

func aggregate(adj []map[int]float64, part []int, k int) []map[int]float64 {
	next := make([]map[int]float64, k)
	for i := range next {
		next[i] = map[int]float64{}
	}
	for u := range adj {
		for _, v := range sortedKeys(adj[u]) {
			w := adj[u][v]
			cu, cv := part[u], part[v]
			switch {
			case u == v:
				next[cu][cu] += w
			case cu == cv:
				// each internal pair is visited from both ends
				next[cu][cu] += w / 2
			default:
				next[cu][cv] += w
			}
		}
	}
	return next
}

func canonical(labels []int) []int {
	out, _ := compact(labels)
	return out
}
