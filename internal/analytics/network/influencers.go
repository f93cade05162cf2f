package network

import (
	"sort"

	"social-insights/internal/models"
)

// Composite influence weights.
const (
	weightPageRank    = 0.40
	weightInDegree    = 0.20
	weightOutDegree   = 0.10
	weightBetweenness = 0.20
	weightEigenvector = 0.10
)

func optional(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func maxOf(profiles []CentralityProfile, metric func(CentralityProfile) float64) float64 {
	var m float64
	for _, p := range profiles {
		if v := metric(p); v > m {
			m = v
		}
	}
	return m
}

// IdentifyInfluencers ranks nodes by a weighted sum of max-normalised
// centralities scaled to 0..100. Missing metrics contribute nothing. Ties keep
// insertion order. topN <= 0 returns every node.
func IdentifyInfluencers(profiles []CentralityProfile, topN int) []models.Influencer {
	if len(profiles) == 0 {
		return nil
	}

	type metric struct {
		weight float64
		get    func(CentralityProfile) float64
	}
	metrics := []metric{
		{weightPageRank, func(p CentralityProfile) float64 { return p.PageRank }},
		{weightInDegree, func(p CentralityProfile) float64 { return p.InDegree }},
		{weightOutDegree, func(p CentralityProfile) float64 { return p.OutDegree }},
		{weightBetweenness, func(p CentralityProfile) float64 { return optional(p.Betweenness) }},
		{weightEigenvector, func(p CentralityProfile) float64 { return optional(p.Eigenvector) }},
	}
	maxima := make([]float64, len(metrics))
	for i, m := range metrics {
		maxima[i] = maxOf(profiles, m.get)
	}

	out := make([]models.Influencer, len(profiles))
	for i, p := range profiles {
		var score float64
		for j, m := range metrics {
			if maxima[j] > 0 {
				score += m.get(p) / maxima[j] * m.weight
			}
		}
		out[i] = models.Influencer{
			Username:       p.Node,
			CompositeScore: score * 100,
			PageRank:       p.PageRank,
			InDegree:       p.InDegree,
			OutDegree:      p.OutDegree,
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CompositeScore > out[b].CompositeScore
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
