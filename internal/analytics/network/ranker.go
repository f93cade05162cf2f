package network

import (
	"social-insights/internal/common/logger"
	"social-insights/internal/models"
)

type Config struct {
	MinInteractions      int
	BetweennessNodeLimit int
	TopInfluencers       int
	MaxFlowDepth         int
}

func DefaultConfig() Config {
	return Config{
		MinInteractions:      DefaultMinInteractions,
		BetweennessNodeLimit: DefaultBetweennessNodeLimit,
		TopInfluencers:       10,
		MaxFlowDepth:         3,
	}
}

// Ranker builds the interaction graph and summarises it into NetworkStats.
type Ranker struct {
	cfg       Config
	analytics GraphAnalytics
	logger    logger.Logger
}

func NewRanker(cfg Config, analytics GraphAnalytics, log logger.Logger) *Ranker {
	if analytics == nil {
		analytics = NativeAnalytics{}
	}
	return &Ranker{
		cfg:       cfg,
		analytics: analytics,
		logger:    log.WithFields(map[string]interface{}{"component": "network", "backend": analytics.Name()}),
	}
}

// Analyze builds the graph from batch and ranks it. An empty graph yields
// zero counts and no influencers.
func (r *Ranker) Analyze(batch []models.Interaction) *models.NetworkStats {
	g := Build(batch, r.cfg.MinInteractions)
	stats := &models.NetworkStats{
		NodeCount:       g.NodeCount(),
		EdgeCount:       g.EdgeCount(),
		CommunityMethod: MethodWeakComponents,
		TopInfluencers:  []models.Influencer{},
	}
	if g.Empty() {
		r.logger.Debug("interaction graph is empty", map[string]interface{}{"interactions": len(batch)})
		return stats
	}

	stats.Density = g.Density()
	stats.StronglyConnected = g.StronglyConnected()
	stats.ComponentCount = countLabels(g.WeakComponents())

	profiles := ComputeCentrality(g, r.analytics, CentralityOptions{BetweennessNodeLimit: r.cfg.BetweennessNodeLimit})
	stats.BetweennessComputed = len(profiles) > 0 && profiles[0].Betweenness != nil
	stats.TopInfluencers = IdentifyInfluencers(profiles, r.cfg.TopInfluencers)

	communities, err := DetectCommunities(g, r.analytics)
	if err != nil {
		r.logger.Warn("community detection fell back to components", map[string]interface{}{"error": err})
	}
	stats.CommunityMethod = communities.Method
	stats.CommunityCount = communities.Count
	stats.CommunitySizes = communities.Sizes()

	if len(stats.TopInfluencers) > 0 {
		source := stats.TopInfluencers[0].Username
		if flow, err := AnalyzeInformationFlow(g, source, r.cfg.MaxFlowDepth); err == nil {
			stats.FlowSource = source
			stats.FlowReach = flow.TotalReach
			stats.FlowLevels = make(map[int]int, len(flow.Levels))
			for depth, nodes := range flow.Levels {
				stats.FlowLevels[depth] = len(nodes)
			}
		}
	}

	r.logger.Debug("network analyzed", map[string]interface{}{
		"nodes":       stats.NodeCount,
		"edges":       stats.EdgeCount,
		"communities": stats.CommunityCount,
	})
	return stats
}

func countLabels(labels []int) int {
	seen := map[int]struct{}{}
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}
