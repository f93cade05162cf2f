// Package insights turns an aggregated analysis result into short,
// rule-based findings.
package insights

import (
	"fmt"
	"strings"

	"social-insights/internal/models"
)

const (
	CategoryCoverage   = "coverage"
	CategorySentiment  = "sentiment"
	CategoryEngagement = "engagement"
	CategoryInfluence  = "influence"
	CategoryNetwork    = "network"
	CategoryContent    = "content"
	CategoryTiming     = "timing"
	CategoryQuality    = "quality"

	SeverityInfo      = "info"
	SeverityHighlight = "highlight"
	SeverityWarning   = "warning"
)

// Rule thresholds.
const (
	DominantSentimentRatio = 0.5
	FragmentedCommunities  = 3
)

type rule func(r *models.AnalysisResult) []models.Insight

var rules = []rule{
	dimensionErrors,
	dominantSentiment,
	viralPosts,
	keyOpinionLeaders,
	risingInfluencers,
	fragmentedNetwork,
	topInfluencer,
	bestContent,
	bestTiming,
	topTopics,
}

// Generate applies every rule in order. A result with no interactions yields
// a single coverage insight.
func Generate(r *models.AnalysisResult) []models.Insight {
	if r == nil {
		return nil
	}
	if r.InteractionCount == 0 {
		return []models.Insight{{
			Category: CategoryCoverage,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("No interactions found for %s in the last %d days", r.CompanyDomain, r.DaysBack),
		}}
	}

	out := make([]models.Insight, 0, len(rules))
	for _, apply := range rules {
		out = append(out, apply(r)...)
	}
	return out
}

func one(category, severity string, metric float64, format string, args ...interface{}) []models.Insight {
	return []models.Insight{{
		Category: category,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Metric:   metric,
	}}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func dimensionErrors(r *models.AnalysisResult) []models.Insight {
	if len(r.Errors) == 0 {
		return nil
	}
	dims := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		dims[i] = e.Dimension
	}
	return one(CategoryQuality, SeverityWarning, float64(len(r.Errors)),
		"%s failed and %s missing from this report: %s",
		plural(len(r.Errors), "analysis dimension"), isAre(len(r.Errors)), strings.Join(dims, ", "))
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func dominantSentiment(r *models.AnalysisResult) []models.Insight {
	s := r.Sentiment
	if s == nil || s.Classified == 0 || s.DominantRatio <= DominantSentimentRatio {
		return nil
	}
	severity := SeverityInfo
	switch s.DominantLabel {
	case "negative":
		severity = SeverityWarning
	case "positive":
		severity = SeverityHighlight
	}
	return one(CategorySentiment, severity, s.DominantRatio,
		"Sentiment is predominantly %s (%.0f%% of %d classified posts)",
		s.DominantLabel, s.DominantRatio*100, s.Classified)
}

func viralPosts(r *models.AnalysisResult) []models.Insight {
	if r.Engagement == nil || len(r.Engagement.ViralPosts) == 0 {
		return nil
	}
	top := r.Engagement.ViralPosts[0]
	return one(CategoryEngagement, SeverityHighlight, float64(len(r.Engagement.ViralPosts)),
		"%s detected; top post by @%s reached %d engagements (viral score %.1f)",
		plural(len(r.Engagement.ViralPosts), "viral post"), top.Author, top.TotalEngagement, top.ViralScore)
}

func keyOpinionLeaders(r *models.AnalysisResult) []models.Insight {
	if len(r.KOLs) == 0 {
		return nil
	}
	top := r.KOLs[0]
	return one(CategoryInfluence, SeverityHighlight, float64(len(r.KOLs)),
		"%s identified; most influential is @%s (score %.1f, %s)",
		plural(len(r.KOLs), "key opinion leader"), top.Username, top.InfluenceScore, top.PrimaryDomain)
}

func risingInfluencers(r *models.AnalysisResult) []models.Insight {
	if len(r.RisingInfluencers) == 0 {
		return nil
	}
	top := r.RisingInfluencers[0]
	return one(CategoryInfluence, SeverityInfo, top.GrowthRate,
		"%s; fastest growing is @%s (+%.0f%% followers)",
		plural(len(r.RisingInfluencers), "rising influencer"), top.Username, top.GrowthRate)
}

func fragmentedNetwork(r *models.AnalysisResult) []models.Insight {
	if r.Network == nil || r.Network.CommunityCount <= FragmentedCommunities {
		return nil
	}
	return one(CategoryNetwork, SeverityInfo, float64(r.Network.CommunityCount),
		"Conversation is fragmented across %d communities", r.Network.CommunityCount)
}

func topInfluencer(r *models.AnalysisResult) []models.Insight {
	if r.Network == nil || len(r.Network.TopInfluencers) == 0 {
		return nil
	}
	top := r.Network.TopInfluencers[0]
	msg := fmt.Sprintf("Most central account in the conversation is @%s (composite %.1f)", top.Username, top.CompositeScore)
	if r.Network.FlowSource == top.Username && r.Network.FlowReach > 0 {
		msg += fmt.Sprintf(", reaching %d accounts", r.Network.FlowReach)
	}
	return []models.Insight{{Category: CategoryNetwork, Severity: SeverityInfo, Message: msg, Metric: top.CompositeScore}}
}

func bestContent(r *models.AnalysisResult) []models.Insight {
	e := r.Engagement
	if e == nil || e.BestContentType == "" {
		return nil
	}
	stats := e.ContentTypes[e.BestContentType]
	out := one(CategoryContent, SeverityInfo, stats.Mean,
		"Best performing content type is %s (mean engagement %.1f over %d posts)",
		strings.ReplaceAll(e.BestContentType, "_", " "), stats.Mean, stats.Count)
	for _, rec := range e.ContentRecommendations {
		out = append(out, models.Insight{Category: CategoryContent, Severity: SeverityInfo, Message: rec})
	}
	return out
}

func bestTiming(r *models.AnalysisResult) []models.Insight {
	if r.Engagement == nil || len(r.Engagement.TimingRecommendations) == 0 {
		return nil
	}
	out := make([]models.Insight, 0, len(r.Engagement.TimingRecommendations))
	for _, rec := range r.Engagement.TimingRecommendations {
		out = append(out, models.Insight{Category: CategoryTiming, Severity: SeverityInfo, Message: rec})
	}
	return out
}

func topTopics(r *models.AnalysisResult) []models.Insight {
	e := r.Entities
	if e == nil || len(e.TopEntities) == 0 {
		return nil
	}
	top := e.TopEntities[0]
	msg := fmt.Sprintf("Most mentioned entity is %s (%s, %d mentions)", top.Text, top.Type, top.Count)
	if len(e.Topics) > 0 {
		msg += "; topics: " + strings.Join(e.Topics, ", ")
	}
	return []models.Insight{{Category: CategoryContent, Severity: SeverityInfo, Message: msg, Metric: float64(top.Count)}}
}
