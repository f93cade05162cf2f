// internal/models/analysis.go
package models

import "time"

// RunStatus is the terminal or current state of an analysis run.
type RunStatus string

const (
	StatusFetching            RunStatus = "FETCHING"
	StatusAnalyzingDimensions RunStatus = "ANALYZING_DIMENSIONS"
	StatusPersisting          RunStatus = "PERSISTING"
	StatusDone                RunStatus = "DONE"
	StatusPartialFailure      RunStatus = "PARTIAL_FAILURE"
	StatusFailed              RunStatus = "FAILED"
)

// Dimension names used in DimensionError and metrics labels.
const (
	DimensionSentiment  = "sentiment"
	DimensionEntities   = "entities"
	DimensionNetwork    = "network"
	DimensionEngagement = "engagement"
	DimensionKOL        = "kol"
)

// AnalysisResult bundles every dimension of one AnalyzeCompany call.
type AnalysisResult struct {
	RunID             string             `json:"runId"`
	CompanyDomain     string             `json:"companyDomain"`
	RunAt             time.Time          `json:"runAt"`
	DaysBack          int                `json:"daysBack"`
	IncludeMentions   bool               `json:"includeMentions"`
	Status            RunStatus          `json:"status"`
	InteractionCount  int                `json:"interactionCount"`
	MentionCount      int                `json:"mentionCount"`
	Sentiment         *SentimentSummary  `json:"sentiment,omitempty"`
	Entities          *EntitySummary     `json:"entities,omitempty"`
	Network           *NetworkStats      `json:"network,omitempty"`
	Engagement        *EngagementStats   `json:"engagement,omitempty"`
	KOLs              []KOLProfile       `json:"kols"`
	RisingInfluencers []RisingInfluencer `json:"risingInfluencers,omitempty"`
	Insights          []Insight          `json:"insights"`
	Errors            []DimensionError   `json:"errors,omitempty"`
}

// DimensionError records a dimension that failed without aborting the run.
type DimensionError struct {
	Dimension string `json:"dimension"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Insight is one rule-generated textual finding.
type Insight struct {
	Category string  `json:"category"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Metric   float64 `json:"metric,omitempty"`
}

// SentimentSummary aggregates classifier output over a batch.
type SentimentSummary struct {
	Total         int                `json:"total"`
	Classified    int                `json:"classified"`
	Counts        map[string]int     `json:"counts"`
	Ratios        map[string]float64 `json:"ratios"`
	MeanScore     float64            `json:"meanScore"`
	DominantLabel string             `json:"dominantLabel"`
	DominantRatio float64            `json:"dominantRatio"`
}

// EntityCount is an entity and how often it appeared.
type EntityCount struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// EntitySummary aggregates extractor output over a batch.
type EntitySummary struct {
	TotalEntities int            `json:"totalEntities"`
	TopEntities   []EntityCount  `json:"topEntities"`
	TypeCounts    map[string]int `json:"typeCounts"`
	Topics        []string       `json:"topics"`
}

// KOLProfile is an author that passed the follower floor and influence threshold.
type KOLProfile struct {
	Username        string             `json:"username"`
	InfluenceScore  float64            `json:"influenceScore"`
	PrimaryDomain   string             `json:"primaryDomain"`
	ExpertiseScores map[string]float64 `json:"expertiseScores"`
	EngagementRate  float64            `json:"engagementRate"`
	Verified        bool               `json:"verified"`
	Followers       int                `json:"followers"`
}

// RisingInfluencer is an author whose follower count grew quickly over the lookback window.
type RisingInfluencer struct {
	Username            string  `json:"username"`
	CurrentFollowers    int     `json:"currentFollowers"`
	HistoricalFollowers int     `json:"historicalFollowers"`
	GrowthRate          float64 `json:"growthRate"`
}

// Influencer is a node ranked by the composite centrality score.
type Influencer struct {
	Username       string  `json:"username"`
	CompositeScore float64 `json:"compositeScore"`
	PageRank       float64 `json:"pagerank"`
	InDegree       float64 `json:"inDegree"`
	OutDegree      float64 `json:"outDegree"`
}

// NetworkStats summarises the interaction graph.
type NetworkStats struct {
	NodeCount           int          `json:"nodeCount"`
	EdgeCount           int          `json:"edgeCount"`
	Density             float64      `json:"density"`
	StronglyConnected   bool         `json:"stronglyConnected"`
	ComponentCount      int          `json:"componentCount"`
	CommunityMethod     string       `json:"communityMethod"`
	CommunityCount      int          `json:"communityCount"`
	CommunitySizes      []int        `json:"communitySizes,omitempty"`
	BetweennessComputed bool         `json:"betweennessComputed"`
	TopInfluencers      []Influencer `json:"topInfluencers"`
	FlowSource          string       `json:"flowSource,omitempty"`
	FlowReach           int          `json:"flowReach"`
	FlowLevels          map[int]int  `json:"flowLevels,omitempty"`
}

// ViralPost is a post that passed both virality thresholds.
type ViralPost struct {
	InteractionID   string    `json:"interactionId"`
	Author          string    `json:"author"`
	CreatedAt       time.Time `json:"createdAt"`
	TotalEngagement int       `json:"totalEngagement"`
	ViralScore      float64   `json:"viralScore"`
	Velocity        float64   `json:"velocity"`
}

// BucketStats holds engagement statistics for one content category.
type BucketStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
	Total  int     `json:"total"`
}

// EngagementStats bundles baseline, virality, timing and content findings.
type EngagementStats struct {
	Baseline               Baseline               `json:"baseline"`
	MeanEngagementRate     float64                `json:"meanEngagementRate"`
	ViralPosts             []ViralPost            `json:"viralPosts"`
	BestHour               *int                   `json:"bestHour,omitempty"`
	BestWeekday            string                 `json:"bestWeekday,omitempty"`
	TimingRecommendations  []string               `json:"timingRecommendations"`
	ContentTypes           map[string]BucketStats `json:"contentTypes"`
	BestContentType        string                 `json:"bestContentType,omitempty"`
	ContentRecommendations []string               `json:"contentRecommendations"`
}

// Baseline is the engagement distribution of a batch.
type Baseline struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	P95    float64 `json:"p95"`
	Count  int     `json:"count"`
}
