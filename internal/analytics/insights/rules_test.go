package insights

import (
	"testing"

	"social-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		CompanyDomain:    "acme.com",
		DaysBack:         7,
		InteractionCount: 120,
		Sentiment: &models.SentimentSummary{
			Classified:    100,
			DominantLabel: "negative",
			DominantRatio: 0.62,
		},
		Engagement: &models.EngagementStats{
			ViralPosts:            []models.ViralPost{{Author: "loud", TotalEngagement: 25000, ViralScore: 88.5}},
			BestContentType:       "with_media",
			ContentTypes:          map[string]models.BucketStats{"with_media": {Count: 12, Mean: 340}},
			TimingRecommendations: []string{"Best hour to post: 14:00 UTC (avg engagement 320.0)"},
		},
		Network: &models.NetworkStats{
			CommunityCount: 5,
			TopInfluencers: []models.Influencer{{Username: "hub", CompositeScore: 91.2}},
			FlowSource:     "hub",
			FlowReach:      17,
		},
		KOLs:              []models.KOLProfile{{Username: "drgenome", InfluenceScore: 93.5, PrimaryDomain: "biotech"}},
		RisingInfluencers: []models.RisingInfluencer{{Username: "newbie", GrowthRate: 150}},
		Entities: &models.EntitySummary{
			TopEntities: []models.EntityCount{{Text: "Acme", Type: "ORG", Count: 40}},
			Topics:      []string{"companies"},
		},
	}
}

func byCategory(ins []models.Insight, category string) []models.Insight {
	var out []models.Insight
	for _, i := range ins {
		if i.Category == category {
			out = append(out, i)
		}
	}
	return out
}

func TestGenerate_AllRulesFire(t *testing.T) {
	ins := Generate(fullResult())

	sentiment := byCategory(ins, CategorySentiment)
	require.Len(t, sentiment, 1)
	assert.Equal(t, SeverityWarning, sentiment[0].Severity)
	assert.Equal(t, "Sentiment is predominantly negative (62% of 100 classified posts)", sentiment[0].Message)

	engagement := byCategory(ins, CategoryEngagement)
	require.Len(t, engagement, 1)
	assert.Contains(t, engagement[0].Message, "1 viral post detected")

	influence := byCategory(ins, CategoryInfluence)
	require.Len(t, influence, 2)
	assert.Contains(t, influence[0].Message, "@drgenome")
	assert.Contains(t, influence[1].Message, "+150% followers")

	network := byCategory(ins, CategoryNetwork)
	require.Len(t, network, 2)
	assert.Equal(t, "Conversation is fragmented across 5 communities", network[0].Message)
	assert.Contains(t, network[1].Message, "reaching 17 accounts")

	assert.Len(t, byCategory(ins, CategoryTiming), 1)
	assert.Len(t, byCategory(ins, CategoryContent), 2)
	assert.Empty(t, byCategory(ins, CategoryQuality))
}

func TestGenerate_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *models.AnalysisResult)
		category string
		want     int
	}{
		{
			name:     "sentiment at exactly half is not dominant",
			mutate:   func(r *models.AnalysisResult) { r.Sentiment.DominantRatio = 0.5 },
			category: CategorySentiment,
			want:     0,
		},
		{
			name:     "three communities is not fragmented",
			mutate:   func(r *models.AnalysisResult) { r.Network.CommunityCount = 3; r.Network.TopInfluencers = nil },
			category: CategoryNetwork,
			want:     0,
		},
		{
			name:     "no viral posts",
			mutate:   func(r *models.AnalysisResult) { r.Engagement.ViralPosts = nil },
			category: CategoryEngagement,
			want:     0,
		},
		{
			name:     "no kols or rising accounts",
			mutate:   func(r *models.AnalysisResult) { r.KOLs = nil; r.RisingInfluencers = nil },
			category: CategoryInfluence,
			want:     0,
		},
		{
			name:     "missing dimensions are skipped",
			mutate:   func(r *models.AnalysisResult) { r.Sentiment = nil; r.Network = nil },
			category: CategoryNetwork,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fullResult()
			tt.mutate(r)
			assert.Len(t, byCategory(Generate(r), tt.category), tt.want)
		})
	}
}

func TestGenerate_DimensionErrors(t *testing.T) {
	r := fullResult()
	r.Errors = []models.DimensionError{{Dimension: "sentiment"}, {Dimension: "entities"}}

	quality := byCategory(Generate(r), CategoryQuality)

	require.Len(t, quality, 1)
	assert.Equal(t, "2 analysis dimensions failed and are missing from this report: sentiment, entities", quality[0].Message)
}

func TestGenerate_EmptyInput(t *testing.T) {
	ins := Generate(&models.AnalysisResult{CompanyDomain: "quiet.io", DaysBack: 30})

	require.Len(t, ins, 1)
	assert.Equal(t, CategoryCoverage, ins[0].Category)
	assert.Equal(t, "No interactions found for quiet.io in the last 30 days", ins[0].Message)
}

func TestGenerate_Nil(t *testing.T) {
	assert.Nil(t, Generate(nil))
}
