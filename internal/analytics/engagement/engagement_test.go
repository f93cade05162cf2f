package engagement

import (
	"testing"
	"time"

	"social-insights/internal/common/logger"
	"social-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)

func post(id string, likes, rts, replies, quotes int, at time.Time) models.Interaction {
	return models.Interaction{
		ID:           id,
		Author:       "author_" + id,
		CreatedAt:    at,
		LikeCount:    likes,
		RetweetCount: rts,
		ReplyCount:   replies,
		QuoteCount:   quotes,
	}
}

// sampleBatch has totals 780, 100 and 155.
func sampleBatch() []models.Interaction {
	return []models.Interaction{
		post("1", 500, 200, 50, 30, fixedNow.Add(-2*time.Hour)),
		post("2", 60, 20, 15, 5, fixedNow.Add(-5*time.Hour)),
		post("3", 100, 30, 20, 5, fixedNow.Add(-26*time.Hour)),
	}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	return NewAnalyzer(DefaultConfig(), logger.NewTestLogger(t), WithClock(func() time.Time { return fixedNow }))
}

func TestEngagementRate(t *testing.T) {
	impressions := 1000
	tests := []struct {
		name     string
		in       models.Interaction
		expected float64
	}{
		{
			name:     "uses provided impressions",
			in:       models.Interaction{LikeCount: 10, RetweetCount: 5, ReplyCount: 2, QuoteCount: 1, Impressions: &impressions},
			expected: 3.0, // (10 + 10 + 6 + 4) / 1000 * 100
		},
		{
			name:     "falls back to ten percent of followers",
			in:       models.Interaction{LikeCount: 300, RetweetCount: 100, AuthorFollowers: 50000},
			expected: 10.0, // 500 / 5000 * 100
		},
		{
			name:     "capped at 100",
			in:       models.Interaction{LikeCount: 5000, AuthorFollowers: 100},
			expected: 100,
		},
		{
			name:     "zero impressions",
			in:       models.Interaction{LikeCount: 50},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EngagementRate(tt.in), 1e-9)
		})
	}
}

func TestEngagementRate_MonotonicAndBounded(t *testing.T) {
	base := models.Interaction{AuthorFollowers: 20000}
	bumps := []func(*models.Interaction){
		func(i *models.Interaction) { i.LikeCount += 7 },
		func(i *models.Interaction) { i.RetweetCount += 7 },
		func(i *models.Interaction) { i.ReplyCount += 7 },
		func(i *models.Interaction) { i.QuoteCount += 7 },
	}

	current := base
	prev := EngagementRate(current)
	for step := 0; step < 200; step++ {
		bumps[step%len(bumps)](&current)
		rate := EngagementRate(current)
		assert.GreaterOrEqual(t, rate, prev)
		assert.GreaterOrEqual(t, rate, 0.0)
		assert.LessOrEqual(t, rate, 100.0)
		prev = rate
	}
	assert.Equal(t, 100.0, prev)
}

func TestComputeBaseline(t *testing.T) {
	b := ComputeBaseline(sampleBatch())

	assert.Equal(t, 3, b.Count)
	assert.InDelta(t, 345.0, b.Mean, 1e-9)
	assert.InDelta(t, 155.0, b.Median, 1e-9)
	assert.InDelta(t, 717.5, b.P95, 1e-9)
	assert.InDelta(t, 308.41, b.StdDev, 0.01)
}

func TestComputeBaseline_EvenMedianAndEmpty(t *testing.T) {
	batch := []models.Interaction{
		post("a", 10, 0, 0, 0, fixedNow),
		post("b", 20, 0, 0, 0, fixedNow),
		post("c", 30, 0, 0, 0, fixedNow),
		post("d", 40, 0, 0, 0, fixedNow),
	}
	assert.InDelta(t, 25.0, ComputeBaseline(batch).Median, 1e-9)
	assert.Equal(t, models.Baseline{}, ComputeBaseline(nil))
}

func TestComputeBaseline_Idempotent(t *testing.T) {
	batch := sampleBatch()
	assert.Equal(t, ComputeBaseline(batch), ComputeBaseline(batch))
}

func TestDetectViral_SampleFixtureHasNoViralPosts(t *testing.T) {
	// The literal rule needs total > mean*100 (34500 here) as well as the floor,
	// so none of 780, 100 or 155 qualifies even though 780 clears the floor.
	a := newTestAnalyzer(t)
	batch := sampleBatch()
	baseline := ComputeBaseline(batch)

	viral := a.DetectViral(batch, baseline)
	assert.Empty(t, viral)

	for _, it := range batch {
		total := it.TotalEngagement()
		qualifies := total >= 100 && float64(total) > baseline.Mean*100
		assert.False(t, qualifies, "post %s", it.ID)
	}
}

func TestDetectViral_LowBaselineTriggers(t *testing.T) {
	a := newTestAnalyzer(t)

	batch := make([]models.Interaction, 0, 201)
	for i := 0; i < 200; i++ {
		batch = append(batch, post("quiet", 0, 0, 0, 0, fixedNow.Add(-time.Hour)))
	}
	hit := post("hit", 600, 200, 150, 50, fixedNow.Add(-4*time.Hour))
	batch = append(batch, hit)

	baseline := ComputeBaseline(batch)
	require.InDelta(t, 1000.0/201, baseline.Mean, 1e-9)

	viral := a.DetectViral(batch, baseline)
	require.Len(t, viral, 1)
	v := viral[0]
	assert.Equal(t, "hit", v.InteractionID)
	assert.Equal(t, 1000, v.TotalEngagement)
	assert.InDelta(t, 250.0, v.Velocity, 1e-9)
	// velocity saturates (30), magnitude saturates (40), quality saturates (30)
	assert.InDelta(t, 100.0, v.ViralScore, 1e-9)
}

func TestDetectViral_FloorIsAbsolute(t *testing.T) {
	a := newTestAnalyzer(t)
	batch := []models.Interaction{post("small", 99, 0, 0, 0, fixedNow)}

	viral := a.DetectViral(batch, models.Baseline{})
	assert.Empty(t, viral, "below the floor even with a zero baseline")
}

func TestDetectViral_RankedByScore(t *testing.T) {
	a := newTestAnalyzer(t)
	batch := []models.Interaction{
		post("slow", 200, 0, 0, 0, fixedNow.Add(-100*time.Hour)),
		post("fast", 200, 0, 40, 10, fixedNow.Add(-1*time.Hour)),
	}

	viral := a.DetectViral(batch, models.Baseline{})
	require.Len(t, viral, 2)
	assert.Equal(t, "fast", viral[0].InteractionID)
	assert.GreaterOrEqual(t, viral[0].ViralScore, viral[1].ViralScore)
	for _, v := range viral {
		assert.GreaterOrEqual(t, v.TotalEngagement, 100)
	}
}

func TestAnalyzeOptimalTiming(t *testing.T) {
	tue := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC) // Tuesday
	batch := []models.Interaction{
		post("1", 100, 0, 0, 0, tue.Add(14*time.Hour)),
		post("2", 300, 0, 0, 0, tue.Add(14*time.Hour+30*time.Minute)),
		post("3", 50, 0, 0, 0, tue.Add(9*time.Hour)),
		post("4", 10, 0, 0, 0, tue.Add(24*time.Hour+9*time.Hour)),
		post("5", 20, 0, 0, 0, tue.Add(24*time.Hour+20*time.Hour)),
	}

	timing := AnalyzeOptimalTiming(batch, time.UTC)

	require.NotNil(t, timing.BestHour)
	assert.Equal(t, 14, *timing.BestHour)
	assert.InDelta(t, 200.0, timing.HourlyMean[14], 1e-9)
	assert.InDelta(t, 30.0, timing.HourlyMean[9], 1e-9)

	require.NotNil(t, timing.BestWeekday)
	assert.Equal(t, time.Tuesday, *timing.BestWeekday)

	require.Len(t, timing.Slots, 1, "only Tuesday 14:00 has two samples")
	assert.Equal(t, time.Tuesday, timing.Slots[0].Weekday)
	assert.Equal(t, 14, timing.Slots[0].Hour)

	require.Len(t, timing.Recommendations, 3)
	assert.Contains(t, timing.Recommendations[0], "14:00")
	assert.Contains(t, timing.Recommendations[1], "Tuesday")
	assert.Contains(t, timing.Recommendations[2], "Tuesday at 14:00")
}

func TestAnalyzeOptimalTiming_TiesPickEarliestHour(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	batch := []models.Interaction{
		post("late", 50, 0, 0, 0, day.Add(20*time.Hour)),
		post("early", 50, 0, 0, 0, day.Add(8*time.Hour)),
	}
	timing := AnalyzeOptimalTiming(batch, nil)
	require.NotNil(t, timing.BestHour)
	assert.Equal(t, 8, *timing.BestHour)
}

func TestDominantPeriod(t *testing.T) {
	evening := map[int]float64{18: 90, 19: 80, 20: 70, 9: 60, 13: 50, 2: 1}
	assert.Equal(t, "evening", dominantPeriod(evening))

	mixed := map[int]float64{8: 10, 13: 10, 19: 10, 2: 10}
	assert.Equal(t, "", dominantPeriod(mixed))
}

func TestAnalyzeContentTypes(t *testing.T) {
	media := post("m", 300, 0, 0, 0, fixedNow)
	media.HasMedia = true
	media.URLs = []string{"https://example.com"}
	media.Hashtags = []string{"launch"}

	link := post("l", 80, 0, 0, 0, fixedNow)
	link.URLs = []string{"https://example.com"}

	text := post("t", 100, 0, 0, 0, fixedNow)
	reply := post("r", 20, 0, 0, 0, fixedNow)
	reply.InReplyToUser = models.StringPtr("someone")

	quote := post("q", 40, 0, 0, 0, fixedNow)
	quote.IsQuote = true
	quote.Hashtags = []string{"launch", "launch"}

	res := AnalyzeContentTypes([]models.Interaction{media, link, text, reply, quote})

	assert.Equal(t, 1, res.Categories[CategoryMedia].Count, "media takes priority over links")
	assert.Equal(t, 1, res.Categories[CategoryLinks].Count)
	assert.Equal(t, 3, res.Categories[CategoryText].Count)
	assert.InDelta(t, 160.0/3, res.Categories[CategoryText].Mean, 1e-9)
	assert.InDelta(t, 40.0, res.Categories[CategoryText].Median, 1e-9)
	assert.Equal(t, 100, res.Categories[CategoryText].Max)
	assert.Equal(t, 160, res.Categories[CategoryText].Total)

	assert.Equal(t, 2, res.Categories[CategoryHashtags].Count)
	assert.Equal(t, 1, res.Categories[CategoryReplies].Count)
	assert.Equal(t, 1, res.Categories[CategoryQuotes].Count)

	assert.Equal(t, CategoryMedia, res.BestPerforming)
	require.Len(t, res.Recommendations, 2)
	assert.Contains(t, res.Recommendations[0], "media outperform")
	assert.Contains(t, res.Recommendations[1], "hashtags")
}

func TestAnalyzeContentTypes_Empty(t *testing.T) {
	res := AnalyzeContentTypes(nil)
	assert.Empty(t, res.Categories)
	assert.Empty(t, res.BestPerforming)
	assert.Empty(t, res.Recommendations)
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer(t)
	stats := a.Analyze(sampleBatch())

	require.NotNil(t, stats)
	assert.InDelta(t, 345.0, stats.Baseline.Mean, 1e-9)
	assert.Empty(t, stats.ViralPosts)
	assert.NotNil(t, stats.BestHour)
	assert.NotEmpty(t, stats.BestWeekday)
	assert.Equal(t, CategoryText, stats.BestContentType)

	empty := a.Analyze(nil)
	assert.Equal(t, 0, empty.Baseline.Count)
	assert.Empty(t, empty.ViralPosts)
	assert.Nil(t, empty.BestHour)
}
