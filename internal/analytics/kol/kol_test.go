package kol

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)

// ==========================
// Fixtures
// ==========================

// strongAuthor posts ten times a day with a 10% engagement rate.
func strongAuthor() models.AuthorProfile {
	tweets := make([]models.Interaction, 4)
	for i := range tweets {
		tweets[i] = models.Interaction{
			ID:           string(rune('a' + i)),
			Text:         "New clinical trial results for our gene therapy program",
			LikeCount:    300,
			RetweetCount: 100,
		}
	}
	return models.AuthorProfile{
		Username:         "drgenome",
		Bio:              "Biotech founder. Genomics and CRISPR.",
		Location:         "Boston",
		Website:          "https://example.org",
		Followers:        50000,
		Following:        500,
		TotalTweets:      3650,
		Verified:         true,
		AccountCreatedAt: fixedNow.AddDate(0, 0, -365),
		Tweets:           tweets,
	}
}

type fakeSnapshots struct {
	counts map[string]int
	err    error
	calls  []time.Time
}

func (f *fakeSnapshots) FollowersAt(_ context.Context, handle string, at time.Time) (int, bool, error) {
	f.calls = append(f.calls, at)
	if f.err != nil {
		return 0, false, f.err
	}
	n, ok := f.counts[handle]
	return n, ok, nil
}

func newTestIdentifier(t *testing.T, opts ...Option) *Identifier {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewIdentifier(DefaultConfig(), logger.NewTestLogger(t), opts...)
}

// ==========================
// Influence score
// ==========================

func TestInfluenceScore_StrongAuthor(t *testing.T) {
	a := strongAuthor()

	c := ScoreComponents(a, fixedNow)

	assert.InDelta(t, math.Log10(50000)/6*100, c.Reach, 1e-9)
	assert.InDelta(t, 100.0, c.Engagement, 1e-9, "10% rate x10")
	assert.Equal(t, 100.0, c.Authority)
	assert.Equal(t, 100.0, c.Activity, "10 posts a day saturates")
	assert.Equal(t, 100.0, c.Network, "follower ratio 100 saturates")

	expected := 0.30*c.Reach + 0.25*100 + 0.20*100 + 0.15*100 + 0.10*100
	score := InfluenceScore(a, fixedNow)
	assert.InDelta(t, expected, score, 1e-9)
	assert.InDelta(t, 93.49, score, 0.01)
}

func TestInfluenceScore_Components(t *testing.T) {
	tests := []struct {
		name   string
		author models.AuthorProfile
		check  func(t *testing.T, c Components)
	}{
		{
			name:   "zero followers has zero reach",
			author: models.AuthorProfile{},
			check: func(t *testing.T, c Components) {
				assert.Zero(t, c.Reach)
				assert.Zero(t, c.Network)
			},
		},
		{
			name:   "reach saturates at one million",
			author: models.AuthorProfile{Followers: 5_000_000},
			check: func(t *testing.T, c Components) {
				assert.Equal(t, 100.0, c.Reach)
			},
		},
		{
			name:   "bio only authority",
			author: models.AuthorProfile{Bio: "hello"},
			check: func(t *testing.T, c Components) {
				assert.Equal(t, 25.0, c.Authority)
			},
		},
		{
			name:   "new account counts as one day",
			author: models.AuthorProfile{TotalTweets: 2, AccountCreatedAt: fixedNow},
			check: func(t *testing.T, c Components) {
				assert.Equal(t, 40.0, c.Activity)
			},
		},
		{
			name:   "network ratio",
			author: models.AuthorProfile{Followers: 300, Following: 1000},
			check: func(t *testing.T, c Components) {
				assert.InDelta(t, 3.0, c.Network, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ScoreComponents(tt.author, fixedNow)
			tt.check(t, c)
			assert.GreaterOrEqual(t, c.Total(), 0.0)
			assert.LessOrEqual(t, c.Total(), 100.0)
		})
	}
}

// ==========================
// Expertise
// ==========================

func TestClassifyExpertise(t *testing.T) {
	a := models.AuthorProfile{
		Bio: "Healthcare investor",
		Tweets: []models.Interaction{
			{Text: "Markets are up, stocks rally"},
			{Text: "AI startup raises seed"},
		},
	}

	scores, primary := ClassifyExpertise(a, DefaultExpertiseKeywords())

	// bio: healthcare 2, finance 2; posts: finance 2, technology 2
	assert.Equal(t, "finance", primary)
	assert.InDelta(t, 50.0, scores["finance"], 1e-9)
	assert.InDelta(t, 25.0, scores["healthcare"], 1e-9)
	assert.InDelta(t, 25.0, scores["technology"], 1e-9)
	assert.Zero(t, scores["biotech"])

	var total float64
	for _, v := range scores {
		total += v
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestClassifyExpertise_NoHits(t *testing.T) {
	scores, primary := ClassifyExpertise(models.AuthorProfile{Bio: "cats and coffee"}, DefaultExpertiseKeywords())

	assert.Equal(t, GeneralDomain, primary)
	for domain, v := range scores {
		assert.Zero(t, v, domain)
	}
}

func TestClassifyExpertise_WholeWords(t *testing.T) {
	keywords := map[string][]string{"technology": {"ai"}}

	scores, primary := ClassifyExpertise(models.AuthorProfile{Bio: "maintain the chain"}, keywords)

	assert.Equal(t, GeneralDomain, primary, "substrings of longer words do not match")
	assert.Zero(t, scores["technology"])
}

// ==========================
// KOL identification
// ==========================

func TestIdentifyKOLs(t *testing.T) {
	strong := strongAuthor()
	small := strongAuthor()
	small.Username = "small"
	small.Followers = 4000
	weak := models.AuthorProfile{Username: "weak", Followers: 6000, Following: 6000, AccountCreatedAt: fixedNow.AddDate(-1, 0, 0)}

	id := newTestIdentifier(t)
	authors := []models.AuthorProfile{weak, small, strong}

	tests := []struct {
		name         string
		domain       string
		minInfluence *float64
		expected     []string
	}{
		{name: "default threshold", expected: []string{"drgenome"}},
		{name: "matching domain", domain: "biotech", expected: []string{"drgenome"}},
		{name: "other domain", domain: "finance", expected: []string{}},
		{name: "lower threshold", minInfluence: floatPtr(10), expected: []string{"drgenome", "weak"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kols := id.IdentifyKOLs(authors, tt.domain, tt.minInfluence)
			names := make([]string, 0, len(kols))
			for _, k := range kols {
				names = append(names, k.Username)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestIdentifyKOLs_ProfileFields(t *testing.T) {
	kols := newTestIdentifier(t).IdentifyKOLs([]models.AuthorProfile{strongAuthor()}, "", nil)

	require.Len(t, kols, 1)
	k := kols[0]
	assert.Equal(t, "biotech", k.PrimaryDomain)
	assert.True(t, k.Verified)
	assert.Equal(t, 50000, k.Followers)
	assert.InDelta(t, 10.0, k.EngagementRate, 1e-9)
}

func floatPtr(v float64) *float64 { return &v }

// ==========================
// Rising influencers
// ==========================

func TestIdentifyRisingInfluencers(t *testing.T) {
	snaps := &fakeSnapshots{counts: map[string]int{
		"fast":   1000,
		"faster": 1000,
		"slow":   1000,
		"tiny":   100,
	}}
	id := newTestIdentifier(t, WithSnapshots(snaps))

	authors := []models.AuthorProfile{
		{Username: "fast", Followers: 1500},
		{Username: "faster", Followers: 3000},
		{Username: "slow", Followers: 1200},
		{Username: "tiny", Followers: 900},
		{Username: "unknown", Followers: 9000},
	}

	rising, err := id.IdentifyRisingInfluencers(context.Background(), authors, 30)
	require.NoError(t, err)

	require.Len(t, rising, 2)
	assert.Equal(t, "faster", rising[0].Username)
	assert.InDelta(t, 200.0, rising[0].GrowthRate, 1e-9)
	assert.Equal(t, "fast", rising[1].Username)
	assert.Equal(t, 1000, rising[1].HistoricalFollowers)

	require.NotEmpty(t, snaps.calls)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), snaps.calls[0])
}

func TestIdentifyRisingInfluencers_CappedAtTwenty(t *testing.T) {
	counts := map[string]int{}
	var authors []models.AuthorProfile
	for i := 0; i < 25; i++ {
		name := string(rune('a' + i))
		counts[name] = 1000
		authors = append(authors, models.AuthorProfile{Username: name, Followers: 2000 + i})
	}
	id := newTestIdentifier(t, WithSnapshots(&fakeSnapshots{counts: counts}))

	rising, err := id.IdentifyRisingInfluencers(context.Background(), authors, 7)
	require.NoError(t, err)

	assert.Len(t, rising, 20)
	assert.Equal(t, "y", rising[0].Username)
}

func TestIdentifyRisingInfluencers_Errors(t *testing.T) {
	t.Run("no snapshot source", func(t *testing.T) {
		_, err := newTestIdentifier(t).IdentifyRisingInfluencers(context.Background(), nil, 30)
		assert.ErrorIs(t, err, ErrNoSnapshotSource)
	})

	t.Run("lookup failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		id := newTestIdentifier(t, WithSnapshots(&fakeSnapshots{err: cause}))

		_, err := id.IdentifyRisingInfluencers(context.Background(), []models.AuthorProfile{{Username: "x", Followers: 5000}}, 30)

		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeSnapshotLookupFailed, stdErr.Code)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		id := newTestIdentifier(t, WithSnapshots(&fakeSnapshots{}))

		_, err := id.IdentifyRisingInfluencers(ctx, []models.AuthorProfile{{Username: "x", Followers: 5000}}, 30)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
