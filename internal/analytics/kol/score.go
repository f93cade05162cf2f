package kol

import (
	"math"
	"time"

	"social-insights/internal/analytics/engagement"
	"social-insights/internal/models"
)

// Component weights of the influence score.
const (
	weightReach      = 0.30
	weightEngagement = 0.25
	weightAuthority  = 0.20
	weightActivity   = 0.15
	weightNetwork    = 0.10
)

// Components are the five 0..100 sub-scores behind InfluenceScore.
type Components struct {
	Reach      float64
	Engagement float64
	Authority  float64
	Activity   float64
	Network    float64
}

// Total is the weighted sum of the components.
func (c Components) Total() float64 {
	return c.Reach*weightReach +
		c.Engagement*weightEngagement +
		c.Authority*weightAuthority +
		c.Activity*weightActivity +
		c.Network*weightNetwork
}

func reachScore(followers int) float64 {
	return math.Min(math.Log10(math.Max(float64(followers), 1))/6*100, 100)
}

func authorityScore(a models.AuthorProfile) float64 {
	var s float64
	if a.Verified {
		s += 50
	}
	if a.Bio != "" {
		s += 25
	}
	if a.Location != "" {
		s += 15
	}
	if a.Website != "" {
		s += 10
	}
	return math.Min(s, 100)
}

func activityScore(a models.AuthorProfile, now time.Time) float64 {
	days := math.Floor(now.Sub(a.AccountCreatedAt).Hours() / 24)
	perDay := float64(a.TotalTweets) / math.Max(days, 1)
	return math.Min(perDay*20, 100)
}

func networkScore(a models.AuthorProfile) float64 {
	ratio := float64(a.Followers) / math.Max(float64(a.Following), 1)
	return math.Min(ratio*10, 100)
}

// AuthorEngagementRate is the mean engagement rate over the author's posts.
// Posts without a follower count inherit the profile's.
func AuthorEngagementRate(a models.AuthorProfile) float64 {
	if len(a.Tweets) == 0 {
		return 0
	}
	var sum float64
	for _, t := range a.Tweets {
		if t.AuthorFollowers == 0 {
			t.AuthorFollowers = a.Followers
		}
		sum += engagement.EngagementRate(t)
	}
	return sum / float64(len(a.Tweets))
}

// ScoreComponents computes each influence component at now.
func ScoreComponents(a models.AuthorProfile, now time.Time) Components {
	return Components{
		Reach:      reachScore(a.Followers),
		Engagement: math.Min(AuthorEngagementRate(a)*10, 100),
		Authority:  authorityScore(a),
		Activity:   activityScore(a, now),
		Network:    networkScore(a),
	}
}

// InfluenceScore is the weighted 0..100 influence of an author at now.
func InfluenceScore(a models.AuthorProfile, now time.Time) float64 {
	return ScoreComponents(a, now).Total()
}
