package engagement

import (
	"math"
	"sort"
	"time"

	"social-insights/internal/models"
)

const (
	velocityWeight  = 30.0
	magnitudeWeight = 40.0
	qualityWeight   = 30.0

	velocityCeiling = 100.0 // engagements per hour
	qualityCeiling  = 100.0 // replies + quotes
)

// DetectViral returns posts whose total engagement reaches the absolute floor
// and exceeds baseline.Mean times the multiplier, ranked by viral score.
func (a *Analyzer) DetectViral(batch []models.Interaction, baseline models.Baseline) []models.ViralPost {
	now := a.now()
	viral := make([]models.ViralPost, 0)

	for _, it := range batch {
		total := it.TotalEngagement()
		if total < a.cfg.ViralFloor {
			continue
		}
		if float64(total) <= baseline.Mean*a.cfg.ViralMultiplier {
			continue
		}

		velocity := engagementPerHour(it, now)
		viral = append(viral, models.ViralPost{
			InteractionID:   it.ID,
			Author:          it.Author,
			CreatedAt:       it.CreatedAt,
			TotalEngagement: total,
			Velocity:        velocity,
			ViralScore:      viralScore(it, baseline, velocity),
		})
	}

	sort.SliceStable(viral, func(i, j int) bool {
		return viral[i].ViralScore > viral[j].ViralScore
	})
	return viral
}

func engagementPerHour(it models.Interaction, now time.Time) float64 {
	hours := math.Max(now.Sub(it.CreatedAt).Hours(), 1)
	return float64(it.TotalEngagement()) / hours
}

func viralScore(it models.Interaction, baseline models.Baseline, perHour float64) float64 {
	velocity := math.Min(perHour, velocityCeiling) / velocityCeiling * velocityWeight

	magnitude := magnitudeWeight
	if baseline.Mean > 0 {
		magnitude = math.Min(float64(it.TotalEngagement())/(10*baseline.Mean), 1) * magnitudeWeight
	}

	quality := math.Min(float64(it.ReplyCount+it.QuoteCount)/qualityCeiling, 1) * qualityWeight

	return velocity + magnitude + quality
}
