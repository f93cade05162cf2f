package engagement

import (
	"math"
	"sort"

	"social-insights/internal/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EngagementRate returns weighted engagement over impressions as a percentage in [0,100].
// Impressions fall back to 10% of the author's followers when not provided.
func EngagementRate(i models.Interaction) float64 {
	weighted := float64(i.LikeCount) +
		2*float64(i.RetweetCount) +
		3*float64(i.ReplyCount) +
		4*float64(i.QuoteCount)

	var impressions float64
	if i.Impressions != nil {
		impressions = float64(*i.Impressions)
	} else {
		impressions = float64(i.AuthorFollowers) * 0.1
	}
	if impressions <= 0 {
		return 0
	}
	return math.Min(weighted/impressions*100, 100)
}

// ComputeBaseline describes the total-engagement distribution of a batch.
// It is a pure function of its input; an empty batch yields a zero baseline.
func ComputeBaseline(batch []models.Interaction) models.Baseline {
	if len(batch) == 0 {
		return models.Baseline{}
	}
	values := totals(batch)
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return models.Baseline{
		Mean:   mean,
		Median: percentile(sorted, 0.5),
		StdDev: std,
		P95:    percentile(sorted, 0.95),
		Count:  len(batch),
	}
}

func totals(batch []models.Interaction) []float64 {
	out := make([]float64, len(batch))
	for i, it := range batch {
		out[i] = float64(it.TotalEngagement())
	}
	return out
}

// percentile interpolates linearly between closest ranks of an ascending slice,
// so the median of an even-length slice is the mean of its middle pair.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func bucketStats(values []float64) models.BucketStats {
	if len(values) == 0 {
		return models.BucketStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return models.BucketStats{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: percentile(sorted, 0.5),
		Max:    int(floats.Max(values)),
		Total:  int(floats.Sum(values)),
	}
}
