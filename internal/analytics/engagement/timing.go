package engagement

import (
	"fmt"
	"sort"
	"time"

	"social-insights/internal/models"
)

const minSlotSamples = 2

// Slot is a (weekday, hour) bucket with enough samples to rank.
type Slot struct {
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
	Mean    float64      `json:"mean"`
	Samples int          `json:"samples"`
}

// TimingAnalysis holds per-bucket engagement means and ranked recommendations.
type TimingAnalysis struct {
	HourlyMean      map[int]float64          `json:"hourlyMean"`
	WeekdayMean     map[time.Weekday]float64 `json:"weekdayMean"`
	Slots           []Slot                   `json:"slots"`
	BestHour        *int                     `json:"bestHour,omitempty"`
	BestWeekday     *time.Weekday            `json:"bestWeekday,omitempty"`
	Recommendations []string                 `json:"recommendations"`
}

type accumulator struct {
	sum   float64
	count int
}

func (a accumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// AnalyzeOptimalTiming buckets engagement by hour and weekday in loc.
// Ties resolve to the earliest hour or weekday.
func AnalyzeOptimalTiming(batch []models.Interaction, loc *time.Location) TimingAnalysis {
	if loc == nil {
		loc = time.UTC
	}
	result := TimingAnalysis{
		HourlyMean:      map[int]float64{},
		WeekdayMean:     map[time.Weekday]float64{},
		Slots:           []Slot{},
		Recommendations: []string{},
	}
	if len(batch) == 0 {
		return result
	}

	var hours [24]accumulator
	var days [7]accumulator
	var slots [7][24]accumulator

	for _, it := range batch {
		t := it.CreatedAt.In(loc)
		v := float64(it.TotalEngagement())
		h, d := t.Hour(), t.Weekday()
		hours[h].sum += v
		hours[h].count++
		days[d].sum += v
		days[d].count++
		slots[d][h].sum += v
		slots[d][h].count++
	}

	bestHour, bestHourMean := -1, 0.0
	for h := 0; h < 24; h++ {
		if hours[h].count == 0 {
			continue
		}
		m := hours[h].mean()
		result.HourlyMean[h] = m
		if bestHour < 0 || m > bestHourMean {
			bestHour, bestHourMean = h, m
		}
	}

	bestDay, bestDayMean := time.Weekday(-1), 0.0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if days[d].count == 0 {
			continue
		}
		m := days[d].mean()
		result.WeekdayMean[d] = m
		if bestDay < 0 || m > bestDayMean {
			bestDay, bestDayMean = d, m
		}
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		for h := 0; h < 24; h++ {
			if slots[d][h].count < minSlotSamples {
				continue
			}
			result.Slots = append(result.Slots, Slot{
				Weekday: d,
				Hour:    h,
				Mean:    slots[d][h].mean(),
				Samples: slots[d][h].count,
			})
		}
	}
	sort.SliceStable(result.Slots, func(i, j int) bool {
		return result.Slots[i].Mean > result.Slots[j].Mean
	})

	if bestHour >= 0 {
		result.BestHour = &bestHour
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Best hour to post: %02d:00 %s (avg engagement %.1f)", bestHour, loc.String(), bestHourMean))
	}
	if bestDay >= 0 {
		result.BestWeekday = &bestDay
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Best day to post: %s (avg engagement %.1f)", bestDay, bestDayMean))
	}
	if len(result.Slots) > 0 {
		top := result.Slots[0]
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Best time slot: %s at %02d:00 %s (avg engagement %.1f over %d posts)",
				top.Weekday, top.Hour, loc.String(), top.Mean, top.Samples))
	}
	if period := dominantPeriod(result.HourlyMean); period != "" {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Audience is most engaged in the %s", period))
	}

	return result
}

// dominantPeriod returns morning, afternoon or evening when at least three of
// the five best hours fall in that period.
func dominantPeriod(hourly map[int]float64) string {
	ranked := make([]int, 0, len(hourly))
	for h := range hourly {
		ranked = append(ranked, h)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if hourly[ranked[i]] != hourly[ranked[j]] {
			return hourly[ranked[i]] > hourly[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	counts := map[string]int{}
	for _, h := range ranked {
		switch {
		case h >= 6 && h < 12:
			counts["morning"]++
		case h >= 12 && h < 18:
			counts["afternoon"]++
		case h >= 18:
			counts["evening"]++
		}
	}
	for _, p := range []string{"morning", "afternoon", "evening"} {
		if counts[p] >= 3 {
			return p
		}
	}
	return ""
}
