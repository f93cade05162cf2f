// Package engagement computes engagement baselines, virality, posting-time and
// content-type performance over one batch of interactions.
package engagement

import (
	"time"

	"social-insights/internal/common/logger"
	"social-insights/internal/models"

	"gonum.org/v1/gonum/stat"
)

type Config struct {
	ViralFloor      int
	ViralMultiplier float64
	Location        *time.Location
}

func DefaultConfig() Config {
	return Config{
		ViralFloor:      100,
		ViralMultiplier: 100,
		Location:        time.UTC,
	}
}

type Analyzer struct {
	cfg    Config
	logger logger.Logger
	now    func() time.Time
}

type Option func(*Analyzer)

// WithClock replaces time.Now for velocity calculations.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(cfg Config, log logger.Logger, opts ...Option) *Analyzer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	a := &Analyzer{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "engagement"}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs every engagement computation over batch.
func (a *Analyzer) Analyze(batch []models.Interaction) *models.EngagementStats {
	baseline := ComputeBaseline(batch)
	viral := a.DetectViral(batch, baseline)
	timing := AnalyzeOptimalTiming(batch, a.cfg.Location)
	content := AnalyzeContentTypes(batch)

	stats := &models.EngagementStats{
		Baseline:               baseline,
		MeanEngagementRate:     MeanEngagementRate(batch),
		ViralPosts:             viral,
		BestHour:               timing.BestHour,
		TimingRecommendations:  timing.Recommendations,
		ContentTypes:           content.Categories,
		BestContentType:        content.BestPerforming,
		ContentRecommendations: content.Recommendations,
	}
	if timing.BestWeekday != nil {
		stats.BestWeekday = timing.BestWeekday.String()
	}

	a.logger.Debug("engagement analyzed", map[string]interface{}{
		"posts":        len(batch),
		"baselineMean": baseline.Mean,
		"viralPosts":   len(viral),
	})
	return stats
}

// MeanEngagementRate averages EngagementRate over batch; empty yields 0.
func MeanEngagementRate(batch []models.Interaction) float64 {
	if len(batch) == 0 {
		return 0
	}
	rates := make([]float64, len(batch))
	for i, it := range batch {
		rates[i] = EngagementRate(it)
	}
	return stat.Mean(rates, nil)
}
