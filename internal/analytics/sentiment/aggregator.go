// Package sentiment classifies post texts through an external model service
// and aggregates the labels over a batch.
package sentiment

import (
	"context"
	"errors"
	"strings"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/models"

	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

type Aggregator struct {
	classifier  Classifier
	concurrency int
	logger      logger.Logger
}

func NewAggregator(classifier Classifier, concurrency int, log logger.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{
		classifier:  classifier,
		concurrency: concurrency,
		logger:      log.WithFields(map[string]interface{}{"component": "sentiment"}),
	}
}

type outcome struct {
	ok    bool
	class Classification
	err   error
}

// Aggregate classifies every non-empty text in batch. Individual failures are
// skipped; the call fails when the context ends or when no text could be
// classified at all.
func (a *Aggregator) Aggregate(ctx context.Context, batch []models.Interaction) (*models.SentimentSummary, error) {
	results := make([]outcome, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range batch {
		text := strings.TrimSpace(batch[i].Text)
		if text == "" {
			continue
		}
		g.Go(func() error {
			c, err := a.classifier.Classify(gctx, text)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				results[i] = outcome{err: err}
				return nil
			}
			results[i] = outcome{ok: true, class: c}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewSentimentServiceFailedError(err)
	}

	summary, failures, lastErr := summarize(results)
	if failures > 0 {
		a.logger.Warn("some texts could not be classified", map[string]interface{}{
			"failed":    failures,
			"total":     summary.Total,
			"lastError": lastErr,
		})
	}
	if summary.Classified == 0 && failures > 0 {
		return nil, apperrors.NewSentimentServiceFailedError(lastErr)
	}
	return summary, nil
}

func summarize(results []outcome) (*models.SentimentSummary, int, error) {
	s := &models.SentimentSummary{
		Counts: make(map[string]int, len(Labels)),
		Ratios: make(map[string]float64, len(Labels)),
	}
	for _, l := range Labels {
		s.Counts[l] = 0
		s.Ratios[l] = 0
	}

	var (
		scoreSum float64
		failures int
		lastErr  error
	)
	for _, r := range results {
		switch {
		case r.ok:
			s.Total++
			s.Classified++
			s.Counts[r.class.Label]++
			scoreSum += r.class.Score
		case r.err != nil:
			s.Total++
			failures++
			lastErr = r.err
		}
	}
	if s.Classified == 0 {
		return s, failures, lastErr
	}

	s.MeanScore = scoreSum / float64(s.Classified)
	for _, l := range Labels {
		s.Ratios[l] = float64(s.Counts[l]) / float64(s.Classified)
		if s.Counts[l] > s.Counts[s.DominantLabel] || s.DominantLabel == "" {
			s.DominantLabel = l
		}
	}
	s.DominantRatio = s.Ratios[s.DominantLabel]
	return s, failures, lastErr
}
