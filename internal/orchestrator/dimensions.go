package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-insights/internal/analytics/kol"
	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/metrics"
	"social-insights/internal/models"

	"golang.org/x/sync/errgroup"
)

type dimension struct {
	name string
	run  func(ctx context.Context) error
}

// analyzeDimensions runs the five dimensions concurrently over the same
// read-only batch. Every task writes only its own variables; failures are
// recorded on r in dimension order. It returns the author profiles the KOL
// dimension resolved.
func (o *Orchestrator) analyzeDimensions(ctx context.Context, r *models.AnalysisResult, batch []models.Interaction, log logger.Logger) []models.AuthorProfile {
	var (
		sentiment *models.SentimentSummary
		entities  *models.EntitySummary
		net       *models.NetworkStats
		eng       *models.EngagementStats
		kols      []models.KOLProfile
		rising    []models.RisingInfluencer
		authors   []models.AuthorProfile
	)

	dims := []dimension{
		{models.DimensionSentiment, func(ctx context.Context) error {
			if o.deps.Sentiment == nil {
				return ErrNotConfigured
			}
			s, err := o.deps.Sentiment.Aggregate(ctx, batch)
			sentiment = s
			return err
		}},
		{models.DimensionEntities, func(ctx context.Context) error {
			if o.deps.Entities == nil {
				return ErrNotConfigured
			}
			s, err := o.deps.Entities.Summarize(ctx, batch)
			entities = s
			return err
		}},
		{models.DimensionNetwork, func(ctx context.Context) error {
			if o.deps.Network == nil {
				return ErrNotConfigured
			}
			net = o.deps.Network.Analyze(batch)
			return nil
		}},
		{models.DimensionEngagement, func(ctx context.Context) error {
			if o.deps.Engagement == nil {
				return ErrNotConfigured
			}
			eng = o.deps.Engagement.Analyze(batch)
			return nil
		}},
		{models.DimensionKOL, func(ctx context.Context) error {
			var err error
			kols, rising, authors, err = o.identifyKOLs(ctx, batch, log)
			return err
		}},
	}

	failures := make([]*models.DimensionError, len(dims))
	var g errgroup.Group
	for i, d := range dims {
		g.Go(func() error {
			failures[i] = o.runDimension(ctx, r, d, log)
			return nil
		})
	}
	_ = g.Wait()

	r.Sentiment = sentiment
	r.Entities = entities
	r.Network = net
	r.Engagement = eng
	if kols != nil {
		r.KOLs = kols
	}
	r.RisingInfluencers = rising
	for _, f := range failures {
		if f != nil {
			r.Errors = append(r.Errors, *f)
		}
	}
	return authors
}

// runDimension runs one dimension and converts an error or panic into a
// DimensionError.
func (o *Orchestrator) runDimension(ctx context.Context, r *models.AnalysisResult, d dimension, log logger.Logger) (failure *models.DimensionError) {
	began := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "analysis.dimension", map[string]string{"dimension": d.name})
	defer span.End()
	defer func() {
		if p := recover(); p != nil {
			failure = o.dimensionFailure(r, d.name, fmt.Errorf("panic: %v", p), log)
		}
		metrics.DimensionDuration.WithLabelValues(d.name).Observe(time.Since(began).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return o.dimensionFailure(r, d.name, err, log)
	}
	if err := d.run(ctx); err != nil {
		return o.dimensionFailure(r, d.name, err, log)
	}
	return nil
}

func (o *Orchestrator) dimensionFailure(r *models.AnalysisResult, name string, err error, log logger.Logger) *models.DimensionError {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		stdErr = apperrors.NewRunTimeoutError(r.CompanyDomain, o.cfg.RunTimeout)
	default:
		var ok bool
		if stdErr, ok = apperrors.AsStandardError(err); !ok {
			stdErr = apperrors.NewDimensionFailedError(name, err)
		}
	}

	message := stdErr.Message
	if stdErr.Details != "" {
		message += ": " + stdErr.Details
	}
	metrics.DimensionFailures.WithLabelValues(name).Inc()
	log.Warn("dimension failed", map[string]interface{}{
		"dimension": name,
		"code":      string(stdErr.Code),
		"error":     err,
	})
	return &models.DimensionError{
		Dimension: name,
		Code:      string(stdErr.Code),
		Message:   message,
	}
}

// identifyKOLs resolves author profiles and ranks them. Rising influencers are
// best-effort: a missing or failing snapshot source leaves them empty.
func (o *Orchestrator) identifyKOLs(ctx context.Context, batch []models.Interaction, log logger.Logger) ([]models.KOLProfile, []models.RisingInfluencer, []models.AuthorProfile, error) {
	if o.deps.KOL == nil {
		return nil, nil, nil, ErrNotConfigured
	}
	authors, err := o.resolveAuthors(ctx, batch)
	if err != nil {
		return nil, nil, nil, err
	}

	kols := o.deps.KOL.IdentifyKOLs(authors, "", nil)

	rising, err := o.deps.KOL.IdentifyRisingInfluencers(ctx, authors, o.cfg.RisingLookbackDays)
	switch {
	case errors.Is(err, kol.ErrNoSnapshotSource):
		rising = nil
	case err != nil:
		log.Warn("rising influencers skipped", map[string]interface{}{"error": err})
		rising = nil
	}
	return kols, rising, authors, nil
}
