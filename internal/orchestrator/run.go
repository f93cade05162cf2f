package orchestrator

import (
	"context"
	"errors"
	"time"

	"social-insights/internal/analytics/insights"
	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/metrics"
	"social-insights/internal/models"
)

// AnalyzeCompany analyses the last daysBack days of activity for companyDomain.
//
// The run moves FETCHING -> ANALYZING_DIMENSIONS -> PERSISTING and ends DONE,
// PARTIAL_FAILURE when a dimension failed, or FAILED when fetching or
// persisting failed. A failed run still returns the partial result alongside
// the error.
func (o *Orchestrator) AnalyzeCompany(ctx context.Context, companyDomain string, includeMentions bool, daysBack int) (*models.AnalysisResult, error) {
	began := time.Now()
	result := &models.AnalysisResult{
		RunID:           o.newRunID(),
		CompanyDomain:   companyDomain,
		RunAt:           o.now().UTC(),
		DaysBack:        daysBack,
		IncludeMentions: includeMentions,
		KOLs:            []models.KOLProfile{},
		Insights:        []models.Insight{},
	}
	log := o.logger.WithFields(map[string]interface{}{
		"runId":   result.RunID,
		"company": companyDomain,
	})

	ctx, span := o.obs.StartSpan(ctx, "analysis.run", map[string]string{
		"company": companyDomain,
		"runId":   result.RunID,
	})
	defer span.End()

	runCtx, cancelRun := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancelRun()

	o.transition(result, models.StatusFetching, log)
	batch, mentionCount, err := o.fetch(runCtx, companyDomain, daysBack, includeMentions)
	if err != nil {
		return o.fail(ctx, result, began, log, err)
	}
	result.InteractionCount = len(batch)
	result.MentionCount = mentionCount

	var authors []models.AuthorProfile
	if len(batch) == 0 {
		log.Info("no interactions in window", map[string]interface{}{"daysBack": daysBack})
	} else {
		o.transition(result, models.StatusAnalyzingDimensions, log)
		authors = o.analyzeDimensions(runCtx, result, batch, log)
	}
	result.Insights = insights.Generate(result)

	final := models.StatusDone
	if len(result.Errors) > 0 {
		final = models.StatusPartialFailure
	}

	// The commit is detached from the run deadline and bounded on its own.
	commitCtx, cancelCommit := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.PersistTimeout)
	defer cancelCommit()

	o.transition(result, models.StatusPersisting, log)
	persisted := *result
	persisted.Status = final
	if err := o.deps.Results.Persist(commitCtx, &persisted); err != nil {
		return o.fail(ctx, result, began, log, apperrors.NewPersistenceFailedError(result.RunID, err))
	}
	o.transition(result, final, log)

	o.afterCommit(commitCtx, result, authors, log)
	o.record(ctx, result, began)

	log.Info("analysis run finished", map[string]interface{}{
		"status":       result.Status,
		"interactions": result.InteractionCount,
		"mentions":     result.MentionCount,
		"kols":         len(result.KOLs),
		"insights":     len(result.Insights),
		"errors":       len(result.Errors),
		"duration_ms":  time.Since(began).Milliseconds(),
	})
	return result, nil
}

// fetch loads the company's own interactions and, when asked, its mentions.
// Mentions already present by ID are dropped.
func (o *Orchestrator) fetch(ctx context.Context, companyDomain string, daysBack int, includeMentions bool) ([]models.Interaction, int, error) {
	ctx, span := o.obs.StartSpan(ctx, "analysis.fetch", map[string]string{"company": companyDomain})
	defer span.End()

	own, err := o.deps.Interactions.FetchInteractions(ctx, companyDomain, daysBack)
	if err != nil {
		if timedOut(ctx) {
			return nil, 0, apperrors.NewRunTimeoutError(companyDomain, o.cfg.RunTimeout)
		}
		return nil, 0, apperrors.NewInteractionFetchFailedError(companyDomain, err)
	}
	metrics.InteractionsFetched.WithLabelValues("interactions").Add(float64(len(own)))
	if !includeMentions {
		return own, 0, nil
	}

	if o.deps.Mentions == nil {
		return nil, 0, apperrors.NewMentionSearchFailedError(companyDomain, ErrNotConfigured)
	}
	mentions, err := o.deps.Mentions.FetchMentions(ctx, companyDomain, daysBack)
	if err != nil {
		if timedOut(ctx) {
			return nil, 0, apperrors.NewRunTimeoutError(companyDomain, o.cfg.RunTimeout)
		}
		return nil, 0, apperrors.NewMentionSearchFailedError(companyDomain, err)
	}
	metrics.InteractionsFetched.WithLabelValues("mentions").Add(float64(len(mentions)))

	batch, added := mergeMentions(own, mentions)
	return batch, added, nil
}

// afterCommit records follower snapshots and indexes the report. Both are
// best-effort once the result is committed.
func (o *Orchestrator) afterCommit(ctx context.Context, r *models.AnalysisResult, authors []models.AuthorProfile, log logger.Logger) {
	if o.deps.Snapshots != nil && len(authors) > 0 {
		if err := o.deps.Snapshots.Record(ctx, withFollowers(authors), o.now()); err != nil {
			log.Warn("follower snapshots not recorded", map[string]interface{}{"error": err})
		}
	}
	if o.deps.Reports != nil {
		if err := o.deps.Reports.Index(ctx, r); err != nil {
			log.Warn("report not indexed", map[string]interface{}{
				"error": apperrors.NewReportIndexFailedError(r.RunID, err).Details,
			})
		}
	}
}

func (o *Orchestrator) fail(ctx context.Context, r *models.AnalysisResult, began time.Time, log logger.Logger, err error) (*models.AnalysisResult, error) {
	o.transition(r, models.StatusFailed, log)
	log.Error("analysis run failed", map[string]interface{}{"error": err})
	o.record(ctx, r, began)
	return r, err
}

func (o *Orchestrator) transition(r *models.AnalysisResult, status models.RunStatus, log logger.Logger) {
	r.Status = status
	log.Debug("run status changed", map[string]interface{}{"status": status})
	o.observe(r.RunID, status)
}

func (o *Orchestrator) record(ctx context.Context, r *models.AnalysisResult, began time.Time) {
	elapsed := time.Since(began)
	status := string(r.Status)
	metrics.AnalysisRuns.WithLabelValues(status).Inc()
	metrics.AnalysisRunDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if r.Network != nil {
		metrics.GraphSize.WithLabelValues("nodes").Set(float64(r.Network.NodeCount))
		metrics.GraphSize.WithLabelValues("edges").Set(float64(r.Network.EdgeCount))
	}

	// the run context may already be past its deadline
	ctx = context.WithoutCancel(ctx)
	o.obs.RecordRun(ctx, r.CompanyDomain, status, elapsed)
	if r.Status != models.StatusFailed {
		o.obs.RecordKOLCount(ctx, r.CompanyDomain, len(r.KOLs))
	}
}

func timedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
