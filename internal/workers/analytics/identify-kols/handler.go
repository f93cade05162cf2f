package identifykols

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/metrics"
	"social-insights/internal/common/validation"
	"social-insights/internal/orchestrator"
	analyzecompany "social-insights/internal/workers/analytics/analyze-company"
)

const (
	TaskType = "identify-kols"
)

type Ranker interface {
	RankKOLs(ctx context.Context, companyDomain string, daysBack int, includeMentions bool, domainFilter string, minInfluence *float64) (*orchestrator.KOLReport, error)
}

type Handler struct {
	config    *Config
	ranker    Ranker
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, ranker Ranker, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		ranker:    ranker,
		validator: validator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		if output, err = h.execute(ctx, input); err == nil {
			h.completeJob(client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
			return
		}
	}

	code := "INTERNAL_ERROR"
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errors.HandleJobError(context.WithoutCancel(ctx), client, job, err)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	if h.validator != nil {
		if res := h.validator.ValidateJSON(TaskType, job.Variables); !res.Valid {
			return nil, apperrors.NewInvalidJobInputError(strings.Join(res.GetErrorMessages(), "; "))
		}
	}
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidJobInputError("input cannot be nil")
	}
	domain, err := analyzecompany.NormalizeDomain(input.CompanyDomain)
	if err != nil {
		return nil, apperrors.NewInvalidJobInputError(err.Error())
	}
	daysBack := input.DaysBack
	if daysBack == 0 {
		daysBack = h.config.DefaultDaysBack
	}
	if daysBack < 1 || daysBack > h.config.MaxDaysBack {
		return nil, apperrors.NewInvalidJobInputError(
			fmt.Sprintf("daysBack must be within 1..%d, got %d", h.config.MaxDaysBack, daysBack))
	}
	if m := input.MinInfluence; m != nil && (*m < 0 || *m > 100) {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("minInfluence must be within 0..100, got %v", *m))
	}

	start := time.Now()
	report, err := h.ranker.RankKOLs(ctx, domain, daysBack, input.IncludeMentions,
		strings.ToLower(strings.TrimSpace(input.DomainFilter)), input.MinInfluence)
	if err != nil {
		return nil, err
	}

	return &Output{
		CompanyDomain:     report.CompanyDomain,
		AuthorCount:       report.AuthorCount,
		KOLCount:          len(report.KOLs),
		KOLs:              report.KOLs,
		RisingInfluencers: report.RisingInfluencers,
		ExecutionTime:     time.Since(start).Milliseconds(),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
