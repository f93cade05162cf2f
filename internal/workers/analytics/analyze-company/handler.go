package analyzecompany

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/metrics"
	"social-insights/internal/common/validation"
	"social-insights/internal/models"
)

const (
	TaskType = "analyze-company"
)

// Analyzer runs one company analysis.
type Analyzer interface {
	AnalyzeCompany(ctx context.Context, companyDomain string, includeMentions bool, daysBack int) (*models.AnalysisResult, error)
}

type Handler struct {
	config    *Config
	analyzer  Analyzer
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, analyzer Analyzer, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		analyzer:  analyzer,
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
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
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
	domain, err := NormalizeDomain(input.CompanyDomain)
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

	start := time.Now()
	result, err := h.analyzer.AnalyzeCompany(ctx, domain, input.IncludeMentions, daysBack)
	if err != nil {
		return nil, err
	}

	output := &Output{
		RunID:            result.RunID,
		Status:           string(result.Status),
		InteractionCount: result.InteractionCount,
		MentionCount:     result.MentionCount,
		KOLCount:         len(result.KOLs),
		Insights:         result.Insights,
		DimensionErrors:  result.Errors,
		ExecutionTime:    time.Since(start).Milliseconds(),
	}
	if result.Engagement != nil {
		output.ViralPostCount = len(result.Engagement.ViralPosts)
	}
	return output, nil
}

// NormalizeDomain lower-cases a company domain and strips scheme, path and "www.".
func NormalizeDomain(raw string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(d, "://") {
		u, err := url.Parse(d)
		if err != nil {
			return "", fmt.Errorf("invalid companyDomain %q: %w", raw, err)
		}
		d = u.Hostname()
	}
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "www.")
	if d == "" || !strings.Contains(d, ".") || strings.ContainsAny(d, " @") {
		return "", fmt.Errorf("invalid companyDomain %q", raw)
	}
	return d, nil
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errors.HandleJobError(context.WithoutCancel(ctx), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
