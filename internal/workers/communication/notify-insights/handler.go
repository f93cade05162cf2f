package notifyinsights

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/metrics"
	"social-insights/internal/common/validation"
	"social-insights/internal/models"
	analyzecompany "social-insights/internal/workers/analytics/analyze-company"
)

const (
	TaskType = "notify-insights"

	alertPostLimit  = 5
	snsSubjectLimit = 100
)

type ResultReader interface {
	LatestResult(ctx context.Context, companyDomain string) (*models.AnalysisResult, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type AlertPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Dependencies struct {
	Results ResultReader
	Email   EmailSender
	Alerts  AlertPublisher
}

type Handler struct {
	config    *Config
	deps      Dependencies
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, deps Dependencies, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		deps:      deps,
		validator: validator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		now:       time.Now,
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
	recipients, err := h.recipients(input.Recipients)
	if err != nil {
		return nil, err
	}

	result, err := h.deps.Results.LatestResult(ctx, domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("no stored analysis for %s", domain))
	}
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError("lookup", err)
	}

	output := &Output{
		NotificationID: uuid.NewString(),
		RunID:          result.RunID,
		Recipients:     len(recipients),
		InsightCount:   len(result.Insights),
	}

	emailOut, err := h.deps.Email.SendEmail(ctx, h.buildEmail(result, recipients))
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError("email", err)
	}
	output.EmailMessageID = aws.ToString(emailOut.MessageId)

	if alert := h.buildAlert(result); alert != nil {
		pubOut, err := h.deps.Alerts.Publish(ctx, alert)
		if err != nil {
			return nil, apperrors.NewNotificationSendFailedError("alert", err)
		}
		output.AlertMessageID = aws.ToString(pubOut.MessageId)
		output.ViralAlert = true
	}

	output.SentAt = h.now().UTC()
	h.logger.Info("insight digest sent", map[string]interface{}{
		"company":        domain,
		"runId":          result.RunID,
		"recipients":     len(recipients),
		"viralAlert":     output.ViralAlert,
		"notificationId": output.NotificationID,
	})
	return output, nil
}

// recipients prefers the job's list over the configured one and rejects
// malformed addresses.
func (h *Handler) recipients(fromJob []string) ([]string, error) {
	list := fromJob
	if len(list) == 0 {
		list = h.config.Recipients
	}
	out := make([]string, 0, len(list))
	for _, r := range list {
		r = strings.TrimSpace(r)
		if !validation.ValidateEmail(r) {
			return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("invalid recipient %q", r))
		}
		out = append(out, r)
	}
	out = models.UniqueStrings(out)
	if len(out) == 0 {
		return nil, apperrors.NewInvalidJobInputError("no recipients configured")
	}
	return out, nil
}

func (h *Handler) subject(r *models.AnalysisResult) string {
	return fmt.Sprintf("%s %s: %d insights (%s)",
		h.config.SubjectPrefix, r.CompanyDomain, len(r.Insights), strings.ToLower(string(r.Status)))
}

// DigestBody renders the plain-text email body.
func (h *Handler) DigestBody(r *models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Social insights for %s\n", r.CompanyDomain)
	fmt.Fprintf(&b, "Run %s at %s, last %d days\n", r.RunID, r.RunAt.UTC().Format(time.RFC1123), r.DaysBack)
	fmt.Fprintf(&b, "Interactions analysed: %d (mentions: %d)\n\n", r.InteractionCount, r.MentionCount)

	shown := r.Insights
	if h.config.MaxInsights > 0 && len(shown) > h.config.MaxInsights {
		shown = shown[:h.config.MaxInsights]
	}
	for _, in := range shown {
		fmt.Fprintf(&b, "- [%s] %s\n", in.Severity, in.Message)
	}
	if more := len(r.Insights) - len(shown); more > 0 {
		fmt.Fprintf(&b, "...and %d more\n", more)
	}

	if len(r.KOLs) > 0 {
		b.WriteString("\nTop key opinion leaders:\n")
		for i, k := range r.KOLs {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%d. @%s (%.1f, %s)\n", i+1, k.Username, k.InfluenceScore, k.PrimaryDomain)
		}
	}
	return b.String()
}

func (h *Handler) buildEmail(r *models.AnalysisResult, recipients []string) *ses.SendEmailInput {
	return &ses.SendEmailInput{
		Source:      aws.String(h.config.FromEmail),
		Destination: &sestypes.Destination{ToAddresses: recipients},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(h.subject(r)), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(h.DigestBody(r)), Charset: aws.String("UTF-8")},
			},
		},
	}
}

// buildAlert returns nil unless viral alerts are enabled and the run found viral posts.
func (h *Handler) buildAlert(r *models.AnalysisResult) *sns.PublishInput {
	if !h.config.AlertOnViral || h.deps.Alerts == nil || r.Engagement == nil || len(r.Engagement.ViralPosts) == 0 {
		return nil
	}
	msg := viralAlert{
		Type:          "viral_posts",
		CompanyDomain: r.CompanyDomain,
		RunID:         r.RunID,
		ViralCount:    len(r.Engagement.ViralPosts),
	}
	for i, v := range r.Engagement.ViralPosts {
		if i == alertPostLimit {
			break
		}
		msg.Posts = append(msg.Posts, alertPost{
			InteractionID:   v.InteractionID,
			Author:          v.Author,
			TotalEngagement: v.TotalEngagement,
			ViralScore:      v.ViralScore,
		})
	}
	body, _ := json.Marshal(msg)

	subject := fmt.Sprintf("%s %d viral posts for %s", h.config.SubjectPrefix, msg.ViralCount, r.CompanyDomain)
	if len(subject) > snsSubjectLimit {
		subject = subject[:snsSubjectLimit]
	}
	return &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
	}
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
