package notifyinsights

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/validation"
	"social-insights/internal/models"
	"social-insights/pkg/registry"
)

// ==========================
// Mocks
// ==========================

type MockResults struct {
	mock.Mock
}

func (m *MockResults) LatestResult(ctx context.Context, companyDomain string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, companyDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

type MockAlerts struct {
	mock.Mock
}

func (m *MockAlerts) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

// ==========================
// Fixtures
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		FromEmail:     "insights@acme.com",
		Recipients:    []string{"growth@acme.com"},
		SubjectPrefix: "[Social Insights]",
		AlertOnViral:  true,
		TopicARN:      "arn:aws:sns:eu-west-1:123456789012:viral-posts",
		MaxInsights:   2,
	}
}

func storedResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		RunID:            "run-42",
		CompanyDomain:    "acme.com",
		RunAt:            time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC),
		DaysBack:         7,
		Status:           models.StatusDone,
		InteractionCount: 120,
		MentionCount:     15,
		KOLs: []models.KOLProfile{
			{Username: "drgenome", InfluenceScore: 93.49, PrimaryDomain: "biotech"},
		},
		Engagement: &models.EngagementStats{
			ViralPosts: []models.ViralPost{
				{InteractionID: "t-9", Author: "drgenome", TotalEngagement: 5400, ViralScore: 27.1},
			},
		},
		Insights: []models.Insight{
			{Category: "sentiment", Severity: "info", Message: "Sentiment is mostly positive (72%)"},
			{Category: "engagement", Severity: "high", Message: "1 post went viral"},
			{Category: "network", Severity: "info", Message: "3 communities detected"},
		},
	}
}

func newHandler(cfg *Config, results *MockResults, email *MockEmail, alerts *MockAlerts) *Handler {
	deps := Dependencies{Results: results, Email: email}
	if alerts != nil {
		deps.Alerts = alerts
	}
	return NewHandler(cfg, deps, nil, logger.NewNoOpLogger())
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_SendsDigestAndViralAlert(t *testing.T) {
	results, email, alerts := new(MockResults), new(MockEmail), new(MockAlerts)
	results.On("LatestResult", mock.Anything, "acme.com").Return(storedResult(), nil)

	var sent *ses.SendEmailInput
	email.On("SendEmail", mock.Anything, mock.AnythingOfType("*ses.SendEmailInput")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*ses.SendEmailInput) }).
		Return(&ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil)

	var published *sns.PublishInput
	alerts.On("Publish", mock.Anything, mock.AnythingOfType("*sns.PublishInput")).
		Run(func(args mock.Arguments) { published = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{MessageId: aws.String("sns-1")}, nil)

	h := newHandler(createTestConfig(), results, email, alerts)
	output, err := h.Execute(context.Background(), &Input{CompanyDomain: "https://www.Acme.com/about"})
	require.NoError(t, err)

	assert.NotEmpty(t, output.NotificationID)
	assert.Equal(t, "run-42", output.RunID)
	assert.Equal(t, "ses-1", output.EmailMessageID)
	assert.Equal(t, "sns-1", output.AlertMessageID)
	assert.True(t, output.ViralAlert)
	assert.Equal(t, 1, output.Recipients)
	assert.Equal(t, 3, output.InsightCount)

	require.NotNil(t, sent)
	assert.Equal(t, "insights@acme.com", aws.ToString(sent.Source))
	assert.Equal(t, []string{"growth@acme.com"}, sent.Destination.ToAddresses)
	assert.Equal(t, "[Social Insights] acme.com: 3 insights (done)", aws.ToString(sent.Message.Subject.Data))

	body := aws.ToString(sent.Message.Body.Text.Data)
	assert.Contains(t, body, "- [info] Sentiment is mostly positive (72%)")
	assert.Contains(t, body, "- [high] 1 post went viral")
	assert.NotContains(t, body, "3 communities detected")
	assert.Contains(t, body, "...and 1 more")
	assert.Contains(t, body, "1. @drgenome (93.5, biotech)")

	require.NotNil(t, published)
	assert.Equal(t, createTestConfig().TopicARN, aws.ToString(published.TopicArn))
	var alert viralAlert
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(published.Message)), &alert))
	assert.Equal(t, "viral_posts", alert.Type)
	assert.Equal(t, 1, alert.ViralCount)
	assert.Equal(t, "t-9", alert.Posts[0].InteractionID)
}

func TestHandler_Execute_JobRecipientsOverrideConfig(t *testing.T) {
	results, email := new(MockResults), new(MockEmail)
	res := storedResult()
	res.Engagement = nil
	results.On("LatestResult", mock.Anything, "acme.com").Return(res, nil)
	email.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return assert.ObjectsAreEqual([]string{"cmo@acme.com", "pr@acme.com"}, in.Destination.ToAddresses)
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-2")}, nil)

	h := newHandler(createTestConfig(), results, email, nil)
	output, err := h.Execute(context.Background(), &Input{
		CompanyDomain: "acme.com",
		Recipients:    []string{"cmo@acme.com", " pr@acme.com", "cmo@acme.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.Recipients)
	assert.False(t, output.ViralAlert)
	assert.Empty(t, output.AlertMessageID)
	email.AssertExpectations(t)
}

func TestHandler_Execute_NoViralPostsSkipsAlert(t *testing.T) {
	results, email, alerts := new(MockResults), new(MockEmail), new(MockAlerts)
	res := storedResult()
	res.Engagement.ViralPosts = nil
	results.On("LatestResult", mock.Anything, "acme.com").Return(res, nil)
	email.On("SendEmail", mock.Anything, mock.Anything).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-3")}, nil)

	h := newHandler(createTestConfig(), results, email, alerts)
	output, err := h.Execute(context.Background(), &Input{CompanyDomain: "acme.com"})
	require.NoError(t, err)

	assert.False(t, output.ViralAlert)
	alerts.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		cfg   func(*Config)
		input *Input
	}{
		{"nil", nil, nil},
		{"bad domain", nil, &Input{CompanyDomain: "not a domain"}},
		{"bad recipient", nil, &Input{CompanyDomain: "acme.com", Recipients: []string{"nobody"}}},
		{"no recipients", func(c *Config) { c.Recipients = nil }, &Input{CompanyDomain: "acme.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			h := newHandler(cfg, new(MockResults), new(MockEmail), nil)

			_, err := h.Execute(context.Background(), tt.input)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInvalidJobInput, stdErr.Code)
		})
	}
}

func TestHandler_Execute_NoStoredAnalysis(t *testing.T) {
	results := new(MockResults)
	results.On("LatestResult", mock.Anything, "acme.com").Return(nil, sql.ErrNoRows)
	h := newHandler(createTestConfig(), results, new(MockEmail), nil)

	_, err := h.Execute(context.Background(), &Input{CompanyDomain: "acme.com"})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidJobInput, stdErr.Code)
	assert.Contains(t, stdErr.Details, "acme.com")
}

func TestHandler_Execute_DeliveryFailures(t *testing.T) {
	t.Run("email", func(t *testing.T) {
		results, email := new(MockResults), new(MockEmail)
		results.On("LatestResult", mock.Anything, "acme.com").Return(storedResult(), nil)
		email.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		h := newHandler(createTestConfig(), results, email, new(MockAlerts))

		_, err := h.Execute(context.Background(), &Input{CompanyDomain: "acme.com"})

		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
		assert.Contains(t, stdErr.Details, "type: email")
		assert.True(t, stdErr.Retryable)
	})

	t.Run("alert", func(t *testing.T) {
		results, email, alerts := new(MockResults), new(MockEmail), new(MockAlerts)
		results.On("LatestResult", mock.Anything, "acme.com").Return(storedResult(), nil)
		email.On("SendEmail", mock.Anything, mock.Anything).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-4")}, nil)
		alerts.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("topic not found"))
		h := newHandler(createTestConfig(), results, email, alerts)

		_, err := h.Execute(context.Background(), &Input{CompanyDomain: "acme.com"})

		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
		assert.Contains(t, stdErr.Details, "type: alert")
	})
}

// ==========================
// Config
// ==========================

func TestConfig_Validate(t *testing.T) {
	cfg := createTestConfig()
	assert.NoError(t, cfg.Validate())

	cfg.TopicARN = ""
	assert.Error(t, cfg.Validate())

	cfg.AlertOnViral = false
	assert.NoError(t, cfg.Validate())

	cfg.FromEmail = ""
	assert.Error(t, cfg.Validate())
}

// ==========================
// Input parsing
// ==========================

func TestHandler_ParseInput_SchemaValidation(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	validator, err := validation.NewValidator(reg)
	require.NoError(t, err)
	h := NewHandler(createTestConfig(), Dependencies{}, validator, logger.NewNoOpLogger())

	job := func(vars string) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: vars}}
	}

	input, err := h.parseInput(job(`{"companyDomain":"acme.com","recipients":["cmo@acme.com"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"cmo@acme.com"}, input.Recipients)

	_, err = h.parseInput(job(`{"recipients":["cmo@acme.com"]}`))
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidJobInput, stdErr.Code)
}
