package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apphttp "social-insights/internal/common/http"
)

const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Labels lists the sentiment labels in tie-break order.
var Labels = []string{LabelPositive, LabelNeutral, LabelNegative}

var ErrUnknownLabel = errors.New("UNKNOWN_SENTIMENT_LABEL")

type Classification struct {
	Label      string
	Score      float64
	Confidence float64
}

// Classifier labels a single text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

type classifyRequest struct {
	ContentID string `json:"content_id"`
	Text      string `json:"text"`
}

type classifyResponse struct {
	ContentID      string  `json:"content_id"`
	SentimentScore float64 `json:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label"`
	Confidence     float64 `json:"confidence"`
}

// HTTPClassifier calls a sentiment model service at POST {baseURL}/sentiment.
type HTTPClassifier struct {
	baseURL string
	apiKey  string
	client  *apphttp.Client
}

func NewHTTPClassifier(baseURL, apiKey string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  apphttp.NewClient(timeout),
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Classification{}, err
	}

	var resp classifyResponse
	if err := c.client.PostJSON(ctx, c.baseURL+"/sentiment", c.apiKey, bytes.NewReader(body), &resp); err != nil {
		return Classification{}, fmt.Errorf("sentiment request: %w", err)
	}

	label := normalizeLabel(resp.SentimentLabel)
	if label == "" {
		return Classification{}, fmt.Errorf("%w: %q", ErrUnknownLabel, resp.SentimentLabel)
	}
	return Classification{Label: label, Score: resp.SentimentScore, Confidence: resp.Confidence}, nil
}

func normalizeLabel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive", "pos", "label_2":
		return LabelPositive
	case "neutral", "neu", "label_1":
		return LabelNeutral
	case "negative", "neg", "label_0":
		return LabelNegative
	default:
		return ""
	}
}
