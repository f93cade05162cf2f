package entities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apphttp "social-insights/internal/common/http"
)

// Entity is a named span found in a text.
type Entity struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Extractor finds entities in a single text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Entities []Entity `json:"entities"`
}

// HTTPExtractor calls an NER service at POST {baseURL}/entities.
type HTTPExtractor struct {
	baseURL string
	apiKey  string
	client  *apphttp.Client
}

func NewHTTPExtractor(baseURL, apiKey string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  apphttp.NewClient(timeout),
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, err
	}
	var resp extractResponse
	if err := e.client.PostJSON(ctx, e.baseURL+"/entities", e.apiKey, bytes.NewReader(body), &resp); err != nil {
		return nil, fmt.Errorf("entity request: %w", err)
	}
	return resp.Entities, nil
}
