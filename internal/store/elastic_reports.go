package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"social-insights/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticReportIndexer makes finished reports searchable. The run ID is the
// document ID so re-indexing a run overwrites it.
type ElasticReportIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticReportIndexer(client *elasticsearch.Client, index string) *ElasticReportIndexer {
	return &ElasticReportIndexer{client: client, index: index}
}

func (x *ElasticReportIndexer) Index(ctx context.Context, result *models.AnalysisResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: result.RunID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("index report: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index report failed: %s", res.String())
	}
	return nil
}
