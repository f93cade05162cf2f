package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"social-insights/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const maxMentionHits = 5000

// ElasticMentionStore searches mention documents indexed by the ingestion pipeline.
// Documents use the JSON shape of models.Interaction plus a companyDomain field.
type ElasticMentionStore struct {
	client *elasticsearch.Client
	index  string
	now    func() time.Time
}

func NewElasticMentionStore(client *elasticsearch.Client, index string) *ElasticMentionStore {
	return &ElasticMentionStore{client: client, index: index, now: time.Now}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Interaction `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func mentionQuery(companyDomain string, since time.Time) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"companyDomain": companyDomain}},
					map[string]interface{}{"range": map[string]interface{}{
						"createdAt": map[string]interface{}{"gte": since.Format(time.RFC3339)},
					}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"createdAt": "asc"},
			map[string]interface{}{"id": "asc"},
		},
	}
}

// FetchMentions returns mentions of companyDomain from the last daysBack days, oldest first.
func (s *ElasticMentionStore) FetchMentions(ctx context.Context, companyDomain string, daysBack int) ([]models.Interaction, error) {
	body, err := json.Marshal(mentionQuery(companyDomain, windowStart(s.now(), daysBack)))
	if err != nil {
		return nil, err
	}

	size := maxMentionHits
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search mentions: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search mentions failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode mention hits: %w", err)
	}
	out := make([]models.Interaction, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
