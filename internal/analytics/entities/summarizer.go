// Package entities extracts named entities through an external NER service and
// summarises them into top entities and inferred topics.
package entities

import (
	"context"
	"errors"
	"sort"
	"strings"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTopN        = 10
	DefaultConcurrency = 8
)

// topicRules maps entity types to the topic their presence implies, in report order.
var topicRules = []struct {
	types []string
	topic string
}{
	{[]string{"ORG"}, "companies"},
	{[]string{"PERSON", "PER"}, "people"},
	{[]string{"PRODUCT"}, "products"},
	{[]string{"GPE", "LOC"}, "locations"},
	{[]string{"MONEY", "PERCENT"}, "financials"},
	{[]string{"EVENT"}, "events"},
	{[]string{"DATE", "TIME"}, "timelines"},
	{[]string{"LAW"}, "regulation"},
}

type Summarizer struct {
	extractor   Extractor
	topN        int
	concurrency int
	logger      logger.Logger
}

func NewSummarizer(extractor Extractor, topN, concurrency int, log logger.Logger) *Summarizer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Summarizer{
		extractor:   extractor,
		topN:        topN,
		concurrency: concurrency,
		logger:      log.WithFields(map[string]interface{}{"component": "entities"}),
	}
}

type extraction struct {
	entities []Entity
	err      error
}

// Summarize extracts entities from every non-empty text. Failed texts are
// skipped; the call fails when the context ends or every extraction failed.
func (s *Summarizer) Summarize(ctx context.Context, batch []models.Interaction) (*models.EntitySummary, error) {
	results := make([]extraction, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	attempted := 0
	for i := range batch {
		text := strings.TrimSpace(batch[i].Text)
		if text == "" {
			continue
		}
		attempted++
		g.Go(func() error {
			ents, err := s.extractor.Extract(gctx, text)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				results[i] = extraction{err: err}
				return nil
			}
			results[i] = extraction{entities: ents}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewEntityServiceFailedError(err)
	}

	var (
		failures int
		lastErr  error
		all      []Entity
	)
	for _, r := range results {
		if r.err != nil {
			failures++
			lastErr = r.err
			continue
		}
		all = append(all, r.entities...)
	}
	if failures > 0 {
		s.logger.Warn("some texts could not be processed", map[string]interface{}{
			"failed":    failures,
			"attempted": attempted,
			"lastError": lastErr,
		})
		if failures == attempted {
			return nil, apperrors.NewEntityServiceFailedError(lastErr)
		}
	}
	return Summarize(all, s.topN), nil
}

type entityKey struct {
	text string
	typ  string
}

// Summarize counts entities case-insensitively per type and keeps the topN
// most frequent. Ties keep first-seen order; the first spelling seen is kept.
func Summarize(all []Entity, topN int) *models.EntitySummary {
	summary := &models.EntitySummary{
		TopEntities: []models.EntityCount{},
		TypeCounts:  map[string]int{},
		Topics:      []string{},
	}

	counts := map[entityKey]int{}
	order := make([]entityKey, 0)
	display := map[entityKey]string{}
	for _, e := range all {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		typ := strings.ToUpper(strings.TrimSpace(e.Type))
		k := entityKey{strings.ToLower(text), typ}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
			display[k] = text
		}
		counts[k]++
		summary.TypeCounts[typ]++
		summary.TotalEntities++
	}

	top := make([]models.EntityCount, 0, len(order))
	for _, k := range order {
		top = append(top, models.EntityCount{Text: display[k], Type: k.typ, Count: counts[k]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}
	summary.TopEntities = top
	summary.Topics = InferTopics(summary.TypeCounts)
	return summary
}

// InferTopics lists the topics implied by the entity types present.
func InferTopics(typeCounts map[string]int) []string {
	topics := make([]string, 0)
	for _, rule := range topicRules {
		for _, t := range rule.types {
			if typeCounts[t] > 0 {
				topics = append(topics, rule.topic)
				break
			}
		}
	}
	return topics
}
