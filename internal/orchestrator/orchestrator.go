// Package orchestrator runs one company analysis end to end: fetch, fan out
// the five dimensions, derive insights and persist the result.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"social-insights/internal/analytics/engagement"
	"social-insights/internal/analytics/kol"
	"social-insights/internal/analytics/network"
	"social-insights/internal/common/logger"
	"social-insights/internal/common/observability"
	"social-insights/internal/models"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("DIMENSION_NOT_CONFIGURED")

// InteractionStore returns either the full window or an error, never a partial list.
type InteractionStore interface {
	FetchInteractions(ctx context.Context, companyDomain string, daysBack int) ([]models.Interaction, error)
}

type MentionStore interface {
	FetchMentions(ctx context.Context, companyDomain string, daysBack int) ([]models.Interaction, error)
}

type AuthorDirectory interface {
	FetchAuthors(ctx context.Context, handles []string) ([]models.AuthorProfile, error)
}

type ResultStore interface {
	Persist(ctx context.Context, result *models.AnalysisResult) error
}

type SnapshotRecorder interface {
	Record(ctx context.Context, authors []models.AuthorProfile, at time.Time) error
}

type ReportIndexer interface {
	Index(ctx context.Context, result *models.AnalysisResult) error
}

type SentimentAnalyzer interface {
	Aggregate(ctx context.Context, batch []models.Interaction) (*models.SentimentSummary, error)
}

type EntityAnalyzer interface {
	Summarize(ctx context.Context, batch []models.Interaction) (*models.EntitySummary, error)
}

// Dependencies are the collaborators of a run. Interactions, Mentions and
// Results are required; Authors, Snapshots and Reports are optional.
type Dependencies struct {
	Interactions InteractionStore
	Mentions     MentionStore
	Authors      AuthorDirectory
	Results      ResultStore
	Snapshots    SnapshotRecorder
	Reports      ReportIndexer

	Sentiment  SentimentAnalyzer
	Entities   EntityAnalyzer
	Network    *network.Ranker
	Engagement *engagement.Analyzer
	KOL        *kol.Identifier
}

// Config bounds a run. RunTimeout covers fetching and the dimensions;
// PersistTimeout covers the commit and the steps after it.
type Config struct {
	RunTimeout         time.Duration
	PersistTimeout     time.Duration
	RisingLookbackDays int
}

func DefaultConfig() Config {
	return Config{
		RunTimeout:         2 * time.Minute,
		PersistTimeout:     30 * time.Second,
		RisingLookbackDays: 30,
	}
}

// Orchestrator is safe for concurrent runs; a run shares nothing with another.
type Orchestrator struct {
	cfg      Config
	deps     Dependencies
	logger   logger.Logger
	obs      *observability.Observability
	now      func() time.Time
	newRunID func() string
	observe  func(runID string, status models.RunStatus)
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithRunIDs(gen func() string) Option {
	return func(o *Orchestrator) { o.newRunID = gen }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// WithStatusObserver is called on every status transition of a run.
func WithStatusObserver(fn func(runID string, status models.RunStatus)) Option {
	return func(o *Orchestrator) { o.observe = fn }
}

func New(cfg Config, deps Dependencies, log logger.Logger, opts ...Option) *Orchestrator {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultConfig().RunTimeout
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultConfig().PersistTimeout
	}
	if cfg.RisingLookbackDays <= 0 {
		cfg.RisingLookbackDays = DefaultConfig().RisingLookbackDays
	}
	if deps.Mentions == nil {
		if m, ok := deps.Interactions.(MentionStore); ok {
			deps.Mentions = m
		}
	}

	o := &Orchestrator{
		cfg:      cfg,
		deps:     deps,
		logger:   log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		obs:      observability.NewNoop(),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
		observe:  func(string, models.RunStatus) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
