// Package kol scores author influence, classifies domain expertise and finds
// key opinion leaders and fast-growing accounts.
package kol

import (
	"context"
	"errors"
	"sort"
	"time"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/common/logger"
	"social-insights/internal/models"
)

const (
	DefaultMinFollowers    = 5000
	DefaultThreshold       = 80.0
	DomainFilterMinPercent = 20.0

	risingMinGrowth    = 20.0
	risingMinFollowers = 1000
	risingLimit        = 20
)

var ErrNoSnapshotSource = errors.New("NO_SNAPSHOT_SOURCE")

// SnapshotSource returns the follower count recorded for handle nearest to at.
// found is false when no snapshot exists.
type SnapshotSource interface {
	FollowersAt(ctx context.Context, handle string, at time.Time) (followers int, found bool, err error)
}

type Config struct {
	MinFollowers int
	Threshold    float64
	Keywords     map[string][]string
}

func DefaultConfig() Config {
	return Config{
		MinFollowers: DefaultMinFollowers,
		Threshold:    DefaultThreshold,
		Keywords:     DefaultExpertiseKeywords(),
	}
}

type Identifier struct {
	cfg       Config
	snapshots SnapshotSource
	logger    logger.Logger
	now       func() time.Time
}

type Option func(*Identifier)

func WithClock(now func() time.Time) Option {
	return func(i *Identifier) { i.now = now }
}

func WithSnapshots(src SnapshotSource) Option {
	return func(i *Identifier) { i.snapshots = src }
}

func NewIdentifier(cfg Config, log logger.Logger, opts ...Option) *Identifier {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultExpertiseKeywords()
	}
	id := &Identifier{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "kol"}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(id)
	}
	return id
}

// Profile scores a single author regardless of thresholds.
func (id *Identifier) Profile(a models.AuthorProfile) models.KOLProfile {
	scores, primary := ClassifyExpertise(a, id.cfg.Keywords)
	return models.KOLProfile{
		Username:        a.Username,
		InfluenceScore:  InfluenceScore(a, id.now()),
		PrimaryDomain:   primary,
		ExpertiseScores: scores,
		EngagementRate:  AuthorEngagementRate(a),
		Verified:        a.Verified,
		Followers:       a.Followers,
	}
}

// IdentifyKOLs keeps authors with at least MinFollowers whose score reaches
// minInfluence (the configured threshold when nil). A non-empty domainFilter
// also requires DomainFilterMinPercent expertise in that domain.
func (id *Identifier) IdentifyKOLs(authors []models.AuthorProfile, domainFilter string, minInfluence *float64) []models.KOLProfile {
	threshold := id.cfg.Threshold
	if minInfluence != nil {
		threshold = *minInfluence
	}

	kols := make([]models.KOLProfile, 0)
	for _, a := range authors {
		if a.Followers < id.cfg.MinFollowers {
			continue
		}
		p := id.Profile(a)
		if p.InfluenceScore < threshold {
			continue
		}
		if domainFilter != "" && p.ExpertiseScores[domainFilter] < DomainFilterMinPercent {
			continue
		}
		kols = append(kols, p)
	}

	sort.SliceStable(kols, func(i, j int) bool {
		return kols[i].InfluenceScore > kols[j].InfluenceScore
	})
	id.logger.Debug("kols identified", map[string]interface{}{
		"authors":   len(authors),
		"kols":      len(kols),
		"threshold": threshold,
		"domain":    domainFilter,
	})
	return kols
}

// IdentifyRisingInfluencers compares current follower counts with the
// snapshot lookbackDays ago. Authors without a snapshot are skipped.
func (id *Identifier) IdentifyRisingInfluencers(ctx context.Context, authors []models.AuthorProfile, lookbackDays int) ([]models.RisingInfluencer, error) {
	if id.snapshots == nil {
		return nil, ErrNoSnapshotSource
	}
	at := id.now().AddDate(0, 0, -lookbackDays)

	rising := make([]models.RisingInfluencer, 0)
	for _, a := range authors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.Followers < risingMinFollowers {
			continue
		}
		historical, found, err := id.snapshots.FollowersAt(ctx, a.Username, at)
		if err != nil {
			return nil, apperrors.NewSnapshotLookupFailedError(a.Username, err)
		}
		if !found || historical <= 0 {
			continue
		}
		growth := float64(a.Followers-historical) / float64(historical) * 100
		if growth <= risingMinGrowth {
			continue
		}
		rising = append(rising, models.RisingInfluencer{
			Username:            a.Username,
			CurrentFollowers:    a.Followers,
			HistoricalFollowers: historical,
			GrowthRate:          growth,
		})
	}

	sort.SliceStable(rising, func(i, j int) bool {
		return rising[i].GrowthRate > rising[j].GrowthRate
	})
	if len(rising) > risingLimit {
		rising = rising[:risingLimit]
	}
	return rising, nil
}
