package orchestrator

import (
	"context"
	"errors"

	"social-insights/internal/analytics/kol"
	"social-insights/internal/models"
)

// KOLReport is the on-demand KOL ranking for one company.
type KOLReport struct {
	CompanyDomain     string                    `json:"companyDomain"`
	AuthorCount       int                       `json:"authorCount"`
	KOLs              []models.KOLProfile       `json:"kols"`
	RisingInfluencers []models.RisingInfluencer `json:"risingInfluencers"`
}

// RankKOLs fetches the window and ranks its authors without running the other
// dimensions or persisting anything. Unlike AnalyzeCompany, a failing snapshot
// lookup is returned as an error.
func (o *Orchestrator) RankKOLs(ctx context.Context, companyDomain string, daysBack int, includeMentions bool, domainFilter string, minInfluence *float64) (*KOLReport, error) {
	if o.deps.KOL == nil {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()
	ctx, span := o.obs.StartSpan(ctx, "analysis.kols", map[string]string{"company": companyDomain})
	defer span.End()

	batch, _, err := o.fetch(ctx, companyDomain, daysBack, includeMentions)
	if err != nil {
		return nil, err
	}
	authors, err := o.resolveAuthors(ctx, batch)
	if err != nil {
		return nil, err
	}

	report := &KOLReport{
		CompanyDomain:     companyDomain,
		AuthorCount:       len(authors),
		KOLs:              o.deps.KOL.IdentifyKOLs(authors, domainFilter, minInfluence),
		RisingInfluencers: []models.RisingInfluencer{},
	}
	rising, err := o.deps.KOL.IdentifyRisingInfluencers(ctx, authors, o.cfg.RisingLookbackDays)
	switch {
	case errors.Is(err, kol.ErrNoSnapshotSource):
	case err != nil:
		return nil, err
	default:
		report.RisingInfluencers = rising
	}
	return report, nil
}
