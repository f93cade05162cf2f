// internal/workers/analytics/identify-kols/models.go
package identifykols

import "social-insights/internal/models"

type Input struct {
	CompanyDomain   string   `json:"companyDomain"`
	IncludeMentions bool     `json:"includeMentions"`
	DaysBack        int      `json:"daysBack,omitempty"`
	DomainFilter    string   `json:"domainFilter,omitempty"`
	MinInfluence    *float64 `json:"minInfluence,omitempty"`
}

type Output struct {
	CompanyDomain     string                    `json:"companyDomain"`
	AuthorCount       int                       `json:"authorCount"`
	KOLCount          int                       `json:"kolCount"`
	KOLs              []models.KOLProfile       `json:"kols"`
	RisingInfluencers []models.RisingInfluencer `json:"risingInfluencers"`
	ExecutionTime     int64                     `json:"executionTime"` // milliseconds
}
