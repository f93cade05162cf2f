// internal/workers/analytics/analyze-company/models.go
package analyzecompany

import "social-insights/internal/models"

type Input struct {
	CompanyDomain   string `json:"companyDomain"`
	IncludeMentions bool   `json:"includeMentions"`
	DaysBack        int    `json:"daysBack,omitempty"`
}

type Output struct {
	RunID            string                  `json:"runId"`
	Status           string                  `json:"status"`
	InteractionCount int                     `json:"interactionCount"`
	MentionCount     int                     `json:"mentionCount"`
	KOLCount         int                     `json:"kolCount"`
	ViralPostCount   int                     `json:"viralPostCount"`
	Insights         []models.Insight        `json:"insights"`
	DimensionErrors  []models.DimensionError `json:"dimensionErrors,omitempty"`
	ExecutionTime    int64                   `json:"executionTime"` // milliseconds
}
