// internal/workers/communication/notify-insights/models.go
package notifyinsights

import "time"

type Input struct {
	CompanyDomain string   `json:"companyDomain"`
	Recipients    []string `json:"recipients,omitempty"`
}

type Output struct {
	NotificationID string    `json:"notificationId"`
	RunID          string    `json:"runId"`
	EmailMessageID string    `json:"emailMessageId"`
	AlertMessageID string    `json:"alertMessageId,omitempty"`
	Recipients     int       `json:"recipients"`
	InsightCount   int       `json:"insightCount"`
	ViralAlert     bool      `json:"viralAlert"`
	SentAt         time.Time `json:"sentAt"`
}

// viralAlert is the SNS message body.
type viralAlert struct {
	Type          string      `json:"type"`
	CompanyDomain string      `json:"companyDomain"`
	RunID         string      `json:"runId"`
	ViralCount    int         `json:"viralCount"`
	Posts         []alertPost `json:"posts"`
}

type alertPost struct {
	InteractionID   string  `json:"interactionId"`
	Author          string  `json:"author"`
	TotalEngagement int     `json:"totalEngagement"`
	ViralScore      float64 `json:"viralScore"`
}
