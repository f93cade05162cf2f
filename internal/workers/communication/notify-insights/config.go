// internal/workers/communication/notify-insights/config.go
package notifyinsights

import (
	"fmt"
	"time"

	"social-insights/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	FromEmail     string
	Recipients    []string
	SubjectPrefix string
	AlertOnViral  bool
	TopicARN      string
	MaxInsights   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		SubjectPrefix: "[Social Insights]",
		MaxInsights:   10,
	}
}

// FromAppConfig builds the worker config from the application config.
func FromAppConfig(cfg *config.Config) *Config {
	c := LoadConfig()
	c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	c.FromEmail = cfg.Integrations.AWS.SES.FromEmail
	c.Recipients = cfg.Notifications.Recipients
	c.AlertOnViral = cfg.Notifications.AlertOnViral && cfg.Integrations.AWS.SNS.Enabled
	c.TopicARN = cfg.Integrations.AWS.SNS.TopicARN
	if cfg.Notifications.SubjectPrefix != "" {
		c.SubjectPrefix = cfg.Notifications.SubjectPrefix
	}
	if cfg.Notifications.MaxInsightsMsg > 0 {
		c.MaxInsights = cfg.Notifications.MaxInsightsMsg
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("integrations.aws.ses.from_email is required")
	}
	if c.AlertOnViral && c.TopicARN == "" {
		return fmt.Errorf("integrations.aws.sns.topic_arn is required when alert_on_viral is set")
	}
	return nil
}
