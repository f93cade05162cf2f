// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Analytics     AnalyticsConfig         `mapstructure:"analytics"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	URL           string   `mapstructure:"url"`
	MentionsIndex string   `mapstructure:"mentions_index"`
	ReportsIndex  string   `mapstructure:"reports_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address     string `mapstructure:"address"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	SnapshotTTL int    `mapstructure:"snapshot_ttl_days"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// AnalyticsConfig tunes the analysis run. Zero values are replaced by applyDefaults.
type AnalyticsConfig struct {
	MinInteractions      int                 `mapstructure:"min_interactions"`
	BetweennessNodeLimit int                 `mapstructure:"betweenness_node_limit"`
	GraphBackend         string              `mapstructure:"graph_backend"` // native | gonum
	TopInfluencers       int                 `mapstructure:"top_influencers"`
	MaxFlowDepth         int                 `mapstructure:"max_flow_depth"`
	MinFollowers         int                 `mapstructure:"min_followers"`
	KOLThreshold         float64             `mapstructure:"kol_threshold"`
	ViralFloor           int                 `mapstructure:"viral_floor"`
	ViralMultiplier      float64             `mapstructure:"viral_multiplier"`
	RisingLookbackDays   int                 `mapstructure:"rising_lookback_days"`
	RunTimeout           int                 `mapstructure:"run_timeout"`     // milliseconds
	PersistTimeout       int                 `mapstructure:"persist_timeout"` // milliseconds
	MentionSource        string              `mapstructure:"mention_source"`  // postgres | elasticsearch
	Timezone             string              `mapstructure:"timezone"`        // IANA name for posting-time buckets
	ExpertiseKeywords    map[string][]string `mapstructure:"expertise_keywords"`
	Sentiment            ServiceConfig       `mapstructure:"sentiment"`
	Entities             ServiceConfig       `mapstructure:"entities"`
}

// ServiceConfig describes an HTTP model service.
type ServiceConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
	Concurrency int    `mapstructure:"concurrency"`
}

// IntegrationConfig holds settings for external delivery services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// NotificationConfig holds settings for the notify-insights worker.
type NotificationConfig struct {
	Recipients     []string `mapstructure:"recipients"`
	SubjectPrefix  string   `mapstructure:"subject_prefix"`
	AlertOnViral   bool     `mapstructure:"alert_on_viral"`
	MaxInsightsMsg int      `mapstructure:"max_insights_in_message"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// RegistryConfig points at the activity registry used for input validation.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
