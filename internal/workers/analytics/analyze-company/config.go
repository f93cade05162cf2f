// internal/workers/analytics/analyze-company/config.go
package analyzecompany

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultDaysBack int
	MaxDaysBack     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         150 * time.Second,
		DefaultDaysBack: 7,
		MaxDaysBack:     90,
	}
}
