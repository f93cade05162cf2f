// internal/workers/analytics/identify-kols/config.go
package identifykols

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultDaysBack int
	MaxDaysBack     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         60 * time.Second,
		DefaultDaysBack: 30,
		MaxDaysBack:     90,
	}
}
