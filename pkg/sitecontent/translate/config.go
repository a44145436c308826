package translate

import (
	"log/slog"
	"time"
)

// Config selects and tunes the provider chain.
type Config struct {
	// GoogleAPIKey enables the Google provider. Without it Google is left out.
	GoogleAPIKey string
	GoogleURL    string

	MyMemoryURL      string
	MyMemoryEmail    string
	MyMemoryDisabled bool

	Timeout time.Duration
	// RatePerSecond caps calls per provider. Zero disables the limiter.
	RatePerSecond float64
	Burst         int
	Breaker       BreakerConfig
}

// NewFromConfig builds the default chain: Google when keyed, then MyMemory.
func NewFromConfig(cfg Config) *Orchestrator {
	var providers []Provider

	if cfg.GoogleAPIKey != "" {
		g, err := NewGoogle(cfg.GoogleAPIKey, cfg.GoogleURL, cfg.Timeout)
		if err != nil {
			slog.Error("Failed to configure Google translate", "error", err)
		} else {
			providers = append(providers, wrap(g, cfg))
		}
	}
	if !cfg.MyMemoryDisabled {
		providers = append(providers, wrap(NewMyMemory(cfg.MyMemoryURL, cfg.MyMemoryEmail, cfg.Timeout), cfg))
	}

	o := New(providers...)
	slog.Info("Translation providers configured", "providers", o.Providers())
	return o
}

func wrap(p Provider, cfg Config) Provider {
	return WithRateLimit(WithBreaker(p, cfg.Breaker), cfg.RatePerSecond, cfg.Burst)
}
