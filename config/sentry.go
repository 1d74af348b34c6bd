package config

import "fmt"

// SentryConfig defines settings for Sentry error monitoring. Failed
// constructions are reported when DSN is set.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be in [0, 1], got %v", c.TracesSampleRate)
	}
	return nil
}
