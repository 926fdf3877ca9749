package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
)

// Validate checks the configuration for errors, reporting all of them at once
func Validate(config *Config) error {
	var errs []string
	w := config.Webhook

	if err := ValidateBaseURL(w.BaseURL); err != nil {
		errs = append(errs, "webhook.base_url: "+err.Error())
	}

	if w.MonitorCount < 1 || w.MonitorCount > constants.MaxRequestCount {
		errs = append(errs, fmt.Sprintf("webhook.monitor_count: must be between 1 and %d, got %d", constants.MaxRequestCount, w.MonitorCount))
	}
	if w.LogsCount < 1 || w.LogsCount > constants.MaxRequestCount {
		errs = append(errs, fmt.Sprintf("webhook.logs_count: must be between 1 and %d, got %d", constants.MaxRequestCount, w.LogsCount))
	}
	if w.Interval.Std() < constants.MinInterval {
		errs = append(errs, fmt.Sprintf("webhook.interval: must be at least %s, got %s", constants.MinInterval, w.Interval))
	}
	if w.BodyPreviewLength < 1 {
		errs = append(errs, fmt.Sprintf("webhook.body_preview_length: must be positive, got %d", w.BodyPreviewLength))
	}
	if w.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("webhook.request_timeout: must be positive, got %s", w.RequestTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// ValidateBaseURL checks that a service URL is an absolute http(s) URL
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
