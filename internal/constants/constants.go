// Package constants provides shared configuration values used across the webhook CLI.
package constants

import "time"

// Configuration file defaults
const (
	// SharedConfigFile is the checked-in configuration template
	SharedConfigFile = "webhook.yaml"

	// LocalConfigFile overrides SharedConfigFile and is meant to stay out of version control
	LocalConfigFile = "webhook.local.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "WEBHOOK_"

	// DefaultBaseURL is a placeholder until a real service URL is configured
	DefaultBaseURL = "https://your-webhook-service.com"
)

// Request count defaults
const (
	// DefaultMonitorCount is the number of recent requests shown when monitoring starts
	DefaultMonitorCount = 10

	// DefaultLogsCount is the number of requests fetched by the logs command
	DefaultLogsCount = 50

	// DetailLookupLimit is how far back the show command searches for a request id
	DetailLookupLimit = 100

	// MaxRequestCount is the largest batch the client will ask the service for
	MaxRequestCount = 1000
)

// Timeout and duration defaults
const (
	// DefaultInterval is the default monitor refresh interval
	DefaultInterval = 3 * time.Second

	// MinInterval keeps the monitor from hammering the service
	MinInterval = 250 * time.Millisecond

	// DefaultRequestTimeout is the default timeout for service requests
	DefaultRequestTimeout = 30 * time.Second
)

// Display settings
const (
	// DefaultBodyPreviewLength is the rune budget of the inline body summary
	DefaultBodyPreviewLength = 50

	// ShortIDLength is the number of id characters shown in listings
	ShortIDLength = 8

	// SeparatorWidth is the width of the rule between monitor announcements
	SeparatorWidth = 80

	// DetailRuleWidth is the width of the rule under the detail banner
	DetailRuleWidth = 50

	// SectionRuleWidth is the width of the rule under section titles
	SectionRuleWidth = 30

	// TimeFormat is the clock format used in listings
	TimeFormat = "15:04:05"
)

// Pattern limits
const (
	// MaxPatternLength is the maximum allowed length for path filter patterns
	MaxPatternLength = 256
)
