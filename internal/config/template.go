package config

import (
	"fmt"
	"os"
)

// Template is the annotated file written by `webhook config init`
const Template = `# Shared configuration for the webhook CLI.
# Put machine-specific overrides in webhook.local.yaml and keep that file out
# of version control. WEBHOOK_* environment variables (or a .env file)
# override both, and command-line flags override everything.
webhook:
  # Base URL of the webhook-capture service
  base_url: https://your-webhook-service.com

  # Requests shown when monitoring starts, and fetched by 'webhook logs'
  monitor_count: 10
  logs_count: 50

  # Monitor refresh interval (duration like 3s or 500ms, or seconds)
  interval: 3s

  # Display defaults
  show_headers: false
  show_full_body: false
  body_preview_length: 50

  # Timeout for each request to the service
  request_timeout: 30s
`

// WriteTemplate writes Template to path. An existing file is only replaced
// when force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
