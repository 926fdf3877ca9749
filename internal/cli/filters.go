package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charliek/webhook/internal/config"
	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
)

// filterFlags are the selection and display flags shared by monitor and logs
type filterFlags struct {
	count       int
	method      string
	fullBody    bool
	showHeaders bool
	path        string
	regex       bool
}

func (f *filterFlags) register(cmd *cobra.Command, defaultCount int) {
	cmd.Flags().IntVarP(&f.count, "count", "n", defaultCount, "Number of recent requests to fetch")
	cmd.Flags().StringVarP(&f.method, "method", "m", "", "Only show requests with this HTTP method")
	cmd.Flags().BoolVar(&f.fullBody, "full-body", false, "Show the full request body")
	cmd.Flags().BoolVar(&f.showHeaders, "show-headers", false, "Show request headers")
	cmd.Flags().StringVar(&f.path, "path", "", "Only show requests whose path contains this text")
	cmd.Flags().BoolVar(&f.regex, "regex", false, "Treat --path as a regular expression")
}

// spec resolves the FilterSpec: flags that were set explicitly win, the rest
// come from configuration.
func (f *filterFlags) spec(cmd *cobra.Command, cfg *config.Config, configCount int) (domain.FilterSpec, error) {
	spec := domain.FilterSpec{
		Method:       strings.ToUpper(strings.TrimSpace(f.method)),
		Limit:        configCount,
		ShowHeaders:  cfg.Webhook.ShowHeaders,
		ShowFullBody: cfg.Webhook.ShowFullBody,
		PathPattern:  f.path,
		PathRegex:    f.regex,
	}

	if cmd.Flags().Changed("count") {
		spec.Limit = f.count
	}
	if cmd.Flags().Changed("show-headers") {
		spec.ShowHeaders = f.showHeaders
	}
	if cmd.Flags().Changed("full-body") {
		spec.ShowFullBody = f.fullBody
	}

	if spec.Limit < 1 || spec.Limit > constants.MaxRequestCount {
		return spec, fmt.Errorf("%w: --count must be between 1 and %d, got %d", domain.ErrInvalidCount, constants.MaxRequestCount, spec.Limit)
	}
	if spec.PathRegex && spec.PathPattern == "" {
		return spec, fmt.Errorf("--regex requires --path")
	}

	return spec, nil
}
