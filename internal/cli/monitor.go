package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charliek/webhook/internal/client"
	"github.com/charliek/webhook/internal/config"
	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/monitor"
	"github.com/charliek/webhook/internal/tui"
)

func (a *app) newMonitorCmd() *cobra.Command {
	var (
		token    string
		interval string
		useTUI   bool
		filters  filterFlags
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch an inbox for new requests",
		Long: `Show the most recent requests of an inbox, then poll for new ones and
announce each as it arrives. A token is generated when --token is omitted.
Press Ctrl+C to stop.

Examples:
  webhook monitor                            # New token, watch it
  webhook monitor --token <token>            # Watch an existing inbox
  webhook monitor --token <token> -m POST    # Only POST requests
  webhook monitor --token <token> --path /stripe --full-body
  webhook monitor --token <token> --tui      # Full-screen view`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filters.spec(cmd, a.cfg, a.cfg.Webhook.MonitorCount)
			if err != nil {
				return err
			}

			every := a.cfg.Webhook.Interval
			if cmd.Flags().Changed("interval") {
				every, err = config.ParseDuration(interval)
				if err != nil {
					return fmt.Errorf("--interval: %w", err)
				}
			}
			if every.Std() < constants.MinInterval {
				return fmt.Errorf("--interval must be at least %s, got %s", constants.MinInterval, every)
			}

			svc := a.client()
			r := a.renderer(a.stdout)

			if token == "" {
				token = client.NewToken()
				if err := a.write(r.GeneratedToken(token, svc.InboxURL(token), false)); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := monitor.Config{
				Token:    token,
				Spec:     spec,
				Interval: every.Std(),
			}

			if useTUI {
				return tui.Run(ctx, svc, r, cfg, a.logger)
			}

			m, err := monitor.New(svc, r, a.stdout, cfg,
				monitor.WithErrorWriter(a.stderr),
				monitor.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			return m.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "Token to monitor (generated when omitted)")
	cmd.Flags().StringVarP(&interval, "interval", "i", "3", "Refresh interval in seconds, or a duration like 500ms")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Use the interactive full-screen view")
	filters.register(cmd, constants.DefaultMonitorCount)
	return cmd
}
