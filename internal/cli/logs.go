package cli

import (
	"github.com/spf13/cobra"

	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
	"github.com/charliek/webhook/internal/render"
)

func (a *app) newLogsCmd() *cobra.Command {
	var (
		token      string
		jsonOutput bool
		filters    filterFlags
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent requests of an inbox",
		Long: `List the most recent requests captured for a token.

Examples:
  webhook logs --token <token>                  # Last 50 requests
  webhook logs --token <token> -n 10 -m POST    # Last 10, POST only
  webhook logs --token <token> --path '^/v[12]/' --regex
  webhook logs --token <token> --json           # Machine-readable output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filters.spec(cmd, a.cfg, a.cfg.Webhook.LogsCount)
			if err != nil {
				return err
			}
			filter, err := domain.NewFilter(spec)
			if err != nil {
				return err
			}

			records, err := a.client().ListRequests(cmd.Context(), domain.ListParams{
				Token:  token,
				Limit:  spec.Limit,
				Method: spec.Method,
			})
			if err != nil {
				return err
			}
			records = render.Filter(records, filter)

			if jsonOutput {
				return writeJSON(a.stdout, toJSONRecords(records))
			}

			r := a.renderer(a.stdout)
			lines := r.LogsHeader(len(records), token, spec)
			for _, rec := range records {
				lines = append(lines, r.LogLines(rec, spec)...)
			}
			if len(records) > 0 {
				lines = append(lines, r.LogsFooter()...)
			}
			return a.write(lines)
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "Token to list requests for")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("token")
	filters.register(cmd, constants.DefaultLogsCount)
	return cmd
}
