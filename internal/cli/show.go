package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) newShowCmd() *cobra.Command {
	var (
		token      string
		requestID  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the details of one request",
		Long: `Show every detail of one captured request: headers, query parameters
and the formatted body. The short id printed by 'logs' and 'monitor' works as
long as it is unique among the inbox's last 100 requests.

Examples:
  webhook show --token <token> --request-id <id>
  webhook show --token <token> --request-id 3f2a9c1e --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.client().GetRequest(cmd.Context(), token, requestID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(a.stdout, toJSONRecord(rec))
			}

			return a.write(a.renderer(a.stdout).DetailLines(rec))
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "Token the request belongs to")
	cmd.Flags().StringVarP(&requestID, "request-id", "r", "", "Request id (or a unique prefix)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("request-id")
	return cmd
}
