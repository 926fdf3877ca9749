package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/charliek/webhook/internal/client"
)

// clipboardWrite is replaced in tests
var clipboardWrite = clipboard.WriteAll

func (a *app) newGenerateCmd() *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new webhook token",
		Long: `Generate a new webhook token and print the URL to send webhooks to.

Examples:
  webhook generate         # Print a new token and its URL
  webhook generate --copy  # Also copy the URL to the clipboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := client.NewToken()
			inboxURL := a.client().InboxURL(token)

			r := a.renderer(a.stdout)
			if err := a.write(r.GeneratedToken(token, inboxURL, true)); err != nil {
				return err
			}

			if copyURL {
				if err := clipboardWrite(inboxURL); err != nil {
					fmt.Fprintf(a.stderr, "Warning: could not copy to clipboard: %v\n", err)
				} else {
					fmt.Fprintln(a.stdout, "Webhook URL copied to clipboard.")
				}
			}

			a.logger.Debug("generated token", "token", token)
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the webhook URL to the clipboard")
	return cmd
}
