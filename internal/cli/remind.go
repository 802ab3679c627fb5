package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hairtrack/hairtrack-api/internal/app"
)

func newRemindCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Email weekly reminders to users with no analysis this week",
		Long: `Sends the weekly check-in email to every user with weekly reminders enabled
who has not run an analysis since Monday (UTC). Without SENDGRID_API_KEY the
emails are logged instead of sent.`,
		Example: `  hairctl remind --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.Reminders.Run(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List due users without sending")

	return cmd
}
