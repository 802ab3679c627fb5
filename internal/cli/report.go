package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hairtrack/hairtrack-api/internal/app"
	"github.com/hairtrack/hairtrack-api/internal/domain/history"
)

func newReportCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var (
		userFlag    string
		sessionFlag string
		asHTML      bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a session report",
		Example: `  hairctl report --user 6f1c... --session 0b9e...
  hairctl report --user 6f1c... --session 0b9e... --html > report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			sessionID, err := uuid.Parse(sessionFlag)
			if err != nil {
				return fmt.Errorf("invalid --session: %w", err)
			}

			cfg, err := g.config()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			md, err := a.History.Report(cmd.Context(), userID, sessionID)
			if err != nil {
				return err
			}
			if asHTML {
				_, err = cmd.OutOrStdout().Write(history.RenderHTML(md))
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID")
	cmd.Flags().StringVar(&sessionFlag, "session", "", "Session ID")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
