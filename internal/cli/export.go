package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hairtrack/hairtrack-api/internal/app"
)

func newExportCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var userFlag, out string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export a user's analysis history as Parquet",
		Example: `  hairctl export --user 6f1c... --out history.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
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

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := a.History.Export(cmd.Context(), userID, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(out)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID")
	cmd.Flags().StringVarP(&out, "out", "o", "history.parquet", "Output file")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
