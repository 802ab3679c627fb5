package cli

import (
	"github.com/spf13/cobra"

	"github.com/hairtrack/hairtrack-api/internal/app"
)

func newServeCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			a, err := app.New(cmd.Context(), cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on; defaults to PORT")

	return cmd
}
