package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamechart/internal/server"
	"github.com/matzehuels/flamechart/pkg/pipeline"
)

// serveCommand creates the serve command, which hosts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host profiles and render flame chart viewports over HTTP",
		Long: `Serve starts an HTTP server. Profiles are uploaded with POST /profiles and
kept in memory; viewports are rendered with GET /profiles/{id}/render.png.`,
		Example: `  flamechart serve --addr :8080
  curl --data-binary @stacks.folded 'localhost:8080/profiles?name=stacks.folded'
  curl -o view.png 'localhost:8080/profiles/<id>/render.png?left=0&width=500&search=parse'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			var defaults pipeline.Options
			if err := c.applyConfig(&defaults); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, server.Config{
				Addr:           addr,
				MaxUploadBytes: c.Config.Server.MaxUploadBytes,
				Defaults:       defaults,
				Logger:         c.Logger,
			})
			printInfo("Listening on %s", StyleLink.Render(addr))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
