package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/crawlmeter/crawlmeter/internal/bootstrap"
	"github.com/crawlmeter/crawlmeter/internal/config"
)

// runServer is a variable so tests can substitute the server bootstrap.
var runServer = func(ctx context.Context, cfg *config.Config) error {
	return bootstrap.RunAPIServer(ctx, cfg)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if opts.configPath != "" {
				cfg, err = config.Load(opts.configPath)
			} else {
				cfg, err = config.LoadFromEnv()
			}
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}
