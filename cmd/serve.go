package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kuvia/kuvia/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve a directory as a gallery",
		Long: `Serve a directory tree as a gallery over HTTP.

The page loads its image list from /imagelist.json, which lists the images
of the directory named by the dir query parameter at request time, so new
images show up on reload. Image files below the root are served as is.

With --watch, pages connected to the server reload whenever an image or the
page template changes.

Examples:
  kuvia serve                        # Serve . on localhost:8080
  kuvia serve --root photos --watch  # Serve photos/, reloading on changes
  kuvia serve -r --port 9000         # Include images of subdirectories`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	addServerFlags(cmd.Flags())
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := a.load(cmd, args)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("serving gallery: %w", err)
	}
	logger.Info(cmd.Context(), "Server stopped")
	return nil
}
