package main

import (
	"context"
	"fmt"

	"nonigma/internal/cipher"
	"nonigma/internal/ctxlog"
	"nonigma/internal/keyring"
	"nonigma/internal/metrics"
	"nonigma/internal/rec"
	"nonigma/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var config string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP encoding service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctxlog.Get(cmd.Context())

			err := serve(cmd.Context(), config)
			if err != nil {
				logger.Error("server stopped unexpectedly", "error", err)
				return err
			}
			logger.Info("server gracefully stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "config.yaml", "Path to the server configuration file")

	return cmd
}

func serve(ctx context.Context, config string) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	c, err := LoadConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := cipher.SelfTest(); err != nil {
		return err
	}

	if c.Keyring.File != "" {
		logger.Info("opening keyring", "file", c.Keyring.File)
		keyring.Open(c.Keyring)
		defer ctxlog.Close(ctx, "keyring", keyring.Closer())
	}

	collector, err := metrics.New(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	logger.Info("starting server", "port", c.Server.Port)
	srv := server.New(c.Server, collector)

	return srv.Run(ctx)
}
