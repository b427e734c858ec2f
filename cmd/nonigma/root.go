package main

import (
	"fmt"
	"os"
	"path/filepath"

	"nonigma/internal/ctxlog"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logConfig ctxlog.Config

	root := &cobra.Command{
		Use:   "nonigma",
		Short: "Encrypt or decrypt messages using the nonigma algorithm",
		Long: `nonigma routes every character through a fixed wiring of nine slots while
nine interchangeable wheels perturb the route and advance after each character.

Encoding is symmetric: running the output through the machine again with the
same starting key gives back the original message.

  nonigma encode -w lg,dg,bl,pu,re,or,pi,pe,gr -p 11,14,12,11,17,9,9,13,0 -m HelloWorld!
  nonigma decode -w lg,dg,bl,pu,re,or,pi,pe,gr -p 11,14,12,11,17,9,9,13,0 -m BaMpk.-B1Ra`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(ctxlog.Setup(cmd.Context(), "nonigma", logConfig))
		},
	}

	root.PersistentFlags().StringVar(&logConfig.Level, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logConfig.Format, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&logConfig.Dir, "log-dir", "", "Also write logs to a timestamped file in this directory")
	root.PersistentFlags().String("keyring", "", "Keyring file for named keys (default: user config dir)")

	root.AddCommand(
		newEncodeCmd(),
		newBatchCmd(),
		newKeysCmd(),
		newWheelsCmd(),
		newSelfTestCmd(),
		newServeCmd(),
	)

	return root
}

func keyringFile(cmd *cobra.Command) (string, error) {
	if f, _ := cmd.Flags().GetString("keyring"); f != "" {
		return f, nil
	}
	if f := os.Getenv("NONIGMA_KEYRING"); f != "" {
		return f, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate keyring: %w", err)
	}
	return filepath.Join(dir, "nonigma", "keyring.db"), nil
}
