package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"nonigma/internal/key"
	"nonigma/internal/keyring"

	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage named keys in the keyring",
	}

	cmd.AddCommand(
		newKeysSaveCmd(),
		newKeysListCmd(),
		newKeysShowCmd(),
		newKeysDeleteCmd(),
	)

	return cmd
}

func newKeysSaveCmd() *cobra.Command {
	var kf *keyFlags

	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Store a key under NAME, replacing any key already stored there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kf.resolve(cmd)
			if err != nil {
				return err
			}
			return withKeyring(cmd, func() error {
				return keyring.Put(args[0], k, time.Now())
			})
		},
	}

	kf = addKeyFlags(cmd)

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyring(cmd, func() error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tWHEELS\tPOSITIONS\tUSES")
				for name, entry := range keyring.All() {
					k, err := entry.CipherKey()
					if err != nil {
						fmt.Fprintf(tw, "%s\t(invalid: %v)\t\t%d\n", name, err, entry.Uses)
						continue
					}
					wheels, positions := key.Format(k)
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", name, wheels, positions, entry.Uses)
				}
				return tw.Flush()
			})
		},
	}
}

func newKeysShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show NAME",
		Short:             "Print a stored key as YAML key file contents",
		ValidArgsFunction: completeKeyNames,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyring(cmd, func() error {
				entry, err := keyring.Get(args[0])
				if err != nil {
					return err
				}
				k, err := entry.CipherKey()
				if err != nil {
					return err
				}
				wheels, positions := key.Format(k)
				fmt.Fprintf(cmd.OutOrStdout(), "wheels: [%s]\npositions: [%s]\n", wheels, positions)
				return nil
			})
		},
	}
}

func newKeysDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "delete NAME",
		Aliases:           []string{"rm"},
		Short:             "Remove a stored key",
		ValidArgsFunction: completeKeyNames,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyring(cmd, func() error {
				return keyring.Delete(args[0])
			})
		},
	}
}
