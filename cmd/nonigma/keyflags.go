package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"nonigma/internal/cipher"
	"nonigma/internal/ctxlog"
	"nonigma/internal/key"
	"nonigma/internal/keyring"
	"nonigma/internal/rec"

	"github.com/spf13/cobra"
)

type keyFlags struct {
	wheels    string
	positions string
	file      string
	name      string
}

func addKeyFlags(cmd *cobra.Command) *keyFlags {
	f := &keyFlags{}
	cmd.Flags().StringVarP(&f.wheels, "wheelorder", "w", "", "Comma separated list of wheels, e.g. lg,dg,bl,pu,re,or,pi,pe,gr")
	cmd.Flags().StringVarP(&f.positions, "wheelpositions", "p", "", "Comma separated list of wheel starting positions, e.g. 11,14,12,11,17,9,9,13,0")
	cmd.Flags().StringVar(&f.file, "key-file", "", "YAML key file with wheels and positions")
	cmd.Flags().StringVar(&f.name, "key", "", "Name of a key stored in the keyring")
	cmd.MarkFlagsRequiredTogether("wheelorder", "wheelpositions")
	cmd.MarkFlagsMutuallyExclusive("wheelorder", "key-file", "key")
	cmd.RegisterFlagCompletionFunc("key", completeKeyNames)
	return f
}

func (f *keyFlags) resolve(cmd *cobra.Command) (cipher.Key, error) {
	switch {
	case f.wheels != "":
		return key.Parse(f.wheels, f.positions)

	case f.file != "":
		return key.Load(cmd.Context(), f.file)

	case f.name != "":
		var k cipher.Key
		err := withKeyring(cmd, func() (err error) {
			k, err = keyring.Lookup(f.name, time.Now())
			return err
		})
		return k, err

	default:
		return cipher.Key{}, errors.New("a key is required: use --wheelorder and --wheelpositions, --key-file or --key")
	}
}

// withKeyring opens the keyring for the duration of fn.
func withKeyring(cmd *cobra.Command, fn func() error) (err error) {
	file, err := keyringFile(cmd)
	if err != nil {
		return err
	}
	defer rec.Wrap(&err, "keyring %q: %w", file)

	ctxlog.Get(cmd.Context()).Debug("opening keyring", "file", file)
	keyring.Open(keyring.Config{File: file})
	defer ctxlog.Close(cmd.Context(), "keyring", keyring.Closer())

	return fn()
}

// completeKeyNames offers the names stored in the keyring.
func completeKeyNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}

	var names []string
	err := withKeyring(cmd, func() error {
		for _, name := range keyring.Names() {
			if strings.HasPrefix(name, toComplete) {
				names = append(names, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
