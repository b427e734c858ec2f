package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"nonigma/internal/cipher"
	"nonigma/internal/ctxlog"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		kf      *keyFlags
		message string
		infile  string
		outfile string
		strip   bool
	)

	cmd := &cobra.Command{
		Use:     "encode",
		Aliases: []string{"decode"},
		Short:   "Encrypt or decrypt a message",
		Long: `Encrypt or decrypt a message. The message is taken from --message, from
--infile, or from standard input when it is piped.

Encoding and decoding are the same operation; "decode" is an alias.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kf.resolve(cmd)
			if err != nil {
				return err
			}

			in, err := input(cmd, message, infile)
			if err != nil {
				return err
			}
			defer ctxlog.Close(cmd.Context(), "input", in)

			// Encode into memory first so a failure leaves no partial output.
			out := &bytes.Buffer{}
			enc, err := cipher.NewEncoder(out, k, cipher.WithStrip(strip))
			if err != nil {
				return err
			}
			if _, err := io.Copy(enc, in); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}

			ctxlog.Get(cmd.Context()).Debug("encoded message", "bytes", out.Len(), "positions", enc.Positions())

			if outfile != "" {
				if err := os.WriteFile(outfile, out.Bytes(), 0644); err != nil {
					return fmt.Errorf("write %q: %w", outfile, err)
				}
				return nil
			}

			out.WriteByte('\n')
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	kf = addKeyFlags(cmd)
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message to encrypt or decrypt")
	cmd.Flags().StringVarP(&infile, "infile", "i", "", "Path to an input file")
	cmd.Flags().StringVarP(&outfile, "outfile", "o", "", "Path to an output file (default: stdout)")
	cmd.Flags().BoolVarP(&strip, "strip", "s", false, "Filter out unsupported characters rather than fail")
	cmd.MarkFlagsMutuallyExclusive("message", "infile")

	return cmd
}

func input(cmd *cobra.Command, message, infile string) (io.ReadCloser, error) {
	if message != "" {
		return io.NopCloser(strings.NewReader(message)), nil
	}

	if infile != "" {
		f, err := os.Open(infile)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return f, nil
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			return io.NopCloser(f), nil
		}
		return nil, errors.New("either a message or input file must be specified")
	}
	return io.NopCloser(cmd.InOrStdin()), nil
}
