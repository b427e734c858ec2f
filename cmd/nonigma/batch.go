package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"nonigma/internal/batch"
	"nonigma/internal/key"

	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		kf     *keyFlags
		opts   batch.Options
		suffix string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Encrypt or decrypt many files with the same starting key",
		Long: `Encrypt or decrypt every FILE as a separate message starting from the same
key. Files are processed concurrently. Each result is written next to its input
with --suffix appended, or into --out-dir.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if suffix == "" && outDir == "" {
				return errors.New("--suffix may only be empty when --out-dir is set")
			}

			k, err := kf.resolve(cmd)
			if err != nil {
				return err
			}

			jobs := make([]batch.Job, len(args))
			for i, in := range args {
				out := in + suffix
				if outDir != "" {
					out = filepath.Join(outDir, filepath.Base(in)+suffix)
				}
				jobs[i] = batch.Job{Input: in, Output: out}
			}

			results, err := batch.Run(cmd.Context(), k, jobs, opts)
			if err != nil {
				return err
			}

			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes, end positions %s)\n", r.Job.Input, r.Job.Output, r.BytesWritten, key.FormatPositions(r.Positions))
			}
			return nil
		},
	}

	kf = addKeyFlags(cmd)
	cmd.Flags().BoolVarP(&opts.Strip, "strip", "s", false, "Filter out unsupported characters rather than fail")
	cmd.Flags().IntVarP(&opts.Concurrency, "jobs", "j", 0, "Files to process at once (default: number of CPUs)")
	cmd.Flags().StringVar(&suffix, "suffix", ".nonigma", "Suffix appended to output file names")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for output files")

	return cmd
}
