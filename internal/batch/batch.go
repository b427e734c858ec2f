// Package batch encodes many files with the same starting key. Every file is
// a separate message with its own wheel state, so files run concurrently.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"nonigma/internal/cipher"
	"nonigma/internal/ctxlog"
	"nonigma/internal/machine"
	"nonigma/internal/rec"

	"golang.org/x/sync/errgroup"
)

type Job struct {
	Input  string
	Output string
}

type Result struct {
	Job          Job
	BytesRead    int64
	BytesWritten int64
	Positions    [machine.Slots]int
}

type Options struct {
	Strip       bool
	Concurrency int
}

// Run encodes every job. The key is checked before any file is touched. The
// first failure cancels jobs that have not finished; an output file only
// appears once its job has succeeded.
func Run(ctx context.Context, key cipher.Key, jobs []Job, opts Options) ([]Result, error) {
	if err := cipher.ValidateKey(key.Wheels); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if err := checkOutputs(jobs); err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]Result, len(jobs))
	for i, job := range jobs {
		g.Go(rec.Guard(func() error {
			res, err := encodeFile(ctx, key, job, opts.Strip)
			if err != nil {
				return fmt.Errorf("batch: %s: %w", job.Input, err)
			}
			results[i] = res
			return nil
		}))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ErrDuplicateOutput is returned when two jobs would write the same file.
var ErrDuplicateOutput = errors.New("duplicate output")

func checkOutputs(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		out := filepath.Clean(job.Output)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("batch: %s and %s both write %s: %w", prev, job.Input, out, ErrDuplicateOutput)
		}
		seen[out] = job.Input
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return n, err
}

func encodeFile(ctx context.Context, key cipher.Key, job Job, strip bool) (Result, error) {
	ctx = ctxlog.With(ctx, "input", job.Input, "output", job.Output)
	logger := ctxlog.Get(ctx)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	in, err := os.Open(job.Input)
	if err != nil {
		return Result{}, fmt.Errorf("open input: %w", err)
	}
	defer ctxlog.Close(ctx, "input", in)

	tmp, err := os.CreateTemp(filepath.Dir(job.Output), ".nonigma-*")
	if err != nil {
		return Result{}, fmt.Errorf("create output: %w", err)
	}
	done := false
	defer func() {
		if !done {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	cw := &countingWriter{w: bw}
	enc, err := cipher.NewEncoder(cw, key, cipher.WithStrip(strip))
	if err != nil {
		return Result{}, err
	}

	n, err := io.Copy(enc, ctxReader{ctx, in})
	if err != nil {
		return Result{}, err
	}
	if err := enc.Close(); err != nil {
		return Result{}, err
	}
	if err := bw.Flush(); err != nil {
		return Result{}, fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return Result{}, fmt.Errorf("chmod output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), job.Output); err != nil {
		return Result{}, fmt.Errorf("rename output: %w", err)
	}
	done = true

	logger.Info("encoded file", "read", n, "written", cw.n)

	return Result{
		Job:          job,
		BytesRead:    n,
		BytesWritten: cw.n,
		Positions:    enc.Positions(),
	}, nil
}
