package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hsiuhsiu/rips-go/pkg/rips"
	"github.com/hsiuhsiu/rips-go/pkg/rips/logging"
)

// ProcessFunc runs one job. Input and Output are already resolved.
type ProcessFunc func(ctx context.Context, job Job) error

// Runner executes manifests.
type Runner struct {
	Logger logging.Logger

	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer

	// Process overrides the job implementation; nil uses Process.
	Process ProcessFunc
}

// JobError records a failed job.
type JobError struct {
	Index int
	Job   Job
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %d (%s): %v", e.Index, e.Job.Input, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// Report summarizes a run.
type Report struct {
	Succeeded int
	Failed    []*JobError
	Elapsed   time.Duration
}

// Err joins the job failures, or returns nil when every job succeeded.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Run executes every job of m with at most m.Concurrency in flight. With
// the default Process, libvips is initialized from m.Init first. A
// failing job does not stop the others; failures are collected in the
// report. The returned error is non-nil only when ctx ends the run early.
func (r *Runner) Run(ctx context.Context, m *Manifest) (*Report, error) {
	log := r.Logger
	if log == nil {
		log = logging.Nop()
	}
	process := r.Process
	if process == nil {
		if err := rips.InitializeWithOptions(m.Init.Options().WithLogger(log)); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
		process = Process
	}

	var bar *progressbar.ProgressBar
	if r.Progress != nil {
		bar = progressbar.NewOptions(len(m.Jobs),
			progressbar.OptionSetWriter(r.Progress),
			progressbar.OptionSetDescription("processing"),
			progressbar.OptionShowCount(),
		)
		defer bar.Close()
	}

	start := time.Now()
	report := &Report{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.Concurrency)

	for i, job := range m.Jobs {
		i, job := i, job // per-iteration copies (go.mod targets go1.21)
		if gctx.Err() != nil {
			break
		}
		job.Input = m.resolve(job.Input)
		job.Output = m.resolve(job.Output)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := process(gctx, job)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn(gctx, "job failed", "index", i, "input", job.Input, "error", err)
				report.Failed = append(report.Failed, &JobError{Index: i, Job: job, Err: err})
			} else {
				log.Debug(gctx, "job done", "index", i, "output", job.Output)
				report.Succeeded++
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	report.Elapsed = time.Since(start)
	log.Info(ctx, "batch finished",
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"elapsed", report.Elapsed)
	return report, err
}

// Process loads job.Input, applies the steps and writes job.Output. The
// output directory is created when missing.
func Process(_ context.Context, job Job) error {
	img, err := rips.NewImageFromFile(job.Input)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer img.Close()

	for i, step := range job.Steps {
		next, err := apply(img, step)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		defer next.Close()
		img = next
	}

	if dir := filepath.Dir(job.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := img.WriteToFile(job.Output); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func apply(img *rips.Image, step Step) (*rips.Image, error) {
	switch {
	case step.Resize != nil:
		opts, err := step.Resize.kernel()
		if err != nil {
			return nil, err
		}
		rs := step.Resize
		if rs.Width == 0 && rs.Height == 0 && rs.Scale > 0 {
			return img.Resize(rs.Scale, opts...)
		}
		return img.ResizeTo(rs.Width, rs.Height, opts...)
	case step.Crop != nil:
		c := step.Crop
		return img.Crop(c.Left, c.Top, c.Width, c.Height)
	case step.Rotate != nil:
		return img.Rotate(rips.Angle(*step.Rotate))
	default:
		return nil, errors.New("empty step")
	}
}
