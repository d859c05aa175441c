package scale

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/resample"
)

// StageFunc receives progress after each completed stage. done is the
// completed fraction in (0,1]; stage counts from 1 to total.
type StageFunc func(done float64, stage, total int)

// Runner executes plans stage by stage with a uniform kernel.
//
// Intermediates come from Pool and return to it as soon as the next stage
// has consumed them, so at any moment only the current input and output
// buffers are alive. The caller's source buffer is never pooled.
type Runner struct {
	// Filter is the kernel applied to every stage of a run.
	Filter resample.Filter

	// Pool supplies intermediates and the final output.
	// Nil falls back to plain allocation.
	Pool *pixel.Pool

	// Log receives per-stage diagnostics. Nil discards them.
	Log *logrus.Logger

	// OnStage, when set, is called after each completed stage.
	OnStage StageFunc
}

// Run executes the plan against src and returns the final buffer, which the
// caller owns.
//
// The context is checked between stages, never inside one. On any failure,
// including cancellation, intermediates go back to the pool and src is left
// untouched.
func (r *Runner) Run(ctx context.Context, src *pixel.Buffer, plan Plan) (*pixel.Buffer, error) {
	if src.IsEmpty() {
		return nil, fmt.Errorf("%w: nil or empty source", ErrInvalidPlan)
	}
	if err := plan.Validate(src.Width(), src.Height()); err != nil {
		return nil, err
	}

	log := r.logger()
	total := len(plan.Stages)
	cur := src
	for i, st := range plan.Stages {
		if err := ctx.Err(); err != nil {
			r.release(cur, src)
			return nil, err
		}

		dst, err := r.acquire(st.DstWidth, st.DstHeight)
		if err != nil {
			r.release(cur, src)
			return nil, fmt.Errorf("scale: stage %d/%d: %w", i+1, total, err)
		}

		resample.Resize(dst, cur, r.Filter)
		r.release(cur, src)
		cur = dst

		log.WithFields(logrus.Fields{
			"stage":  fmt.Sprintf("%d/%d", i+1, total),
			"dims":   st.String(),
			"filter": r.Filter.String(),
		}).Debug("stage complete")

		if r.OnStage != nil {
			r.OnStage(float64(i+1)/float64(total), i+1, total)
		}
	}
	return cur, nil
}

// acquire gets a buffer from the pool, or allocates when no pool is set.
func (r *Runner) acquire(w, h int) (*pixel.Buffer, error) {
	if r.Pool != nil {
		return r.Pool.Get(w, h)
	}
	return pixel.New(w, h)
}

// release pools buf unless it is the caller-owned source.
func (r *Runner) release(buf, src *pixel.Buffer) {
	if buf == nil || buf == src {
		return
	}
	if r.Pool != nil {
		r.Pool.Put(buf)
	}
}

func (r *Runner) logger() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return nopLogger
}

// nopLogger discards everything; used when no logger is injected.
var nopLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()
