// Package scale plans and executes progressive resampling pipelines.
//
// Large upscales run as a chain of stages that at most double each axis.
// Repeated modest steps keep interpolation kernels inside their quality
// envelope: a single 16x jump smears detail that four 2x steps preserve.
package scale

import (
	"errors"
	"fmt"
)

// ErrInvalidPlan is returned when a plan cannot be built or does not match
// the buffers it is asked to run against.
var ErrInvalidPlan = errors.New("scale: invalid plan")

// maxDim bounds planable dimensions so the doubling arithmetic cannot
// overflow.
const maxDim = 1 << 30

// Stage is one resampling step: source dimensions in, destination out.
// Plans built by PlanFor never grow either axis by more than 2x per stage.
type Stage struct {
	SrcWidth  int
	SrcHeight int
	DstWidth  int
	DstHeight int
}

// String returns the stage as "WxH -> WxH".
func (s Stage) String() string {
	return fmt.Sprintf("%dx%d -> %dx%d", s.SrcWidth, s.SrcHeight, s.DstWidth, s.DstHeight)
}

// Plan is an ordered stage chain from a source size to a target size.
// TargetWidth and TargetHeight record the originally requested target;
// Runner.Run refuses plans whose final stage does not reach it.
type Plan struct {
	Stages       []Stage
	TargetWidth  int
	TargetHeight int
}

// PlanFor builds the stage chain from srcW x srcH to dstW x dstH.
//
// When no axis more than doubles, the plan is a single stage; this covers
// every downscale and the identity. Otherwise each stage doubles an axis
// until it reaches its target and then holds it, so the two axes may finish
// at different stages.
func PlanFor(srcW, srcH, dstW, dstH int) (Plan, error) {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Plan{}, fmt.Errorf("%w: non-positive dimensions %dx%d -> %dx%d",
			ErrInvalidPlan, srcW, srcH, dstW, dstH)
	}
	if srcW > maxDim || srcH > maxDim || dstW > maxDim || dstH > maxDim {
		return Plan{}, fmt.Errorf("%w: dimensions out of range %dx%d -> %dx%d",
			ErrInvalidPlan, srcW, srcH, dstW, dstH)
	}

	p := Plan{TargetWidth: dstW, TargetHeight: dstH}
	curW, curH := srcW, srcH
	for curW != dstW || curH != dstH {
		nextW, nextH := curW, curH
		if curW != dstW {
			nextW = min(curW*2, dstW)
		}
		if curH != dstH {
			nextH = min(curH*2, dstH)
		}
		p.Stages = append(p.Stages, Stage{curW, curH, nextW, nextH})
		curW, curH = nextW, nextH
	}
	if len(p.Stages) == 0 {
		// Identity: keep one stage so Run still validates and produces a
		// caller-owned copy.
		p.Stages = []Stage{{srcW, srcH, dstW, dstH}}
	}
	return p, nil
}

// Validate checks the plan against a source size: non-empty, first stage
// matching the source, unbroken chaining, final stage reaching the recorded
// target. All failures wrap ErrInvalidPlan.
func (p Plan) Validate(srcW, srcH int) error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("%w: empty plan", ErrInvalidPlan)
	}
	first := p.Stages[0]
	if first.SrcWidth != srcW || first.SrcHeight != srcH {
		return fmt.Errorf("%w: source %dx%d does not match first stage %s",
			ErrInvalidPlan, srcW, srcH, first)
	}
	for i := 1; i < len(p.Stages); i++ {
		if p.Stages[i].SrcWidth != p.Stages[i-1].DstWidth ||
			p.Stages[i].SrcHeight != p.Stages[i-1].DstHeight {
			return fmt.Errorf("%w: broken chain at stage %d (%s after %s)",
				ErrInvalidPlan, i+1, p.Stages[i], p.Stages[i-1])
		}
	}
	last := p.Stages[len(p.Stages)-1]
	if last.DstWidth != p.TargetWidth || last.DstHeight != p.TargetHeight {
		return fmt.Errorf("%w: final stage %s does not reach target %dx%d",
			ErrInvalidPlan, last, p.TargetWidth, p.TargetHeight)
	}
	return nil
}
