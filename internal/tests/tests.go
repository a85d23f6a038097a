// Package tests drives scripted scrub patterns against the timeline, one
// seek per frame.
package tests

import "math/rand"

type Kind string

const (
	None         Kind = ""
	ForwardSweep Kind = "forward_sweep"
	ReverseSweep Kind = "reverse_sweep"
	Jitter       Kind = "jitter"
)

// Kinds lists the runnable plans.
func Kinds() []Kind { return []Kind{ForwardSweep, ReverseSweep, Jitter} }

type Plan struct {
	Kind  Kind
	Start float64
	End   float64
	Step  float64 // sweep increment, seconds
	Count int     // jitter seeks
	Seed  int64
}

// PlanFor builds a plan of kind covering [start, end].
func PlanFor(kind Kind, start, end float64) Plan {
	return Plan{Kind: kind, Start: start, End: end, Step: (end - start) / 120, Count: 120, Seed: 1}
}

type Runner struct {
	plan Plan
	step int
	rng  *rand.Rand
}

func NewRunner(plan Plan) *Runner {
	return &Runner{plan: plan, rng: rand.New(rand.NewSource(plan.Seed))}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step issues the next seek; returns false when complete.
func (r *Runner) Step(seek func(float64)) bool {
	p := r.plan
	var t float64
	switch p.Kind {
	case ForwardSweep, ReverseSweep:
		if p.Step <= 0 {
			return false
		}
		d := float64(r.step) * p.Step
		if p.Start+d > p.End+p.Step/2 {
			return false
		}
		t = p.Start + d
		if p.Kind == ReverseSweep {
			t = p.End - d
		}
	case Jitter:
		if r.step >= p.Count {
			return false
		}
		t = p.Start + r.rng.Float64()*(p.End-p.Start)
	default:
		return false
	}
	seek(t)
	r.step++
	return true
}
