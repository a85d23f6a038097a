package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(r *Runner) []float64 {
	var got []float64
	for r.Step(func(t float64) { got = append(got, t) }) {
	}
	return got
}

func TestForwardSweep(t *testing.T) {
	got := collect(NewRunner(Plan{Kind: ForwardSweep, Start: 0, End: 1, Step: 0.25}))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, got)
}

func TestReverseSweep(t *testing.T) {
	got := collect(NewRunner(Plan{Kind: ReverseSweep, Start: 0, End: 1, Step: 0.25}))
	assert.Equal(t, []float64{1, 0.75, 0.5, 0.25, 0}, got)
}

func TestJitterStaysInRangeAndRepeats(t *testing.T) {
	p := Plan{Kind: Jitter, Start: -1, End: 3, Count: 50, Seed: 9}
	a := collect(NewRunner(p))
	assert.Len(t, a, 50)
	for _, v := range a {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 3.0)
	}
	assert.Equal(t, a, collect(NewRunner(p)))
}

func TestUnknownPlanStopsImmediately(t *testing.T) {
	assert.Empty(t, collect(NewRunner(Plan{Kind: "spin"})))
	assert.Empty(t, collect(NewRunner(Plan{Kind: ForwardSweep, End: 1})))
}

func TestPlanFor(t *testing.T) {
	p := PlanFor(ForwardSweep, 0, 3)
	assert.Len(t, collect(NewRunner(p)), 121)
}
