package chart

import "math"

// Thresholds for tick step rounding: 1, 2, 5 or 10 times a power of ten.
var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear maps a continuous domain onto a pixel range.
// A zero-width domain maps every value to the middle of the range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns a scale mapping [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the domain bounds.
func (s Linear) Domain() (float64, float64) {
	return s.d0, s.d1
}

// Range returns the range bounds.
func (s Linear) Range() (float64, float64) {
	return s.r0, s.r1
}

// Apply maps a domain value to the range. Values outside the domain are
// extrapolated.
func (s Linear) Apply(v float64) float64 {
	if s.d0 == s.d1 {
		return (s.r0 + s.r1) / 2
	}
	t := (v - s.d0) / (s.d1 - s.d0)
	return s.r0 + t*(s.r1-s.r0)
}

// Invert maps a range value back to the domain.
func (s Linear) Invert(px float64) float64 {
	if s.r0 == s.r1 || s.d0 == s.d1 {
		return s.d0
	}
	t := (px - s.r0) / (s.r1 - s.r0)
	return s.d0 + t*(s.d1-s.d0)
}

// Nice extends the domain outward to round tick boundaries, targeting
// roughly count ticks.
func (s Linear) Nice(count int) Linear {
	start, stop := s.d0, s.d1
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}

	prestep := math.NaN()
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if step == 0 || step == prestep {
			break
		}
		if step > 0 {
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		} else {
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		}
		prestep = step
	}

	if reversed {
		start, stop = stop, start
	}
	out := s
	out.d0, out.d1 = start+0, stop+0 // adding 0 clears negative zero
	return out
}

// Ticks returns roughly count round values spanning the domain.
func (s Linear) Ticks(count int) []float64 {
	return ticks(s.d0, s.d1, count)
}

// TickStep returns the spacing between values produced by Ticks.
func (s Linear) TickStep(count int) float64 {
	start, stop := s.d0, s.d1
	if stop < start {
		start, stop = stop, start
	}
	inc := tickIncrement(start, stop, count)
	if inc < 0 {
		return -1 / inc
	}
	return inc
}

func ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}

	inc := tickIncrement(start, stop, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return nil
	}

	var out []float64
	if inc > 0 {
		r0, r1 := math.Ceil(start/inc), math.Floor(stop/inc)
		for i := r0; i <= r1; i++ {
			out = append(out, i*inc)
		}
	} else {
		inv := -inc
		r0, r1 := math.Ceil(start*inv), math.Floor(stop*inv)
		for i := r0; i <= r1; i++ {
			out = append(out, i/inv)
		}
	}

	if reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// tickIncrement returns a positive step for steps >= 1 and the negated
// reciprocal of the step for fractional steps, so fractional ticks can be
// computed by division without accumulating float error.
func tickIncrement(start, stop float64, count int) float64 {
	if count <= 0 || stop == start {
		return 0
	}
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}
