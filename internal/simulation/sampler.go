package simulation

import (
	"math"
	"math/rand"
)

// Sampler draws random variates for task durations. Each worker owns its own
// Sampler so no generator state is shared across goroutines.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a Sampler seeded with the given value.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// StandardNormal draws from N(0,1) using the polar Box-Muller method:
// reject uniform pairs until their squared norm lands in (0,1).
func (s *Sampler) StandardNormal() float64 {
	for {
		u := s.rng.Float64()*2 - 1
		v := s.rng.Float64()*2 - 1
		w := u*u + v*v
		if w > 0 && w < 1 {
			return u * math.Sqrt(-2*math.Log(w)/w)
		}
	}
}

// Gamma draws from Gamma(shape, 1) via Marsaglia-Tsang. Shapes below 1 are
// boosted through Gamma(shape+1) scaled by U^(1/shape).
func (s *Sampler) Gamma(shape float64) float64 {
	if shape < 1 {
		u := s.rng.Float64()
		return s.Gamma(shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)

	for {
		x := s.StandardNormal()
		v := 1 + c*x
		if v <= 0 {
			// Rejection, not an error: resample until v is positive.
			continue
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Beta draws from Beta(a, b) as the ratio of two Gamma variates.
func (s *Sampler) Beta(a, b float64) float64 {
	x := s.Gamma(a)
	y := s.Gamma(b)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// PERT draws a duration from the PERT (Beta) distribution defined by the
// three-point estimate. A zero-width estimate returns the PERT mean directly.
func (s *Sampler) PERT(optimistic, mostLikely, pessimistic float64) float64 {
	mean := (optimistic + 4*mostLikely + pessimistic) / 6
	stddev := (pessimistic - optimistic) / 6
	if stddev <= 0 {
		return mean
	}

	// Match the first two moments of the Beta distribution on
	// [optimistic, pessimistic].
	span := pessimistic - optimistic
	mu := (mean - optimistic) / span
	variance := (stddev * stddev) / (span * span)

	common := mu*(1-mu)/variance - 1
	alpha := mu * common
	beta := (1 - mu) * common

	// Clamp away degenerate shapes.
	if alpha < 1.001 {
		alpha = 1.001
	}
	if beta < 1.001 {
		beta = 1.001
	}

	return optimistic + s.Beta(alpha, beta)*span
}

// Triangular draws a duration from the triangular distribution via the
// inverse CDF. A zero-width range returns the mode directly.
func (s *Sampler) Triangular(optimistic, mostLikely, pessimistic float64) float64 {
	if pessimistic == optimistic {
		return mostLikely
	}

	u := s.rng.Float64()
	span := pessimistic - optimistic
	modeFraction := (mostLikely - optimistic) / span

	if u < modeFraction {
		return optimistic + math.Sqrt(u*span*(mostLikely-optimistic))
	}
	return pessimistic - math.Sqrt((1-u)*span*(pessimistic-mostLikely))
}
