package bandit

import (
	"math"
	"math/rand/v2"
)

// Beta draws from Beta(alpha, beta) as X/(X+Y) with X~Gamma(alpha), Y~Gamma(beta).
func Beta(rng *rand.Rand, alpha, beta float64) float64 {
	x := Gamma(rng, alpha)
	y := Gamma(rng, beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// Gamma draws from Gamma(shape, 1) using Marsaglia and Tsang's squeeze method.
// Shapes below 1 are boosted to shape+1 and scaled by U^(1/shape).
func Gamma(rng *rand.Rand, shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := rng.Float64()
		return Gamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
