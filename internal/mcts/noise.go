package mcts

import (
	"math"
	"math/rand"
)

// addDirichletNoise mixes a fresh Dirichlet(alpha) sample into edges' priors
// in place: prior' = (1-epsilon)*prior + epsilon*noise[i]. Caller must hold
// the owning node's mu.
func addDirichletNoise(edges []*Edge, alpha, epsilon float64, rng *rand.Rand) {
	if len(edges) == 0 {
		return
	}
	noise := sampleDirichlet(rng, alpha, len(edges))
	for i, e := range edges {
		e.Prior = (1-epsilon)*e.Prior + epsilon*noise[i]
	}
}

// sampleDirichlet draws one sample from a symmetric Dirichlet(alpha)
// distribution over n outcomes, via n independent Gamma(alpha,1) draws
// normalized to sum to 1 (the standard construction: if X_i ~ Gamma(alpha,1)
// iid, then X_i/sum(X) ~ Dirichlet(alpha,...,alpha)).
func sampleDirichlet(rng *rand.Rand, alpha float64, n int) []float64 {
	samples := make([]float64, n)
	var sum float64
	for i := range samples {
		g := sampleGamma(rng, alpha)
		samples[i] = g
		sum += g
	}
	if sum <= 0 {
		// Degenerate (all draws underflowed to 0): fall back to uniform.
		for i := range samples {
			samples[i] = 1 / float64(n)
		}
		return samples
	}
	for i := range samples {
		samples[i] /= sum
	}
	return samples
}

// sampleGamma draws from Gamma(alpha,1) using the Marsaglia-Tsang method
// (alpha >= 1), boosting small alpha via Gamma(alpha)= Gamma(alpha+1)*U^(1/alpha)
// (Devroye's transformation) since MCTS priors typically use alpha < 1.
func sampleGamma(rng *rand.Rand, alpha float64) float64 {
	if alpha < 1 {
		u := rng.Float64()
		return sampleGamma(rng, alpha+1) * math.Pow(u, 1/alpha)
	}

	d := alpha - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		x2 := x * x
		if u < 1-0.0331*x2*x2 {
			return d * v
		}
		if math.Log(u) < 0.5*x2+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
