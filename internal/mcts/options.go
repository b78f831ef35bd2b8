package mcts

import "math/rand"

const (
	defaultCPuct          = 1.5
	defaultMaxParallelism = 8
)

// Option configures a Tree at construction, following the validate-then-
// assign functional-options idiom also used by internal/evaluator's
// Heuristic constructor.
type Option func(*Tree)

// WithCPuct overrides the PUCT exploration constant. Values <= 0 are
// ignored, leaving the default in place.
func WithCPuct(c float64) Option {
	return func(t *Tree) {
		if c > 0 {
			t.cpuct = c
		}
	}
}

// WithMaxParallelism bounds how many samples Sample runs concurrently.
// Values <= 0 are ignored, leaving the default in place.
func WithMaxParallelism(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.maxParallelism = n
		}
	}
}

// WithDirichletNoise mixes Dirichlet(alpha) noise into the root's priors the
// first time it is expanded, weighted by epsilon: prior' = (1-epsilon)*prior
// + epsilon*noise. This is off by default (rng nil); callers that want
// exploration away from the raw evaluator priors at the start of a move's
// search pass a seeded rng, typically derived from the session's base seed
// so that self-play runs stay reproducible. epsilon is clamped to [0,1].
func WithDirichletNoise(alpha, epsilon float64, rng *rand.Rand) Option {
	return func(t *Tree) {
		if rng == nil || alpha <= 0 {
			return
		}
		if epsilon < 0 {
			epsilon = 0
		}
		if epsilon > 1 {
			epsilon = 1
		}
		t.dirichletAlpha = alpha
		t.dirichletEpsilon = epsilon
		t.dirichletRNG = rng
	}
}
