// Package rating implements the Elo update rule, rating bands, and the
// aggregate ranking queries built on top of the store.
package rating

import "math"

// Outcome identifies who took the duel.
type Outcome int

const (
	AWins Outcome = iota
	BWins
	Draw
)

// Update applies one Elo exchange between two ratings using factor k.
// A draw scores both sides 0.5, so equal ratings pass through
// unchanged. The exchange is zero sum up to floating point.
func Update(ratingA, ratingB float64, outcome Outcome, k float64) (float64, float64) {
	expectedA := Expected(ratingA, ratingB)
	expectedB := 1 - expectedA

	var scoreA, scoreB float64
	switch outcome {
	case AWins:
		scoreA, scoreB = 1, 0
	case BWins:
		scoreA, scoreB = 0, 1
	case Draw:
		scoreA, scoreB = 0.5, 0.5
	}

	return ratingA + k*(scoreA-expectedA), ratingB + k*(scoreB-expectedB)
}

// Expected returns the probability that the first rating beats the
// second under the Elo model.
func Expected(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}
