package rating

import "math"

// DefaultK is the fixed K-factor applied to every rated game.
const DefaultK = 32

// Outcome of a two-player match from player A's perspective.
type Outcome int

const (
	AWins Outcome = iota
	BWins
	Draw
)

// Result carries the exact post-match ratings. Truncation to integers is a
// persistence concern; keeping floats here keeps repeated calls reproducible.
type Result struct {
	RatingA float64
	RatingB float64
}

// Expected returns the logistic expected score of a against b.
func Expected(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Update computes both players' new ratings for the given outcome.
func Update(ratingA, ratingB float64, outcome Outcome, k float64) Result {
	expA := Expected(ratingA, ratingB)
	expB := Expected(ratingB, ratingA)

	var scoreA, scoreB float64
	switch outcome {
	case AWins:
		scoreA, scoreB = 1, 0
	case BWins:
		scoreA, scoreB = 0, 1
	case Draw:
		scoreA, scoreB = 0.5, 0.5
	}

	return Result{
		RatingA: ratingA + k*(scoreA-expA),
		RatingB: ratingB + k*(scoreB-expB),
	}
}
