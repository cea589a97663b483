package rating

import (
	"math"

	"github.com/oullin/profilesync/handler/payload"
)

const (
	MinValid = 1
	MaxValid = 5
)

// Valid reports whether a review rating takes part in the aggregate. Zero
// and out-of-range values are treated as bad data and skipped, not clamped.
func Valid(value float64) bool {
	return value >= MinValid && value <= MaxValid
}

// Aggregate returns the mean of the valid ratings rounded half-up to one
// decimal, or 0 when there is none.
func Aggregate(reviews []payload.ReviewResponse) float64 {
	sum := 0.0
	count := 0

	for _, review := range reviews {
		if !Valid(review.Rating) {
			continue
		}

		sum += review.Rating
		count++
	}

	if count == 0 {
		return 0
	}

	return Round(sum / float64(count))
}

func Round(value float64) float64 {
	return math.Floor(value*10+0.5) / 10
}

// Changed compares two ratings at display precision.
func Changed(current, next float64) bool {
	return Round(current) != Round(next)
}
