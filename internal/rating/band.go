package rating

import (
	"fmt"
	"math"
)

const bandWidth = 50

// Band is the public coarse view of a rating. Exact values stay
// internal; callers display the band instead.
type Band struct {
	Lower int
	Upper int
}

// BandFor buckets a rating into its 50 point band.
func BandFor(rating float64) Band {
	lower := int(math.Floor(rating/bandWidth)) * bandWidth
	return Band{Lower: lower, Upper: lower + bandWidth}
}

// BandSpanning buckets a pair of ratings into one band wide enough to
// cover both, so a duel presents a single range instead of leaking
// which side sits higher.
func BandSpanning(ratingA, ratingB float64) Band {
	low := BandFor(math.Min(ratingA, ratingB))
	high := BandFor(math.Max(ratingA, ratingB))
	return Band{Lower: low.Lower, Upper: high.Upper}
}

func (b Band) String() string {
	return fmt.Sprintf("%d-%d", b.Lower, b.Upper)
}
