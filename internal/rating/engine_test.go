package rating_test

import (
	"math"
	"testing"

	"channelduel/internal/rating"
)

func TestUpdateEqualRatingsWin(t *testing.T) {
	a, b := rating.Update(1500, 1500, rating.AWins, 32)
	if a != 1516 || b != 1484 {
		t.Fatalf("expected 1516/1484, got %v/%v", a, b)
	}
}

func TestUpdateDrawEqualRatingsUnchanged(t *testing.T) {
	a, b := rating.Update(1500, 1500, rating.Draw, 32)
	if a != 1500 || b != 1500 {
		t.Fatalf("draw between equals must not move ratings, got %v/%v", a, b)
	}
}

func TestUpdateIsZeroSum(t *testing.T) {
	cases := []struct {
		name    string
		a, b    float64
		outcome rating.Outcome
	}{
		{"underdog wins", 1400, 1700, rating.AWins},
		{"favorite wins", 1700, 1400, rating.AWins},
		{"uneven draw", 1450, 1650, rating.Draw},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			na, nb := rating.Update(tc.a, tc.b, tc.outcome, 32)
			before := tc.a + tc.b
			after := na + nb
			if math.Abs(before-after) > 1e-9 {
				t.Fatalf("exchange not zero sum: %v vs %v", before, after)
			}
		})
	}
}

func TestUpdateUnderdogGainsMore(t *testing.T) {
	na, _ := rating.Update(1400, 1700, rating.AWins, 32)
	underdogGain := na - 1400
	nc, _ := rating.Update(1700, 1400, rating.AWins, 32)
	favoriteGain := nc - 1700
	if underdogGain <= favoriteGain {
		t.Fatalf("underdog gain %v should exceed favorite gain %v", underdogGain, favoriteGain)
	}
}

func TestUpdateDrawMovesUnevenRatings(t *testing.T) {
	na, nb := rating.Update(1450, 1650, rating.Draw, 32)
	if na <= 1450 {
		t.Fatalf("lower side should gain on an uneven draw, got %v", na)
	}
	if nb >= 1650 {
		t.Fatalf("higher side should lose on an uneven draw, got %v", nb)
	}
}

func TestExpectedSymmetry(t *testing.T) {
	ea := rating.Expected(1500, 1700)
	eb := rating.Expected(1700, 1500)
	if math.Abs(ea+eb-1) > 1e-9 {
		t.Fatalf("expectations must sum to 1, got %v", ea+eb)
	}
	if ea >= 0.5 {
		t.Fatalf("lower rating cannot be favored: %v", ea)
	}
}

func TestBandFor(t *testing.T) {
	cases := []struct {
		rating float64
		want   string
	}{
		{1500, "1500-1550"},
		{1549.9, "1500-1550"},
		{1550, "1550-1600"},
		{1484, "1450-1500"},
	}
	for _, tc := range cases {
		if got := rating.BandFor(tc.rating).String(); got != tc.want {
			t.Fatalf("BandFor(%v) = %q, want %q", tc.rating, got, tc.want)
		}
	}
}

func TestBandSpanning(t *testing.T) {
	cases := []struct {
		a, b float64
		want string
	}{
		{1500, 1500, "1500-1550"},
		{1484, 1516, "1450-1550"},
		{1516, 1484, "1450-1550"},
		{1400, 1700, "1400-1750"},
	}
	for _, tc := range cases {
		if got := rating.BandSpanning(tc.a, tc.b).String(); got != tc.want {
			t.Fatalf("BandSpanning(%v, %v) = %q, want %q", tc.a, tc.b, got, tc.want)
		}
	}
}
