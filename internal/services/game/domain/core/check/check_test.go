package check

import (
	"encoding/json"
	"math"
	"testing"
)

func TestResolveSuccessTierBands(t *testing.T) {
	tests := []struct {
		dc, total int
		want      Tier
	}{
		{10, 20, TierVeryGood},
		{10, 19, TierGood},
		{10, 15, TierGood},
		{10, 14, TierSuccess},
		{10, 10, TierSuccess},
		{10, 9, TierPoor},
		{10, 5, TierPoor},
		{10, 4, TierFail},
		{10, -3, TierFail},
		{0, -5, TierPoor},
		{-2, 40, TierVeryGood},
	}
	for _, tc := range tests {
		if got := ResolveSuccessTier(tc.dc, tc.total); got != tc.want {
			t.Fatalf("ResolveSuccessTier(%d, %d) = %s, want %s", tc.dc, tc.total, got, tc.want)
		}
	}
}

func TestResolveSuccessTierIsMonotonic(t *testing.T) {
	for _, dc := range []int{-10, 0, 8, 12, 25} {
		prev := -1
		for total := -30; total <= 60; total++ {
			rank := ResolveSuccessTier(dc, total).Rank()
			if rank < prev {
				t.Fatalf("dc %d: rank dropped at total %d (%d < %d)", dc, total, rank, prev)
			}
			prev = rank
		}
	}
}

func TestResolveSuccessTierHandlesExtremes(t *testing.T) {
	tests := []struct {
		dc, total int
		want      Tier
	}{
		{0, math.MinInt32, TierFail},
		{0, math.MaxInt32, TierVeryGood},
		{-10, math.MaxInt, TierVeryGood},
		{10, math.MinInt, TierFail},
		{math.MinInt, math.MaxInt, TierVeryGood},
		{math.MaxInt, math.MinInt, TierFail},
		{math.MaxInt, math.MaxInt, TierSuccess},
		{math.MinInt, math.MinInt, TierSuccess},
		{math.MaxInt, math.MaxInt - 3, TierPoor},
		{math.MinInt, math.MinInt + 7, TierGood},
	}
	for _, tc := range tests {
		if got := ResolveSuccessTier(tc.dc, tc.total); got != tc.want {
			t.Fatalf("ResolveSuccessTier(%d, %d) = %s, want %s", tc.dc, tc.total, got, tc.want)
		}
	}
}

func TestResolveSuccessTierIsMonotonicAtExtremes(t *testing.T) {
	totals := []int{math.MinInt, math.MinInt + 1, -1 << 40, -10, 0, 10, 1 << 40, math.MaxInt - 1, math.MaxInt}
	for _, dc := range []int{math.MinInt, -1 << 40, -10, 0, 10, 1 << 40, math.MaxInt} {
		prev := -1
		for _, total := range totals {
			rank := ResolveSuccessTier(dc, total).Rank()
			if rank < prev {
				t.Fatalf("dc %d: rank at total %d = %d < %d", dc, total, rank, prev)
			}
			prev = rank
		}
	}
}

func TestWideBandsDoNotOverflow(t *testing.T) {
	bands := Bands{VeryGood: math.MaxInt, Good: math.MaxInt, Poor: math.MaxInt}
	if got := bands.Resolve(math.MinInt, math.MaxInt); got != TierVeryGood {
		t.Fatalf("resolve = %s, want veryGood", got)
	}
	if got := bands.Resolve(0, math.MinInt+1); got != TierPoor {
		t.Fatalf("resolve = %s, want poor", got)
	}
	if got := bands.Resolve(1, math.MinInt); got != TierFail {
		t.Fatalf("resolve = %s, want fail", got)
	}
}

func TestBandsNormalizedKeepsOrder(t *testing.T) {
	bands := Bands{VeryGood: 2, Good: 6, Poor: -1}.Normalized()
	if bands.VeryGood != 6 || bands.Good != 6 || bands.Poor != 0 {
		t.Fatalf("normalized bands = %+v", bands)
	}
	if got := (Bands{VeryGood: 2, Good: 6}).Resolve(10, 16); got != TierVeryGood {
		t.Fatalf("resolve with collapsed bands = %s, want veryGood", got)
	}
}

func TestTierJSONRejectsUnknown(t *testing.T) {
	var tier Tier
	if err := json.Unmarshal([]byte(`"good"`), &tier); err != nil {
		t.Fatalf("unmarshal good: %v", err)
	}
	if tier != TierGood {
		t.Fatalf("tier = %s, want good", tier)
	}
	if err := json.Unmarshal([]byte(`"legendary"`), &tier); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestSucceeded(t *testing.T) {
	if !TierSuccess.Succeeded() || TierPoor.Succeeded() {
		t.Fatal("success threshold misplaced")
	}
}
