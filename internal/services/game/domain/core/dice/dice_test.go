package dice

import (
	"testing"

	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
)

func TestRollAppliesModifier(t *testing.T) {
	result := Roll(random.NewScripted(12), D20, -3)
	if result.Die != 12 {
		t.Fatalf("die = %d, want 12", result.Die)
	}
	if result.Total != 9 {
		t.Fatalf("total = %d, want 9", result.Total)
	}
	if result.Sides != D20 || result.Modifier != -3 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRollCanGoBelowOne(t *testing.T) {
	result := Roll(random.NewScripted(1), D20, -5)
	if result.Total != -4 {
		t.Fatalf("total = %d, want -4", result.Total)
	}
}

func TestRollIsReproducibleForSeed(t *testing.T) {
	first := random.NewSeeded(9)
	second := random.NewSeeded(9)
	for i := 0; i < 20; i++ {
		a := Roll(first, D20, 2)
		b := Roll(second, D20, 2)
		if a != b {
			t.Fatalf("roll %d = %+v and %+v, want equal", i, a, b)
		}
		if a.Die < 1 || a.Die > D20 {
			t.Fatalf("die = %d, want 1..%d", a.Die, D20)
		}
	}
}
