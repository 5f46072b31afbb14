package random

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewSeedIsNonNegative(t *testing.T) {
	for i := 0; i < 32; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("new seed: %v", err)
		}
		if seed < 0 {
			t.Fatalf("seed = %d, want non-negative", seed)
		}
	}
}

func TestSeedFromDecodesLittleEndian(t *testing.T) {
	seed, err := seedFrom(bytes.NewReader([]byte{2, 0, 0, 0, 0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("seed from: %v", err)
	}
	if seed != 1 {
		t.Fatalf("seed = %d, want 1", seed)
	}
}

func TestSeedFromShortRead(t *testing.T) {
	_, err := seedFrom(bytes.NewReader([]byte{1, 2}))
	if err == nil || !strings.Contains(err.Error(), "read random seed") {
		t.Fatalf("expected read error, got %v", err)
	}
}
