// Package replay folds stored events onto a base state in sequence order.
//
// The base is either the empty state at seq 0 or a snapshot taken at a known
// seq. Events at or below the base seq are skipped; the remainder must
// continue the sequence without gaps.
package replay

import (
	"errors"
	"fmt"

	"github.com/bkniffler/myranor/internal/services/game/domain/event"
)

var (
	// ErrApplierRequired indicates a missing applier.
	ErrApplierRequired = errors.New("applier is required")
	// ErrSequenceGap indicates a missing or repeated seq in the tail.
	ErrSequenceGap = errors.New("event sequence gap")
)

// Applier folds one event onto state.
type Applier[S any] func(state S, evt event.Event) (S, error)

// Result captures replay outcomes.
type Result[S any] struct {
	State   S
	LastSeq uint64
	Applied int
}

// Fold applies every event after baseSeq onto base. Events must be sorted by
// seq; the first applied event must be baseSeq+1.
func Fold[S any](base S, baseSeq uint64, events []event.Stored, apply Applier[S]) (Result[S], error) {
	if apply == nil {
		return Result[S]{}, ErrApplierRequired
	}
	result := Result[S]{State: base, LastSeq: baseSeq}
	for _, stored := range events {
		if stored.Seq <= baseSeq {
			continue
		}
		expectedSeq := result.LastSeq + 1
		if stored.Seq != expectedSeq {
			return result, fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, expectedSeq, stored.Seq)
		}
		next, err := apply(result.State, stored.Event)
		if err != nil {
			return result, fmt.Errorf("apply seq %d: %w", stored.Seq, err)
		}
		result.State = next
		result.LastSeq = stored.Seq
		result.Applied++
	}
	return result, nil
}

// CheckContiguous verifies that events carry exactly the seqs 1..N in order.
func CheckContiguous(events []event.Stored) error {
	for i, stored := range events {
		if want := uint64(i + 1); stored.Seq != want {
			return fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, want, stored.Seq)
		}
	}
	return nil
}
