// Package random defines the draw sources the command decider consumes.
//
// Deciders take a Provider so that the live server can use a
// cryptographically strong source while tests and offline simulation use a
// seeded one. Draw outcomes are always copied into emitted events; replaying
// history never draws again.
package random

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
)

// Provider draws integers in [1, sides].
type Provider interface {
	Intn(sides int) int
}

// Seeded is a reproducible Provider. It is not safe for concurrent use; each
// decision should own its instance.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a Provider whose draw sequence is fully determined by seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Intn draws the next value in [1, sides].
func (s *Seeded) Intn(sides int) int {
	mustSides(sides)
	return s.rng.Intn(sides) + 1
}

// Crypto draws from crypto/rand.
type Crypto struct{}

// NewCrypto returns a cryptographically strong Provider.
func NewCrypto() Crypto {
	return Crypto{}
}

// Intn draws a uniform value in [1, sides].
func (Crypto) Intn(sides int) int {
	mustSides(sides)
	n, err := crand.Int(crand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		panic(fmt.Sprintf("crypto random draw: %v", err))
	}
	return int(n.Int64()) + 1
}

// Scripted replays a fixed list of draws, cycling when exhausted. Values are
// clamped into [1, sides] at draw time.
type Scripted struct {
	values []int
	next   int
}

// NewScripted returns a Provider yielding values in order.
func NewScripted(values ...int) *Scripted {
	return &Scripted{values: append([]int(nil), values...)}
}

// Intn returns the next scripted value.
func (s *Scripted) Intn(sides int) int {
	mustSides(sides)
	if len(s.values) == 0 {
		return 1
	}
	value := s.values[s.next%len(s.values)]
	s.next++
	if value < 1 {
		return 1
	}
	if value > sides {
		return sides
	}
	return value
}

func mustSides(sides int) {
	if sides < 1 {
		panic(fmt.Sprintf("random: sides must be positive, got %d", sides))
	}
}

// SeedSource records where a simulation seed came from.
type SeedSource string

const (
	// SeedSourceServer indicates the seed was generated by the process.
	SeedSourceServer SeedSource = "server"
	// SeedSourceClient indicates the caller supplied the seed.
	SeedSourceClient SeedSource = "client"
)

// ResolveSeed chooses the seed for a run. A requested seed wins only when
// allowClient is true; otherwise serverSeed supplies one.
func ResolveSeed(requested *int64, serverSeed func() (int64, error), allowClient bool) (int64, SeedSource, error) {
	if requested != nil && allowClient {
		if *requested < 0 {
			return 0, "", apperrors.WithMetadata(apperrors.CodeSeedOutOfRange, "seed must be non-negative", map[string]string{
				"seed": strconv.FormatInt(*requested, 10),
			})
		}
		return *requested, SeedSourceClient, nil
	}
	if serverSeed == nil {
		return 0, "", errors.New("server seed generator is required")
	}
	seed, err := serverSeed()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceServer, nil
}
