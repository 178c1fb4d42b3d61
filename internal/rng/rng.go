// Package rng derives deterministic pseudo-randomness from an externally
// supplied entropy seed (an XRPL validated-ledger hash). All functions are
// pure: identical inputs always produce identical outputs, so a resolution
// can be replayed for audit and must reproduce the original winners.
package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
)

var (
	// ErrInvalidInput indicates a bad seed/participant-count argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig indicates an unsatisfiable pick-N game configuration.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrRangeExhausted indicates the no-duplicate constraint could not be met
	// within the bounded number of re-draws.
	ErrRangeExhausted = errors.New("pick range exhausted")
)

// pickKey keys the HMAC used for pick derivation. Fixed so that independent
// deployments agree on the winning selection for the same ledger hash.
const pickKey = "xrpl-lottery-picks-v1"

// maxDrawAttemptsPerPick bounds collision re-draws when duplicates are
// disallowed.
const maxDrawAttemptsPerPick = 1000

// WinnerIndex maps a seed onto a uniformly distributed index in [0, n).
// The seed is hashed with SHA-256 and the first 8 bytes of the digest are
// read as a big-endian unsigned integer.
func WinnerIndex(seed string, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: number of participants must be positive, got %d", ErrInvalidInput, n)
	}
	digest := sha256.Sum256([]byte(seed))
	value := binary.BigEndian.Uint64(digest[:8])
	return int(value % uint64(n)), nil
}

// WinningPicks derives cfg.NumPicks values in [cfg.MinDigit, cfg.MaxDigit]
// from the seed. Successive candidates come from an HMAC-SHA256 keyed PRF
// over "seed:counter" with an incrementing counter; when duplicates are
// disallowed, a colliding candidate burns a counter value and is re-drawn a
// bounded number of times before the derivation fails.
func WinningPicks(seed string, cfg models.GameConfig) ([]int, error) {
	if cfg.NumPicks <= 0 {
		return nil, fmt.Errorf("%w: num_picks must be positive, got %d", ErrInvalidConfig, cfg.NumPicks)
	}
	if cfg.MinDigit > cfg.MaxDigit {
		return nil, fmt.Errorf("%w: min_digit %d greater than max_digit %d", ErrInvalidConfig, cfg.MinDigit, cfg.MaxDigit)
	}
	rangeSize := cfg.MaxDigit - cfg.MinDigit + 1
	if !cfg.AllowDuplicates && cfg.NumPicks > rangeSize {
		return nil, fmt.Errorf("%w: cannot draw %d distinct values from a range of %d", ErrRangeExhausted, cfg.NumPicks, rangeSize)
	}

	picks := make([]int, 0, cfg.NumPicks)
	chosen := make(map[int]bool, cfg.NumPicks)
	counter := 0
	attemptBudget := cfg.NumPicks * maxDrawAttemptsPerPick

	for len(picks) < cfg.NumPicks {
		if counter >= attemptBudget {
			return nil, fmt.Errorf("%w: no distinct candidate after %d draws", ErrRangeExhausted, counter)
		}
		candidate := cfg.MinDigit + int(prf(seed, counter)%uint64(rangeSize))
		counter++
		if !cfg.AllowDuplicates && chosen[candidate] {
			continue
		}
		chosen[candidate] = true
		picks = append(picks, candidate)
	}
	return picks, nil
}

func prf(seed string, counter int) uint64 {
	mac := hmac.New(sha256.New, []byte(pickKey))
	fmt.Fprintf(mac, "%s:%d", seed, counter)
	digest := mac.Sum(nil)
	return binary.BigEndian.Uint64(digest[:8])
}
