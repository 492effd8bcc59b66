package logic

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Speeds maps each button tier to its toggle threshold.
type Speeds [NumButtons]Threshold

// DefaultSpeeds is the stock table: button 0 is the slowest, button 3 the fastest.
var DefaultSpeeds = Speeds{2000, 1000, 500, 100}

// DefaultTier is the tier selected at startup.
const DefaultTier = 0

// ParseSpeeds parses a comma-separated list of exactly four positive millisecond
// thresholds, e.g. "2000,1000,500,100".
func ParseSpeeds(s string) (Speeds, error) {
	var sp Speeds
	parts := strings.Split(s, ",")
	if len(parts) != NumButtons {
		return sp, fmt.Errorf("speeds: want %d values, got %d", NumButtons, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return sp, fmt.Errorf("speeds: tier %d: %w", i, err)
		}
		if v == 0 {
			return sp, fmt.Errorf("speeds: tier %d: threshold must be positive", i)
		}
		sp[i] = Threshold(v)
	}
	return sp, nil
}

// Valid reports whether every tier holds a non-zero threshold.
func (s Speeds) Valid() bool {
	return !slices.Contains(s[:], 0)
}

// Contains reports whether t is one of the table's thresholds.
func (s Speeds) Contains(t Threshold) bool {
	return t != 0 && slices.Contains(s[:], t)
}

// String renders the table in the form accepted by ParseSpeeds.
func (s Speeds) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = strconv.FormatUint(uint64(t), 10)
	}
	return strings.Join(parts, ",")
}

// RateSelector maps button samples to a threshold from a fixed speed table.
// It remembers the last selection, so a sample with no button pressed is a no-op.
// Not safe for concurrent use; it belongs to the foreground loop.
type RateSelector struct {
	speeds Speeds
	tier   int
}

// NewRateSelector creates a selector over speeds starting at defaultTier.
// An invalid table falls back to DefaultSpeeds and an out-of-range tier to DefaultTier,
// so Select can never return zero.
func NewRateSelector(speeds Speeds, defaultTier int) *RateSelector {
	if !speeds.Valid() {
		speeds = DefaultSpeeds
	}
	if defaultTier < 0 || defaultTier >= NumButtons {
		defaultTier = DefaultTier
	}
	return &RateSelector{speeds: speeds, tier: defaultTier}
}

// Select returns the threshold for the given sample. The lowest pressed button wins
// when several are held; no button keeps the previous threshold.
func (r *RateSelector) Select(status ButtonStatus) Threshold {
	if i := status.Lowest(); i >= 0 {
		r.tier = i
	}
	return r.speeds[r.tier]
}

// Tier returns the currently selected tier index.
func (r *RateSelector) Tier() int {
	return r.tier
}

// Threshold returns the currently selected threshold without sampling.
func (r *RateSelector) Threshold() Threshold {
	return r.speeds[r.tier]
}

// Speeds returns the selector's table.
func (r *RateSelector) Speeds() Speeds {
	return r.speeds
}
