package reduction

import (
	"github.com/janpfeifer/lossopts/internal/generics"
	"slices"
	"strings"
)

// Set is the list of reduction modes accepted by a loss kind.
// The zero value accepts no mode.
type Set struct {
	modes   []Mode
	members generics.Set[Mode]
}

var (
	// Standard is the set of modes accepted by most losses: None, Mean and Sum.
	Standard = NewSet(None, Mean, Sum)

	// Distribution is the set of modes accepted by the KL-divergence loss, which adds BatchMean.
	Distribution = NewSet(None, BatchMean, Sum, Mean)
)

// NewSet returns a Set with the given modes. The order is preserved by Modes and String.
func NewSet(modes ...Mode) Set {
	s := Set{members: generics.MakeSet[Mode](len(modes))}
	for _, mode := range modes {
		if s.members.Has(mode) {
			continue
		}
		s.members.Insert(mode)
		s.modes = append(s.modes, mode)
	}
	return s
}

// Has returns whether the mode is accepted.
func (s Set) Has(mode Mode) bool {
	return s.members.Has(mode)
}

// Modes returns a copy of the accepted modes.
func (s Set) Modes() []Mode {
	return slices.Clone(s.modes)
}

// String returns the accepted modes separated by "|", e.g.: "none|mean|sum".
func (s Set) String() string {
	parts := make([]string, len(s.modes))
	for ii, mode := range s.modes {
		parts[ii] = mode.String()
	}
	return strings.Join(parts, "|")
}

// Check returns an error wrapping ErrInvalidConfiguration if mode is not accepted.
func (s Set) Check(mode Mode) error {
	if !mode.IsAMode() {
		return InvalidConfigurationf("unknown reduction %s, valid values are %q", mode, s)
	}
	if !s.Has(mode) {
		return InvalidConfigurationf("reduction %q not accepted, valid values are %q", mode, s)
	}
	return nil
}

// Parse converts a token like "none", "mean", "sum" or "batchmean" (case-insensitive) to a Mode
// accepted by the set.
// Unknown or not accepted tokens return an error wrapping ErrInvalidConfiguration.
func (s Set) Parse(token string) (Mode, error) {
	mode, err := ModeString(strings.TrimSpace(token))
	if err != nil {
		return Mean, InvalidConfigurationf("unknown reduction %q, valid values are %q", token, s)
	}
	if err = s.Check(mode); err != nil {
		return Mean, err
	}
	return mode, nil
}
