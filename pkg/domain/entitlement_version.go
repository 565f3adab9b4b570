package domain

import (
	"fmt"
	"slices"
	"strconv"

	platformstrings "imsse/pkg/platform/strings"
)

// EntitlementVersion is the entitlement protocol version a carrier configures and
// a stored record was produced under.
type EntitlementVersion int

// Known entitlement versions.
const (
	EntitlementVersionUnset EntitlementVersion = 0
	EntitlementVersionTwo   EntitlementVersion = 2
	EntitlementVersionEight EntitlementVersion = 8
)

// DefaultEntitlementVersion applies when carrier config does not name one.
const DefaultEntitlementVersion = EntitlementVersionTwo

// DefaultUpgradeVersion is the first version whose records are incompatible
// with those produced by any earlier version.
const DefaultUpgradeVersion = EntitlementVersionEight

// CrossesUpgrade reports whether moving from stored to v crosses threshold
// from below. Moves that stay on one side of the threshold, downgrades and
// equal versions are not upgrades.
func (v EntitlementVersion) CrossesUpgrade(stored, threshold EntitlementVersion) bool {
	return v >= threshold && stored < threshold
}

func (v EntitlementVersion) String() string {
	return strconv.Itoa(int(v))
}

// VersionSet is the set of entitlement versions this device recognizes.
// Carriers differ, so the set is configuration rather than a constant.
type VersionSet map[EntitlementVersion]struct{}

// DefaultVersionSet recognizes versions 2 and 8.
func DefaultVersionSet() VersionSet {
	return NewVersionSet(EntitlementVersionTwo, EntitlementVersionEight)
}

// NewVersionSet builds a set from explicit versions.
func NewVersionSet(versions ...EntitlementVersion) VersionSet {
	set := make(VersionSet, len(versions))
	for _, v := range versions {
		set[v] = struct{}{}
	}
	return set
}

// ParseVersionSet parses configuration values such as ["2", " 8", "8"].
// Blank and duplicate entries are ignored; an empty result is an error.
func ParseVersionSet(values []string) (VersionSet, error) {
	cleaned := platformstrings.DedupeAndTrim(values)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one entitlement version is required")
	}
	set := make(VersionSet, len(cleaned))
	for _, raw := range cleaned {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid entitlement version %q", raw)
		}
		set[EntitlementVersion(n)] = struct{}{}
	}
	return set, nil
}

// Contains reports whether v is recognized.
func (s VersionSet) Contains(v EntitlementVersion) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the recognized versions in ascending order.
func (s VersionSet) Sorted() []EntitlementVersion {
	out := make([]EntitlementVersion, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
