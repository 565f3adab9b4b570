package domain

import (
	"math"
	"strconv"
	"strings"

	dErrors "imsse/pkg/domain-errors"
)

// SubID identifies a subscription (a SIM profile).
// Invariant: a usable SubID is non-negative and not the platform default marker.
type SubID int

// SlotID identifies a physical SIM slot.
type SlotID int

const (
	// InvalidSubID marks the absence of a subscription.
	InvalidSubID SubID = -1
	// DefaultSubID is the platform placeholder for "whatever is default"; it never
	// names a concrete subscription.
	DefaultSubID SubID = math.MaxInt32

	// InvalidSlotID marks the absence of a slot.
	InvalidSlotID SlotID = -1
)

// IsValid reports whether the subscription ID names a concrete subscription.
func (s SubID) IsValid() bool {
	return s >= 0 && s != DefaultSubID
}

func (s SubID) String() string {
	return strconv.Itoa(int(s))
}

// IsValid reports whether the slot index is usable.
func (s SlotID) IsValid() bool {
	return s >= 0
}

func (s SlotID) String() string {
	return strconv.Itoa(int(s))
}

// ParseSubID parses a subscription ID at a trust boundary.
// Out-of-range values parse successfully but report !IsValid; the evaluator
// turns them into NoAction rather than an input error.
func ParseSubID(s string) (SubID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return InvalidSubID, dErrors.New(dErrors.CodeInvalidInput, "subscription id cannot be empty")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return InvalidSubID, dErrors.New(dErrors.CodeInvalidInput, "subscription id must be an integer")
	}
	return SubID(v), nil
}

// ParseSlotID parses a slot index at a trust boundary.
func ParseSlotID(s string) (SlotID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return InvalidSlotID, dErrors.New(dErrors.CodeInvalidInput, "slot id cannot be empty")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return InvalidSlotID, dErrors.New(dErrors.CodeInvalidInput, "slot id must be an integer")
	}
	if v < 0 {
		return InvalidSlotID, dErrors.New(dErrors.CodeInvalidInput, "slot id must not be negative")
	}
	return SlotID(v), nil
}
