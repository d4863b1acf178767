package models

import (
	"math"

	dErrors "eventhub/pkg/domain-errors"
)

// Capacity tracks participant slots as an immutable value: Reserve and
// Release return new values instead of mutating the receiver, so a failed
// transition can never leave a half-applied count behind.
//
// Invariants:
//   - Current >= 0
//   - Current <= *Max when Max is set
//
// A nil Max means unlimited capacity.
type Capacity struct {
	Max     *int `json:"max_participants,omitempty"`
	Current int  `json:"current_participants"`
}

// NewCapacity builds a validated capacity.
func NewCapacity(max *int, current int) (Capacity, error) {
	c := Capacity{Max: max, Current: current}
	if err := c.Validate(); err != nil {
		return Capacity{}, err
	}
	return c, nil
}

// Validate checks the capacity invariants.
func (c Capacity) Validate() error {
	if c.Current < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "current participants cannot be negative")
	}
	if c.Max != nil {
		if *c.Max <= 0 {
			return dErrors.New(dErrors.CodeValidation, "max participants must be positive")
		}
		if c.Current > *c.Max {
			return dErrors.New(dErrors.CodeInvariantViolation, "current participants exceed maximum")
		}
	}
	return nil
}

// HasAvailableSlots reports whether at least one slot remains.
func (c Capacity) HasAvailableSlots() bool {
	return c.Max == nil || c.Current < *c.Max
}

// AvailableSlots returns the number of free slots, or math.MaxInt for
// unlimited capacity.
func (c Capacity) AvailableSlots() int {
	if c.Max == nil {
		return math.MaxInt
	}
	return *c.Max - c.Current
}

// Reserve returns a capacity with one more slot taken.
func (c Capacity) Reserve() (Capacity, error) {
	if !c.HasAvailableSlots() {
		return Capacity{}, dErrors.New(dErrors.CodeCapacityExceeded, "no available slots")
	}
	return Capacity{Max: c.Max, Current: c.Current + 1}, nil
}

// Release returns a capacity with one slot given back.
func (c Capacity) Release() (Capacity, error) {
	if c.Current == 0 {
		return Capacity{}, dErrors.New(dErrors.CodeInvariantViolation, "no reserved slots to release")
	}
	return Capacity{Max: c.Max, Current: c.Current - 1}, nil
}

// WithMax returns a capacity with a new maximum, rejecting a maximum below
// the already reserved count.
func (c Capacity) WithMax(max int) (Capacity, error) {
	if max <= 0 {
		return Capacity{}, dErrors.New(dErrors.CodeValidation, "max participants must be positive")
	}
	if max < c.Current {
		return Capacity{}, dErrors.New(dErrors.CodeValidation, "max participants cannot be below current participants")
	}
	return Capacity{Max: &max, Current: c.Current}, nil
}
