// Package domain holds the typed identities shared across modules.
//
// IDs are positive 64-bit integers assigned by the persistence layer; the
// zero value means "not yet persisted". UserID is a foreign reference into
// the external identity platform — this service never resolves it, it only
// requires it to be positive.
package domain

import (
	"strconv"

	dErrors "eventhub/pkg/domain-errors"
)

type (
	// EventID identifies an event aggregate.
	EventID int64
	// ApplicationID identifies a registration application.
	ApplicationID int64
	// CategoryID identifies an event category.
	CategoryID int64
	// UserID references an identity owned by the external user service.
	UserID int64
)

func (id EventID) Valid() bool       { return id > 0 }
func (id ApplicationID) Valid() bool { return id > 0 }
func (id CategoryID) Valid() bool    { return id > 0 }
func (id UserID) Valid() bool        { return id > 0 }

func (id EventID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id ApplicationID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id CategoryID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id UserID) String() string        { return strconv.FormatInt(int64(id), 10) }

// ParseEventID parses a decimal event ID, rejecting anything non-positive.
func ParseEventID(s string) (EventID, error) {
	n, err := parsePositive(s, "event id")
	return EventID(n), err
}

// ParseApplicationID parses a decimal application ID, rejecting anything non-positive.
func ParseApplicationID(s string) (ApplicationID, error) {
	n, err := parsePositive(s, "application id")
	return ApplicationID(n), err
}

// ParseCategoryID parses a decimal category ID, rejecting anything non-positive.
func ParseCategoryID(s string) (CategoryID, error) {
	n, err := parsePositive(s, "category id")
	return CategoryID(n), err
}

// ParseUserID parses a decimal user ID, rejecting anything non-positive.
func ParseUserID(s string) (UserID, error) {
	n, err := parsePositive(s, "user id")
	return UserID(n), err
}

func parsePositive(s, what string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, what+" must be a decimal integer")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, what+" must be positive")
	}
	return n, nil
}
