package models

import (
	dErrors "eventhub/pkg/domain-errors"
)

// Status is the review state of a registration application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates and converts a string to Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid application status: "+s)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Live reports whether the application still occupies the applicant's single
// live slot for the event. Rejected and cancelled applications do not block
// a re-apply.
func (s Status) Live() bool {
	return s == StatusPending || s == StatusApproved
}
