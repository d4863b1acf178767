package models

import (
	dErrors "eventhub/pkg/domain-errors"
)

// Status is the lifecycle state of an event.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates and converts a string to Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid event status: "+s)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Mode describes how participants attend an event.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// ParseMode validates and converts a string to Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if !mode.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid event mode: "+s)
	}
	return mode, nil
}

func (m Mode) IsValid() bool {
	switch m {
	case ModeOnline, ModeOffline, ModeHybrid:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }
