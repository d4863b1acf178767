package models

import (
	dErrors "eventhub/pkg/domain-errors"
)

// Location is the optional physical venue of an event. Coordinates come as a
// pair or not at all.
type Location struct {
	Name      string   `json:"location_name,omitempty"`
	Address   string   `json:"location_address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// NewLocation builds a validated location.
func NewLocation(name, address string, lat, lon *float64) (Location, error) {
	l := Location{Name: name, Address: address, Latitude: lat, Longitude: lon}
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	return l, nil
}

// Validate checks the coordinate invariants.
func (l Location) Validate() error {
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "latitude and longitude must be provided together")
	}
	if l.Latitude != nil {
		if *l.Latitude < -90 || *l.Latitude > 90 {
			return dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
		}
		if *l.Longitude < -180 || *l.Longitude > 180 {
			return dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
		}
	}
	return nil
}

// IsZero reports whether no venue information is set.
func (l Location) IsZero() bool {
	return l.Name == "" && l.Address == "" && l.Latitude == nil && l.Longitude == nil
}
