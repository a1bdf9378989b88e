package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRemoteID is returned when an insert collides on strava_id.
	ErrDuplicateRemoteID = errors.New("duplicate strava id")

	// ErrActiveAccessoryExists rejects a second active accessory of the same
	// type on one gear.
	ErrActiveAccessoryExists = errors.New("gear already has an active accessory of this type")

	// ErrNoGearMapping marks activity categories absent from the gear-type
	// table (ski types among them). No gear is created for them.
	ErrNoGearMapping = errors.New("no gear type mapping for activity type")
)
