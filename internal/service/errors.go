package service

import "errors"

// Admission and session errors. These surface synchronously to the caller of
// the mutating operation; controllers map them to HTTP statuses.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionInactive     = errors.New("session is no longer active")
	ErrSessionFull         = errors.New("session is full")
	ErrForbidden           = errors.New("only the host can perform this action")
	ErrInvalidTarget       = errors.New("cannot perform this action on yourself")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyParticipant  = errors.New("user is already a participant")
	ErrParticipantBlocked  = errors.New("you have been removed from this session")
	ErrInvalidQuality      = errors.New("unknown connection quality")

	// ErrMalformedEvent marks an inbound real-time envelope missing required
	// fields for its declared kind. Never fatal to a connection.
	ErrMalformedEvent = errors.New("malformed event")
)
