package services

import "errors"

// Shared service-level errors, mapped to HTTP statuses by the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email address is already in use")

	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNumberConflict = errors.New("team number is already registered")
	ErrStorageDisabled    = errors.New("object storage is not configured")

	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")

	ErrStageNotFound        = errors.New("stage not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrStageNotElimination  = errors.New("stage is not an elimination stage")
	ErrStageNotSwiss        = errors.New("stage is not a swiss stage")
	ErrStageAlreadySeeded   = errors.New("stage already has a generated bracket")
	ErrInvalidWinner        = errors.New("winning alliance must be RED, BLUE or TIE")
	ErrMatchAlreadyFinished = errors.New("match result has already been recorded")
)
