package domain

import "errors"

var (
	// Entry errors
	ErrInvalidEntry            = errors.New("invalid entry")
	ErrInvalidInstallmentCount = errors.New("invalid installment count")
	ErrInvalidStatus           = errors.New("invalid status for entry type")
	ErrEntryNotFound           = errors.New("entry not found")

	// Report errors
	ErrInvalidPeriod = errors.New("invalid period, expected YYYY-MM")

	// Backup errors
	ErrInvalidBackup = errors.New("invalid backup document")

	// Settings errors
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidGoal     = errors.New("monthly goal must be non-zero")

	// ErrPersistenceFailure wraps any error returned by the store collaborator.
	ErrPersistenceFailure = errors.New("persistence failure")
)
