package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Ingestion errors
	ErrEmptyTable       = errors.New("table has no header row")
	ErrUnrecognizedFile = errors.New("file matches no known table role")

	// Output preconditions
	ErrMissingTable    = errors.New("required table not ingested")
	ErrMissingGeometry = errors.New("boundary geometry not ingested")
)

// Error constructors with context
func NewUnrecognizedError(fileName string) error {
	return fmt.Errorf("%w: %s", ErrUnrecognizedFile, fileName)
}

func NewMissingTableError(role string) error {
	return fmt.Errorf("%w: %s", ErrMissingTable, role)
}

// Error checking helpers
func IsUnrecognized(err error) bool {
	return errors.Is(err, ErrUnrecognizedFile)
}

func IsMissingInput(err error) bool {
	return errors.Is(err, ErrMissingTable) || errors.Is(err, ErrMissingGeometry)
}
