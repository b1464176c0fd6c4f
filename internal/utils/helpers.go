// Package utils provides utility functions and helpers for common operations
// used throughout the application. It includes error checking and slice
// operations that simplify repeated tasks.
//
// This package follows Go's idioms for error handling and uses Go's standard
// library patterns where appropriate. Functions in this package are designed
// to be simple, self-contained, and have minimal side effects.
package utils

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// IsUniqueViolation checks if an error is a unique violation on a specific constraint.
//
// Parameters:
//   - err: the error to check
//   - constraintName: a substring of the constraint name to match
//
// Returns:
//   - true if the error is a unique violation on the named constraint
func IsUniqueViolation(err error, constraintName string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constants.PGErrorDuplicateConstraint &&
			strings.Contains(pqErr.Constraint, constraintName)
	}
	return false
}

// ContainsString checks if a slice of strings contains a specific string.
//
// Parameters:
//   - slice: the slice of strings to search
//   - str: the string to look for
//
// Returns:
//   - true if the string is found in the slice, false otherwise
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}
