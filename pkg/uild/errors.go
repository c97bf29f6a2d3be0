package uild

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType matches any *UnknownTypeError via errors.Is.
	ErrUnknownType = errors.New("uild: unknown entity type")
	// ErrInvalidCount is returned by GenerateBatch for counts outside [1, MaxBatch].
	ErrInvalidCount = errors.New("uild: invalid batch count")
	// ErrInvalid is returned by Compare when an operand is not a valid UILD.
	ErrInvalid = errors.New("uild: invalid identifier")
)

// UnknownTypeError reports an entity type missing from the registry.
type UnknownTypeError struct {
	Type  string
	Valid []string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("uild: unknown entity type %q, must be one of: %s", e.Type, strings.Join(e.Valid, ", "))
}

// Is lets errors.Is(err, ErrUnknownType) match.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// ParseError describes why a candidate string is not a well-formed UILD.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "uild: " + e.Reason
	}
	return fmt.Sprintf("uild: invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalid) match.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalid
}
