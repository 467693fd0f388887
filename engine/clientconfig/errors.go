package clientconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("client configuration not found")
	ErrVersionConflict  = errors.New("version conflict")
	ErrInvalidPatch     = errors.New("invalid patch")
	ErrValidationFailed = errors.New("validation failed")
)

// ConflictError reports a compare-and-swap that lost against a concurrent writer.
type ConflictError struct {
	ClientID string
	Expected int
	Current  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"version conflict for client %q: expected %d, current %d",
		e.ClientID, e.Expected, e.Current,
	)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// FieldError locates one validation problem with a dotted path such as people.managers[0].email.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the complete list of problems found in one candidate.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Override records a field the pipeline changed on the caller's behalf.
type Override struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
