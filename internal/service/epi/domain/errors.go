// Package domain holds the core ePI types and the error taxonomy shared by
// the FHIR adapters, the application layer and the transports.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinct failure classes of ePI processing.
var (
	// ErrInvalidBundle indicates a document that is not a usable ePI bundle
	// (not a Bundle, no Composition, or more than one Composition).
	ErrInvalidBundle = errors.New("invalid bundle")
	// ErrMissingContent indicates a Composition without narrative content.
	ErrMissingContent = errors.New("missing content")
	// ErrNotFound indicates a section or element link that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an element link for a class that already exists.
	ErrConflict = errors.New("already exists")
	// ErrMarkerNotFound indicates an absent start or end marker in a
	// span replacement.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrDepthExceeded indicates a section tree nested beyond the
	// configured bound.
	ErrDepthExceeded = errors.New("section depth exceeded")
	// ErrInvalidInput indicates invalid input or validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

// BundleError reports why a document cannot be treated as an ePI bundle.
type BundleError struct {
	Reason string // e.g. "resource is not a Bundle", "bundle contains 2 Composition resources"
	Err    error  // Underlying error, if any
}

func (e *BundleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid bundle: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid bundle: %s", e.Reason)
}

// Unwrap always yields the sentinel so callers can map the failure class;
// the underlying cause only ever feeds the message.
func (e *BundleError) Unwrap() error { return ErrInvalidBundle }

// NotFoundError identifies the section or link that could not be found.
type NotFoundError struct {
	Resource string // "section" or "element link"
	Key      string // section title or element class
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s not found: %q", e.Resource, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError identifies the element class that is already linked.
type ConflictError struct {
	ElementClass string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("element link already exists for class %q", e.ElementClass)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// MarkerError identifies the marker missing from a span replacement.
type MarkerError struct {
	Marker string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("marker not found in content: %q", e.Marker)
}

func (e *MarkerError) Unwrap() error { return ErrMarkerNotFound }

// DepthError reports the bound a section tree exceeded.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("section nesting exceeds maximum depth %d", e.Limit)
}

func (e *DepthError) Unwrap() error { return ErrDepthExceeded }

// ValidationError carries the issues found in rejected input.
type ValidationError struct {
	Subject string   // what was validated, e.g. "html content", "concept"
	Issues  []string // human-readable findings, in scan order
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s validation failed: %s", e.Subject, e.Issues[0])
	}
	return fmt.Sprintf("%s validation failed: %d issues", e.Subject, len(e.Issues))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
