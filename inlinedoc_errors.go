// inlinedoc/inlinedoc_errors.go
// Contains exported error definitions for the inlinedoc package.
package inlinedoc

import "errors"

// =============================================================================
// Exported Errors
// =============================================================================

var (
	// ErrConfig indicates non-fatal errors during config loading or processing.
	ErrConfig = errors.New("configuration error")

	// ErrInvalidConfig indicates a configuration value is invalid after validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBackendUnavailable indicates failure communicating with the symbol backend.
	ErrBackendUnavailable = errors.New("symbol backend unavailable")

	// ErrDocumentNotOpen indicates a request referenced a document the server
	// does not have open.
	ErrDocumentNotOpen = errors.New("document not open")

	// ErrInvalidPositionInput indicates input position values (line/col/offset) are invalid.
	ErrInvalidPositionInput = errors.New("invalid input position")

	// ErrPositionOutOfRange indicates a position is outside the valid bounds of the buffer.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrInvalidRegion indicates a region with end before start or negative bounds.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrEngineClosed indicates an operation on an engine after Close.
	ErrEngineClosed = errors.New("engine closed")
)
