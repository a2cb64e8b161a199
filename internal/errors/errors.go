package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an stf2json error code.
type ErrorCode string

const (
	ErrLex            ErrorCode = "LEX_ERROR"         // malformed or truncated chunk
	ErrGrammar        ErrorCode = "GRAMMAR_ERROR"     // tag not valid in current state
	ErrLinkFormat     ErrorCode = "LINK_FORMAT_ERROR" // unclassifiable category link
	ErrDateFormat     ErrorCode = "DATE_FORMAT_ERROR" // timestamp does not match selected format
	ErrConfig         ErrorCode = "CONFIG_ERROR"      // date-format index outside 1..12
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrInternal       ErrorCode = "INTERNAL"
)

// STFError represents a structured error with code and details.
// Every STFError aborts the run; there is no recovery path.
type STFError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *STFError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewLex creates an error for a malformed or truncated chunk.
func NewLex(msg string) *STFError {
	return &STFError{
		Code:    ErrLex,
		Message: msg,
	}
}

// NewGrammar creates an error for a tag that is not valid in the current
// builder state. The failing tag is kept in Details for the diagnostic line.
func NewGrammar(state, tag string) *STFError {
	return &STFError{
		Code:    ErrGrammar,
		Message: fmt.Sprintf("[%s] unexpected tag %q here", state, tag),
		Details: map[string]any{"state": state, "tag": tag},
	}
}

// NewGrammarMsg creates a grammar error with a free-form message, used when a
// required lookahead chunk has the wrong shape.
func NewGrammarMsg(msg string) *STFError {
	return &STFError{
		Code:    ErrGrammar,
		Message: msg,
	}
}

// NewLinkFormat creates an error for a category link definition that cannot
// be classified or carries an unsupported value type.
func NewLinkFormat(msg, definition string) *STFError {
	return &STFError{
		Code:    ErrLinkFormat,
		Message: msg,
		Details: map[string]any{"definition": definition},
	}
}

// NewDateFormat creates an error for a timestamp that does not parse with the
// selected legacy format.
func NewDateFormat(text string, formatIndex int) *STFError {
	return &STFError{
		Code:    ErrDateFormat,
		Message: fmt.Sprintf("timestamp %q does not match date format %d", text, formatIndex),
		Details: map[string]any{"text": text, "format": formatIndex},
	}
}

// NewDateFormatMsg creates a date-format error with a free-form message,
// used for the STF header timestamp which has no table index.
func NewDateFormatMsg(msg string) *STFError {
	return &STFError{
		Code:    ErrDateFormat,
		Message: msg,
	}
}

// NewConfig creates an error for an invalid configuration value.
func NewConfig(msg string) *STFError {
	return &STFError{
		Code:    ErrConfig,
		Message: msg,
	}
}

// NewInvalidRequest creates an error for invalid operation parameters.
func NewInvalidRequest(msg string) *STFError {
	return &STFError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a missing archive record.
func NewNotFound(identifier string) *STFError {
	return &STFError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("record not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInternal creates an error for unexpected internal failures. The original
// error is kept in Details for logging; the message stays generic.
func NewInternal(err error) *STFError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &STFError{
		Code:    ErrInternal,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is an STFError with the given code, unwrapping as
// needed.
func Is(err error, code ErrorCode) bool {
	var sErr *STFError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
