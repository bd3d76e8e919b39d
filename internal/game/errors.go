// internal/game/errors.go
package game

import "fmt"

// ErrorCode identifies why a command was rejected. Rejected commands are
// strict no-ops: no state changes and the version counter does not move.
type ErrorCode string

const (
	CodeInvalidPhase       ErrorCode = "InvalidPhase"
	CodeNotYourTurn        ErrorCode = "NotYourTurn"
	CodeNotYourInterrupt   ErrorCode = "NotYourInterrupt"
	CodeIndexOutOfRange    ErrorCode = "IndexOutOfRange"
	CodeTargetRequired     ErrorCode = "TargetRequired"
	CodeUnexpectedTarget   ErrorCode = "UnexpectedTarget"
	CodeCardNotPlayable    ErrorCode = "CardNotPlayable"
	CodeCardNotInterrupt   ErrorCode = "CardNotInterrupt"
	CodeCharacterTaken     ErrorCode = "CharacterTaken"
	CodeNotReady           ErrorCode = "NotReady"
	CodeAlreadyOrdered     ErrorCode = "AlreadyOrdered"
	CodeGameNotFound       ErrorCode = "GameNotFound"
	CodeGameAlreadyRunning ErrorCode = "GameAlreadyRunning"
	CodeAlreadyInGame      ErrorCode = "AlreadyInGame"
	CodeNotGameOwner       ErrorCode = "NotGameOwner"
	CodeNotSignedIn        ErrorCode = "NotSignedIn"
)

// Error is the error type returned by every engine and registry command.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on the code only, so callers can compare against the bare
// sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError builds an Error. Outside callers (the HTTP binding) use it for
// request-shape problems that never reach the engine.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Bare sentinels for errors.Is comparisons.
var (
	ErrInvalidPhase       = &Error{Code: CodeInvalidPhase}
	ErrNotYourTurn        = &Error{Code: CodeNotYourTurn}
	ErrNotYourInterrupt   = &Error{Code: CodeNotYourInterrupt}
	ErrIndexOutOfRange    = &Error{Code: CodeIndexOutOfRange}
	ErrTargetRequired     = &Error{Code: CodeTargetRequired}
	ErrUnexpectedTarget   = &Error{Code: CodeUnexpectedTarget}
	ErrCardNotPlayable    = &Error{Code: CodeCardNotPlayable}
	ErrCardNotInterrupt   = &Error{Code: CodeCardNotInterrupt}
	ErrCharacterTaken     = &Error{Code: CodeCharacterTaken}
	ErrNotReady           = &Error{Code: CodeNotReady}
	ErrAlreadyOrdered     = &Error{Code: CodeAlreadyOrdered}
	ErrGameNotFound       = &Error{Code: CodeGameNotFound}
	ErrGameAlreadyRunning = &Error{Code: CodeGameAlreadyRunning}
	ErrAlreadyInGame      = &Error{Code: CodeAlreadyInGame}
	ErrNotGameOwner       = &Error{Code: CodeNotGameOwner}
	ErrNotSignedIn        = &Error{Code: CodeNotSignedIn}
)

// CodeOf extracts the machine-readable code from an error, or empty string.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
