package sale

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure of the session flow.
type Kind int

const (
	KindEnvironmentMissing Kind = iota + 1
	KindAuthorizationDenied
	KindQueryFailure
	KindSubmissionFailure
	KindValidationFailure
)

func (k Kind) String() string {
	switch k {
	case KindEnvironmentMissing:
		return "environment missing"
	case KindAuthorizationDenied:
		return "authorization denied"
	case KindQueryFailure:
		return "query failure"
	case KindSubmissionFailure:
		return "submission failure"
	case KindValidationFailure:
		return "validation failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel causes.
var (
	ErrNoProvider        = errors.New("no wallet-capable environment detected")
	ErrNoAccounts        = errors.New("wallet returned no accounts")
	ErrNotConnected      = errors.New("wallet not connected")
	ErrConnectPending    = errors.New("a connection request is already pending")
	ErrConnectCancelled  = errors.New("connection request cancelled by disconnect")
	ErrUserRejected      = errors.New("request rejected by user")
	ErrNotANumber        = errors.New("please enter a valid number")
	ErrAmountOutOfBounds = errors.New("amount out of bounds")
	ErrTooPrecise        = errors.New("amount has more than 18 decimal places")
)

// Error is returned by every Controller operation that fails. Err carries
// the underlying cause for logs; UserMessage is what the user sees.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns a short message suitable for display. Validation
// failures are shown inline, so they keep their specific text.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindEnvironmentMissing:
		return "No wallet detected. Configure an RPC endpoint and a signing wallet."
	case KindAuthorizationDenied:
		if errors.Is(e.Err, ErrNotConnected) {
			return "Connect a wallet first."
		}
		return "Wallet request was not authorized."
	case KindQueryFailure:
		return "Failed to fetch ICO details."
	case KindSubmissionFailure:
		return "Investment failed. Please try again."
	case KindValidationFailure:
		if e.Err != nil {
			msg := e.Err.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return "Something went wrong."
}

// KindOf returns the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// UserMessage returns the display message for any error.
func UserMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
