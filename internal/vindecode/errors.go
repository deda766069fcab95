package vindecode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Kind is the category of a decode failure.
type Kind int

const (
	// KindTransport covers connection failures and non-2xx responses.
	KindTransport Kind = iota
	// KindParse indicates a 2xx response whose body is not a JSON object.
	KindParse
	// KindPrecondition indicates the request was never sent (no VIN, no key).
	KindPrecondition
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "Transport Error"
	case KindParse:
		return "Parse Error"
	case KindPrecondition:
		return "Precondition Error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// UnknownStatus is used when no status text is available.
const UnknownStatus = "Unknown error"

// DecodeError is returned for every failed decode.
type DecodeError struct {
	Kind       Kind   // Category of error
	Message    string // User-facing message, safe to display
	StatusCode int    // HTTP status code (0 when no response arrived)
	Err        error  // Underlying error, credential-free
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (caused by: %v)", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error for an HTTP status.
// statusText is the reason phrase; an empty one becomes "Unknown error".
func NewTransportError(statusCode int, statusText string, err error) *DecodeError {
	if strings.TrimSpace(statusText) == "" {
		statusText = UnknownStatus
	}
	return &DecodeError{
		Kind:       KindTransport,
		Message:    "API request failed: " + statusText,
		StatusCode: statusCode,
		Err:        stripURL(err),
	}
}

// NewParseError creates a parse error from the parser's message.
func NewParseError(err error) *DecodeError {
	msg := "invalid response"
	if err != nil {
		msg = err.Error()
	}
	return &DecodeError{
		Kind:    KindParse,
		Message: "Failed to parse API response: " + msg,
		Err:     err,
	}
}

// NewPreconditionError reports a request that was refused before sending.
func NewPreconditionError(message string, err error) *DecodeError {
	return &DecodeError{
		Kind:    KindPrecondition,
		Message: message,
		Err:     err,
	}
}

// stripURL drops *url.Error wrappers, which carry the request URL and with it the key.
func stripURL(err error) error {
	var urlErr *url.Error
	for errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return err
}

func kindOf(err error) (Kind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransport
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindParse
}

// IsPreconditionError checks if an error is a precondition error
func IsPreconditionError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindPrecondition
}

// ShortMessage returns the message shown in the decode status.
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// TroubleshootingHint returns user-friendly advice for a failed decode.
func TroubleshootingHint(err error) string {
	var de *DecodeError
	if !errors.As(err, &de) {
		return "An unexpected error occurred. Please try again."
	}

	switch de.Kind {
	case KindParse:
		return "Failed to parse API response. Check your API key."

	case KindTransport:
		if errors.Is(de.Err, context.Canceled) {
			return "The request was cancelled."
		}
		if errors.Is(de.Err, context.DeadlineExceeded) || os.IsTimeout(de.Err) {
			return "The decode service did not respond in time. Check network connectivity."
		}
		return strings.Join([]string{
			"API request failed. Please check:",
			"  1. Your API key is valid",
			"  2. You have access to VIN decode API",
			"  3. Network connectivity",
		}, "\n")

	case KindPrecondition:
		return de.Message

	default:
		return "An error occurred. Please check the error message for details."
	}
}
