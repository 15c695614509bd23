package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/constants"
)

// Sentinels for errors.Is. Each concrete error type below matches exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failed")
	ErrRemote     = errors.New("remote store reported failure")
)

// ValidationError is raised before any network call when a required
// identifying or content field is missing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TransportKind classifies transport failures so they can be translated
// into different user-facing messages.
type TransportKind string

const (
	KindTimeout TransportKind = "timeout"
	KindNetwork TransportKind = "network"
	KindStatus  TransportKind = "status"
	KindDecode  TransportKind = "decode"
	KindCircuit TransportKind = "circuit"
)

// TransportError covers network failures, non-2xx statuses and bodies that
// are not valid JSON envelopes.
type TransportError struct {
	Action string
	Kind   TransportKind
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: unexpected status %d", e.Action, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Action, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Action, e.Kind)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// UserMessage distinguishes timeout, connectivity and generic failures.
func (e *TransportError) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return constants.MsgRequestTimeout
	case KindNetwork, KindCircuit:
		return constants.MsgNetworkUnavailable
	default:
		return constants.MsgServerCommunication
	}
}

// NewTransport classifies err into a TransportError for action.
func NewTransport(action string, err error) *TransportError {
	kind := KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &TransportError{Action: action, Kind: kind, Err: err}
}

// RemoteError is a well-formed envelope with success=false.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Action)
	}
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// UserMessage translates any error produced by this module into text that
// can be shown next to the control that triggered it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.UserMessage()
	}

	var rErr *RemoteError
	if errors.As(err, &rErr) {
		if isPermissionMessage(rErr.Message) {
			return constants.MsgPermissionDenied
		}
		if strings.TrimSpace(rErr.Message) != "" {
			return rErr.Message
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return constants.MsgRequestTimeout
	}
	return constants.MsgUnknownError
}

func isPermissionMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"permission", "unauthorized", "forbidden", "권한"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsPermissionDenied reports whether err is a remote failure whose message
// says the caller lacks access.
func IsPermissionDenied(err error) bool {
	var rErr *RemoteError
	return errors.As(err, &rErr) && isPermissionMessage(rErr.Message)
}
