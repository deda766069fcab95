package session

import (
	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/vehicle"
	"github.com/muurk/vininsight/internal/vindecode"
)

// Status is the decode state of the current selection.
type Status string

const (
	NotDecoded Status = "not_decoded"
	Decoding   Status = "decoding"
	Decoded    Status = "decoded"
	Failed     Status = "error"
)

// Events driving the state machine.
const (
	EventDecode  = "decode"
	EventSucceed = "succeed"
	EventFail    = "fail"
	EventReset   = "reset"
)

// Label returns the user-facing status line. message is only used for Failed.
func (s Status) Label(message string) string {
	switch s {
	case NotDecoded:
		return "Not decoded"
	case Decoding:
		return "Decoding..."
	case Decoded:
		return "Decoded"
	case Failed:
		return "Error: " + message
	default:
		return string(s)
	}
}

// Snapshot is a read-only copy of the session state for renderers.
type Snapshot struct {
	Vehicle    vehicle.View
	HasVehicle bool
	Status     Status
	// Message is the failure message when Status is Failed.
	Message string
	// Result is set only when Status is Decoded.
	Result  *presenter.ViewModel
	Payload *vindecode.Payload
}

// StatusLabel returns the status line for the snapshot.
func (s Snapshot) StatusLabel() string {
	return s.Status.Label(s.Message)
}

// CanDecode reports whether the decode action should be offered.
func (s Snapshot) CanDecode() bool {
	return s.HasVehicle && s.Vehicle.CanDecode() && s.Status != Decoding
}

// Notice is a blocking message the user must acknowledge.
type Notice struct {
	Title   string
	Message string
}

// Notifier shows notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Observer receives a snapshot after every state change.
type Observer func(Snapshot)
