package session

import (
	"context"
	"errors"
	"strings"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/muurk/vininsight/internal/config"
	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/vehicle"
	"github.com/muurk/vininsight/internal/vindecode"
)

// Precondition messages.
const (
	MsgVINNotSpecified = "VIN not specified"
	MsgAPIKeyRequired  = "API key required"
)

// Notice texts.
const (
	TitleError          = "Error"
	TitleAPIKeyRequired = "API Key Required"
	TitleDecodeError    = "Decode Error"
	MsgEnterAPIKey      = "Please enter your auto.dev API key first."
)

// ErrDecodeInProgress is returned by BeginDecode while a decode is running.
var ErrDecodeInProgress = errors.New("decode already in progress")

// Decoder performs one VIN lookup. *vindecode.Client implements it.
type Decoder interface {
	Decode(ctx context.Context, vin, apiKey string) (*vindecode.Payload, error)
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier routes blocking notices to n.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithObserver registers fn for state snapshots.
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, fn) }
}

// WithEscaper sets the escaper used for summary rows. The default is
// presenter.TerminalEscape.
func WithEscaper(esc presenter.Escaper) Option {
	return func(s *Session) { s.escape = esc }
}

// Session is the decode workflow bound to one selection.
type Session struct {
	sel      *vehicle.Selection
	store    config.CredentialStore
	decoder  Decoder
	notifier Notifier
	escape   presenter.Escaper

	machine   *fsm.FSM
	observers []Observer

	message string
	payload *vindecode.Payload
	result  *presenter.ViewModel

	unsubscribe func()
}

// decodeIntent is filled in by the decode guard.
type decodeIntent struct {
	vin    string
	apiKey string
}

// New creates a session following sel.
func New(sel *vehicle.Selection, store config.CredentialStore, dec Decoder, opts ...Option) *Session {
	s := &Session{
		sel:      sel,
		store:    store,
		decoder:  dec,
		notifier: NotifierFunc(func(Notice) {}),
		escape:   presenter.TerminalEscape,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = fsm.NewFSM(
		string(NotDecoded),
		fsm.Events{
			{Name: EventDecode, Src: []string{string(NotDecoded), string(Decoded), string(Failed)}, Dst: string(Decoding)},
			{Name: EventSucceed, Src: []string{string(Decoding)}, Dst: string(Decoded)},
			{Name: EventFail, Src: []string{string(Decoding)}, Dst: string(Failed)},
			{Name: EventReset, Src: []string{string(NotDecoded), string(Decoding), string(Decoded), string(Failed)}, Dst: string(NotDecoded)},
		},
		fsm.Callbacks{
			"before_" + EventDecode: wrapEvent(s.guardDecode),
			"enter_state": func(_ context.Context, e *fsm.Event) {
				vin := ""
				if v, ok := s.sel.View(); ok {
					vin = v.VIN
				}
				logging.LogTransition(vin, e.Event, e.Src, e.Dst, s.sel.Epoch())
				s.publish()
			},
		},
	)

	s.unsubscribe = sel.Subscribe(s.onSelect)
	return s
}

// wrapEvent turns an error-returning guard into a callback that cancels the
// transition on error.
func wrapEvent(fn func(ctx context.Context, e *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, e *fsm.Event) {
		if err := fn(ctx, e); err != nil {
			e.Cancel(err)
		}
	}
}

// Close detaches the session from its selection.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Status returns the current state.
func (s *Session) Status() Status {
	return Status(s.machine.Current())
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{Status: s.Status()}
	snap.Vehicle, snap.HasVehicle = s.sel.View()
	switch snap.Status {
	case Failed:
		snap.Message = s.message
	case Decoded:
		snap.Result = s.result
		snap.Payload = s.payload
	}
	return snap
}

func (s *Session) publish() {
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

func (s *Session) onSelect(vehicle.View) {
	s.message = ""
	s.payload = nil
	s.result = nil

	err := s.machine.Event(context.Background(), EventReset)
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		// Already not_decoded; the vehicle still changed.
		s.publish()
	} else if err != nil {
		logging.Error("Failed to reset decode session", zap.Error(err))
	}
}

// guardDecode validates a decode before the state changes.
func (s *Session) guardDecode(_ context.Context, e *fsm.Event) error {
	intent := e.Args[0].(*decodeIntent)

	view, ok := s.sel.View()
	if !ok || !view.CanDecode() {
		return vindecode.NewPreconditionError(MsgVINNotSpecified, nil)
	}

	key, err := s.store.Load()
	if err != nil {
		return vindecode.NewPreconditionError(MsgAPIKeyRequired, err)
	}
	if strings.TrimSpace(key) == "" {
		return vindecode.NewPreconditionError(MsgAPIKeyRequired, nil)
	}

	intent.vin = view.VIN
	intent.apiKey = key
	return nil
}

// BeginDecode validates the selection and credential and moves to decoding.
//
// A precondition failure returns a precondition *vindecode.DecodeError,
// shows a notice and leaves the state unchanged. ErrDecodeInProgress is
// returned while a decode is already running. No request is made in either
// case.
func (s *Session) BeginDecode() (*Request, error) {
	intent := &decodeIntent{}
	err := s.machine.Event(context.Background(), EventDecode, intent)
	if err == nil {
		return &Request{
			Epoch:   s.sel.Epoch(),
			VIN:     intent.vin,
			apiKey:  intent.apiKey,
			decoder: s.decoder,
		}, nil
	}

	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		err = canceled.Err
	}

	var invalid fsm.InvalidEventError
	switch {
	case errors.As(err, &invalid):
		return nil, ErrDecodeInProgress
	case vindecode.IsPreconditionError(err):
		s.notifyPrecondition(err)
		return nil, err
	default:
		return nil, err
	}
}

func (s *Session) notifyPrecondition(err error) {
	if vindecode.ShortMessage(err) == MsgVINNotSpecified {
		s.notifier.Notify(Notice{Title: TitleError, Message: MsgVINNotSpecified})
		return
	}
	s.notifier.Notify(Notice{Title: TitleAPIKeyRequired, Message: MsgEnterAPIKey})
}

// Complete applies the outcome of a request. It reports false, changing
// nothing, when the result is stale or no decode is running.
func (s *Session) Complete(c Completion) bool {
	if c.Epoch != s.sel.Epoch() || s.Status() != Decoding {
		logging.Debug("Discarding stale decode result",
			zap.String("vin", c.VIN),
			zap.Uint64("epoch", c.Epoch),
			zap.Uint64("current_epoch", s.sel.Epoch()),
		)
		return false
	}

	ctx := context.Background()
	if c.Err != nil {
		s.message = vindecode.ShortMessage(c.Err)
		s.payload = nil
		s.result = nil
		logging.Warn("VIN decode failed", zap.String("vin", c.VIN), zap.Error(c.Err))
		if err := s.machine.Event(ctx, EventFail); err != nil {
			logging.Error("Failed to record decode failure", zap.Error(err))
			return false
		}
		s.notifier.Notify(Notice{Title: TitleDecodeError, Message: s.message})
		return true
	}

	vm := presenter.Build(c.Payload, s.escape)
	s.message = ""
	s.payload = c.Payload
	s.result = &vm
	if err := s.machine.Event(ctx, EventSucceed); err != nil {
		logging.Error("Failed to record decode result", zap.Error(err))
		return false
	}
	return true
}

// Decode runs a whole decode synchronously on the calling goroutine.
func (s *Session) Decode(ctx context.Context) error {
	req, err := s.BeginDecode()
	if err != nil {
		return err
	}
	c := req.Do(ctx)
	s.Complete(c)
	return c.Err
}
