package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/muurk/vininsight/internal/config"
	"github.com/muurk/vininsight/internal/vehicle"
	"github.com/muurk/vininsight/internal/vindecode"
)

// fakeDecoder counts calls and returns a canned outcome.
type fakeDecoder struct {
	calls   int
	lastVIN string
	lastKey string
	body    string
	err     error
}

func (f *fakeDecoder) Decode(_ context.Context, vin, apiKey string) (*vindecode.Payload, error) {
	f.calls++
	f.lastVIN, f.lastKey = vin, apiKey
	if f.err != nil {
		return nil, f.err
	}
	body := f.body
	if body == "" {
		body = "{}"
	}
	return vindecode.ParsePayload([]byte(body))
}

type harness struct {
	sel     *vehicle.Selection
	store   *config.MemoryCredentialStore
	dec     *fakeDecoder
	s       *Session
	notices []Notice
	snaps   []Snapshot
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sel:   vehicle.NewSelection(),
		store: &config.MemoryCredentialStore{},
		dec:   &fakeDecoder{},
	}
	h.s = New(h.sel, h.store, h.dec,
		WithNotifier(NotifierFunc(func(n Notice) { h.notices = append(h.notices, n) })),
		WithObserver(func(s Snapshot) { h.snaps = append(h.snaps, s) }),
	)
	t.Cleanup(h.s.Close)
	return h
}

func TestBeginDecode_BlankVIN(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "abc123"
	h.sel.Select(vehicle.Vehicle{ID: "1", Name: "Van", VIN: "   "})

	if h.s.Snapshot().CanDecode() {
		t.Error("decode action should be hidden for a blank VIN")
	}

	_, err := h.s.BeginDecode()
	if !vindecode.IsPreconditionError(err) || vindecode.ShortMessage(err) != MsgVINNotSpecified {
		t.Fatalf("BeginDecode() error = %v, want %q precondition", err, MsgVINNotSpecified)
	}
	if h.s.Status() != NotDecoded {
		t.Errorf("Status() = %v, want unchanged", h.s.Status())
	}
	if h.dec.calls != 0 {
		t.Errorf("decoder called %d times, want 0", h.dec.calls)
	}
	if len(h.notices) != 1 || h.notices[0].Message != MsgVINNotSpecified {
		t.Errorf("notices = %+v", h.notices)
	}
}

func TestBeginDecode_NoSelection(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "abc123"
	if _, err := h.s.BeginDecode(); !vindecode.IsPreconditionError(err) {
		t.Fatalf("BeginDecode() error = %v, want precondition", err)
	}
}

func TestBeginDecode_MissingKey(t *testing.T) {
	tests := []struct {
		name  string
		store *config.MemoryCredentialStore
	}{
		{"empty", &config.MemoryCredentialStore{}},
		{"whitespace", &config.MemoryCredentialStore{Value: "  \t"}},
		{"read failure", &config.MemoryCredentialStore{Err: errors.New("disk gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.s.store = tt.store
			h.sel.Select(vehicle.Vehicle{ID: "1", VIN: "3GCUDHEL3NG668790"})

			_, err := h.s.BeginDecode()
			if !vindecode.IsPreconditionError(err) || vindecode.ShortMessage(err) != MsgAPIKeyRequired {
				t.Fatalf("BeginDecode() error = %v, want %q", err, MsgAPIKeyRequired)
			}
			if h.dec.calls != 0 {
				t.Errorf("decoder called %d times, want 0", h.dec.calls)
			}
			if h.s.Status() != NotDecoded {
				t.Errorf("Status() = %v, want NotDecoded", h.s.Status())
			}
			if len(h.notices) != 1 || h.notices[0].Title != TitleAPIKeyRequired {
				t.Errorf("notices = %+v", h.notices)
			}
		})
	}
}

func TestDecode_Success(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "abc123"
	h.dec.body = `{"make":"Chevrolet","model":"Silverado","year":2022,"specs":{"engine":"V8"}}`
	h.sel.Select(vehicle.Vehicle{ID: "7", Name: "Truck", VIN: " 3GCUDHEL3NG668790 "})

	req, err := h.s.BeginDecode()
	if err != nil {
		t.Fatalf("BeginDecode() error = %v", err)
	}
	if h.s.Status() != Decoding {
		t.Fatalf("Status() = %v, want Decoding", h.s.Status())
	}
	if got := h.s.Snapshot().StatusLabel(); got != "Decoding..." {
		t.Errorf("StatusLabel() = %q", got)
	}

	if !h.s.Complete(req.Do(context.Background())) {
		t.Fatal("Complete() = false, want applied")
	}
	if h.dec.lastVIN != "3GCUDHEL3NG668790" || h.dec.lastKey != "abc123" {
		t.Errorf("decoder got vin=%q key=%q", h.dec.lastVIN, h.dec.lastKey)
	}

	snap := h.s.Snapshot()
	if snap.Status != Decoded || snap.StatusLabel() != "Decoded" {
		t.Fatalf("Status = %v", snap.Status)
	}
	var keys []string
	for _, r := range snap.Result.Rows {
		keys = append(keys, r.Key)
	}
	if strings.Join(keys, ",") != "make,model,year" {
		t.Errorf("summary keys = %v, want make,model,year", keys)
	}
	if !strings.Contains(snap.Result.Raw, `"specs"`) {
		t.Error("raw view should include nested specs")
	}
	if len(h.notices) != 0 {
		t.Errorf("unexpected notices: %+v", h.notices)
	}
}

func TestDecode_InProgressRejected(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "k"
	h.sel.Select(vehicle.Vehicle{VIN: "X"})

	if _, err := h.s.BeginDecode(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.s.BeginDecode(); !errors.Is(err, ErrDecodeInProgress) {
		t.Errorf("second BeginDecode() error = %v, want ErrDecodeInProgress", err)
	}
	if h.s.Snapshot().CanDecode() {
		t.Error("decode action should be hidden while decoding")
	}
}

func TestDecode_FailureThenRetry(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "k"
	h.dec.err = vindecode.NewTransportError(500, "Internal Server Error", nil)
	h.sel.Select(vehicle.Vehicle{VIN: "X"})

	if err := h.s.Decode(context.Background()); !vindecode.IsTransportError(err) {
		t.Fatalf("Decode() error = %v", err)
	}
	snap := h.s.Snapshot()
	if snap.Status != Failed || snap.StatusLabel() != "Error: API request failed: Internal Server Error" {
		t.Errorf("status = %q", snap.StatusLabel())
	}
	if len(h.notices) != 1 || h.notices[0].Title != TitleDecodeError {
		t.Errorf("notices = %+v", h.notices)
	}

	h.dec.err = nil
	if err := h.s.Decode(context.Background()); err != nil {
		t.Fatalf("retry Decode() error = %v", err)
	}
	if h.s.Status() != Decoded {
		t.Errorf("Status() after retry = %v", h.s.Status())
	}
	if h.dec.calls != 2 {
		t.Errorf("decoder calls = %d, want 2", h.dec.calls)
	}
}

func TestSelect_AlwaysResets(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "k"
	v := vehicle.Vehicle{ID: "1", VIN: "X"}
	h.sel.Select(v)

	for i := 0; i < 3; i++ {
		if err := h.s.Decode(context.Background()); err != nil {
			t.Fatal(err)
		}
		h.sel.Select(v)
		snap := h.s.Snapshot()
		if snap.Status != NotDecoded || snap.Result != nil {
			t.Fatalf("after re-select %d: status=%v result=%v", i, snap.Status, snap.Result)
		}
	}
}

func TestComplete_StaleResultIgnored(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "k"
	h.dec.body = `{"make":"A"}`
	h.sel.Select(vehicle.Vehicle{ID: "a", VIN: "AAA"})

	reqA, err := h.s.BeginDecode()
	if err != nil {
		t.Fatal(err)
	}
	h.sel.Select(vehicle.Vehicle{ID: "b", VIN: "BBB"})

	if h.s.Complete(reqA.Do(context.Background())) {
		t.Error("Complete() applied a stale result")
	}
	snap := h.s.Snapshot()
	if snap.Status != NotDecoded || snap.Vehicle.VIN != "BBB" {
		t.Errorf("snapshot = %+v, want B not decoded", snap)
	}

	// A stale failure must not raise a notice either.
	reqB, _ := h.s.BeginDecode()
	h.sel.Select(vehicle.Vehicle{ID: "c", VIN: "CCC"})
	if h.s.Complete(Completion{Epoch: reqB.Epoch, Err: errors.New("late")}) {
		t.Error("Complete() applied a stale failure")
	}
	if len(h.notices) != 0 {
		t.Errorf("notices = %+v, want none", h.notices)
	}
}

func TestObserversSeeEveryChange(t *testing.T) {
	h := newHarness(t)
	h.store.Value = "k"
	h.sel.Select(vehicle.Vehicle{VIN: "X"})
	_ = h.s.Decode(context.Background())

	var got []Status
	for _, s := range h.snaps {
		got = append(got, s.Status)
	}
	want := []Status{NotDecoded, Decoding, Decoded}
	if len(got) != len(want) {
		t.Fatalf("snapshots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEndToEnd_HTTP(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("apiKey") != "abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"make":"Chevrolet","model":"Silverado","year":2022,"specs":{"engine":"V8"}}`))
	}))
	defer srv.Close()

	sel := vehicle.NewSelection()
	store := &config.MemoryCredentialStore{}
	s := New(sel, store, vindecode.NewClient(srv.URL))
	defer s.Close()

	truck := vehicle.Vehicle{ID: "1", Name: "Truck", VIN: "3GCUDHEL3NG668790"}

	// No credential: refused locally.
	sel.Select(truck)
	if _, err := s.BeginDecode(); !vindecode.IsPreconditionError(err) {
		t.Fatalf("BeginDecode() without key error = %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("no request should be sent without a key")
	}

	// Credential saved: decoded.
	if err := store.Save("abc123"); err != nil {
		t.Fatal(err)
	}
	sel.Select(truck)
	if err := s.Decode(context.Background()); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Status != Decoded || len(snap.Result.Rows) != 3 {
		t.Errorf("snapshot = %+v", snap)
	}

	// Same vehicle again: reset.
	sel.Select(truck)
	if s.Status() != NotDecoded {
		t.Errorf("Status() after re-select = %v", s.Status())
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}
}
