package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vininsight/internal/config"
	"github.com/muurk/vininsight/internal/session"
	"github.com/muurk/vininsight/internal/vehicle"
	"github.com/muurk/vininsight/internal/vindecode"
)

type fakeDecoder struct {
	calls int
	body  string
	err   error
}

func (f *fakeDecoder) Decode(_ context.Context, _, _ string) (*vindecode.Payload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return vindecode.ParsePayload([]byte(f.body))
}

var testVehicles = vehicle.StaticProvider{
	{ID: "1", Name: "Silverado", VIN: "3GCUDHEL3NG668790", Model: "Silverado 1500", Year: "2022"},
	{ID: "2", Name: "Trailer", VIN: ""},
}

func newTestApp(t *testing.T, apiKey string) (AppModel, *config.MemoryCredentialStore, *fakeDecoder) {
	t.Helper()
	store := &config.MemoryCredentialStore{Value: apiKey}
	dec := &fakeDecoder{body: `{"make":"Chevrolet","model":"Silverado","year":2022}`}

	m := NewAppModel(context.Background(), Deps{Provider: testVehicles, Store: store, Decoder: dec})
	t.Cleanup(m.Session.Close)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.initCmd == nil {
		t.Fatal("initCmd = nil, want list load")
	}
	m, _ = update(t, m, m.initCmd())
	return m, store, dec
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update() returned %T, want AppModel", next)
	}
	return app, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and any batched commands, returning the messages of the
// given kinds. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case decodeDoneMsg, testDoneMsg, vehiclesLoadedMsg:
		out = append(out, msg)
	}
	return out
}

func TestAppModel_LoadsVehicles(t *testing.T) {
	m, _, _ := newTestApp(t, "")

	if m.Nav.Loading {
		t.Error("Nav.Loading = true after load")
	}
	if got := len(m.Nav.List.Items()); got != 2 {
		t.Fatalf("len(Items) = %d, want 2", got)
	}
	view := m.View()
	for _, want := range []string{"Silverado", "Select a vehicle", AppName} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestAppModel_DecodeFlow(t *testing.T) {
	m, _, dec := newTestApp(t, "abc123")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	snap := m.Session.Snapshot()
	if !snap.HasVehicle || snap.Vehicle.VIN != "3GCUDHEL3NG668790" {
		t.Fatalf("selected vehicle = %+v, want first vehicle", snap.Vehicle)
	}
	if !strings.Contains(m.View(), "[d] Decode VIN") {
		t.Error("View() should offer the decode action")
	}

	m, cmd := update(t, m, keyRunes("d"))
	if got := m.Session.Status(); got != session.Decoding {
		t.Fatalf("Status() = %v, want %v", got, session.Decoding)
	}

	// A second press while decoding is ignored.
	m, again := update(t, m, keyRunes("d"))
	if len(collect(again)) != 0 {
		t.Error("second decode should not start a request")
	}

	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}

	if dec.calls != 1 {
		t.Errorf("decoder calls = %d, want 1", dec.calls)
	}
	if got := m.Session.Status(); got != session.Decoded {
		t.Fatalf("Status() = %v, want %v", got, session.Decoded)
	}
	rows := m.Content.Summary.Rows()
	if len(rows) != 3 || rows[0][0] != "make" || rows[0][1] != "Chevrolet" {
		t.Errorf("summary rows = %v", rows)
	}
	if !strings.Contains(m.Content.Raw.View(), `"make": "Chevrolet"`) {
		t.Errorf("raw view = %q", m.Content.Raw.View())
	}
}

func TestAppModel_StaleDecodeDiscarded(t *testing.T) {
	m, _, _ := newTestApp(t, "abc123")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := update(t, m, keyRunes("d"))

	// Move to the second vehicle before the result arrives.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}

	snap := m.Session.Snapshot()
	if snap.Vehicle.Name != "Trailer" {
		t.Fatalf("selected = %q, want Trailer", snap.Vehicle.Name)
	}
	if snap.Status != session.NotDecoded || snap.Result != nil {
		t.Errorf("stale result applied: status %v, result %v", snap.Status, snap.Result)
	}
}

func TestAppModel_DecodeWithoutKeyShowsNotice(t *testing.T) {
	m, _, dec := newTestApp(t, "")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := update(t, m, keyRunes("d"))
	if len(collect(cmd)) != 0 {
		t.Fatal("decode without a key should not start a request")
	}
	if dec.calls != 0 {
		t.Errorf("decoder calls = %d, want 0", dec.calls)
	}

	view := m.View()
	if !strings.Contains(view, session.TitleAPIKeyRequired) {
		t.Errorf("View() missing %q notice", session.TitleAPIKeyRequired)
	}

	// The notice swallows keys until dismissed.
	m, _ = update(t, m, keyRunes("q"))
	if _, ok := m.notices.current(); !ok {
		t.Fatal("notice dismissed by q")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.notices.current(); ok {
		t.Error("notice still shown after enter")
	}
}

func TestAppModel_EditKeyWritesThrough(t *testing.T) {
	m, store, _ := newTestApp(t, "")

	m, _ = update(t, m, keyRunes("a"))
	if m.focus != focusAPIKey {
		t.Fatalf("focus = %v, want API key", m.focus)
	}

	// Keys that are bindings elsewhere are typed into the field.
	m, _ = update(t, m, keyRunes("dq1"))
	if store.Value != "dq1" {
		t.Errorf("stored key = %q, want %q", store.Value, "dq1")
	}
	if m.Session.Status() != session.NotDecoded {
		t.Error("typing in the key field must not start a decode")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	n, ok := m.notices.current()
	if !ok || n.Message != "API key saved" {
		t.Errorf("notice = %+v, want API key saved", n)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusVehicles {
		t.Errorf("focus = %v, want vehicles", m.focus)
	}
}

func TestAppModel_SaveKeyFailure(t *testing.T) {
	m, store, _ := newTestApp(t, "")
	store.Err = errors.New("disk full")

	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, keyRunes("x"))

	n, ok := m.notices.current()
	if !ok || n.Title != session.TitleError {
		t.Errorf("notice = %+v, want error", n)
	}
}

func TestAppModel_TestConnection(t *testing.T) {
	m, _, dec := newTestApp(t, "abc123")

	m, cmd := update(t, m, keyRunes("t"))
	if !m.testing {
		t.Fatal("testing = false after t")
	}
	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}

	if m.testing {
		t.Error("testing = true after result")
	}
	if dec.calls != 1 {
		t.Errorf("decoder calls = %d, want 1", dec.calls)
	}
	n, ok := m.notices.current()
	if !ok || n.Title != session.TitleTestOK {
		t.Fatalf("notice = %+v, want %q", n, session.TitleTestOK)
	}
	if !strings.Contains(n.Message, "Chevrolet Silverado") {
		t.Errorf("notice message = %q", n.Message)
	}
	if m.Session.Status() != session.NotDecoded {
		t.Error("connection test changed the decode status")
	}
}

func TestAppModel_NoProvider(t *testing.T) {
	m := NewAppModel(context.Background(), Deps{Store: &config.MemoryCredentialStore{}, Decoder: &fakeDecoder{}})
	t.Cleanup(m.Session.Close)

	if m.Init() != nil {
		t.Error("Init() should not start a load without a provider")
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(m.View(), "no vehicle source configured") {
		t.Error("View() missing provider error")
	}
}

func TestAppModel_Quit(t *testing.T) {
	m, _, _ := newTestApp(t, "")

	_, cmd := update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
