package vindecode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const secretKey = "k3y/with&odd=chars"

func TestClient_DecodeSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.EscapedPath() != "/api/vin/1HG%20CM" {
			t.Errorf("path = %s, want escaped VIN", r.URL.EscapedPath())
		}
		if got := r.URL.Query().Get("apiKey"); got != secretKey {
			t.Errorf("apiKey = %q, want %q", got, secretKey)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"vin":"1HG CM","make":"Honda","year":2003,"engine":{"cyl":4}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/api/")
	p, err := c.Decode(context.Background(), "1HG CM", secretKey)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}

	var names []string
	for _, f := range p.Fields() {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "vin,make,year,engine" {
		t.Errorf("field order = %v", names)
	}
	if got, _ := p.Label("make"); got != "Honda" {
		t.Errorf("Label(make) = %q", got)
	}
}

func TestClient_DecodeFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `{"error":"boom"}`,
			wantKind:   KindTransport,
			wantMsg:    "API request failed: Internal Server Error",
			wantStatus: 500,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			wantKind:   KindTransport,
			wantMsg:    "API request failed: Unauthorized",
			wantStatus: 401,
		},
		{
			name:     "not json",
			status:   http.StatusOK,
			body:     "<html>oops</html>",
			wantKind: KindParse,
			wantMsg:  "Failed to parse API response: ",
		},
		{
			name:     "array body",
			status:   http.StatusOK,
			body:     `[1,2]`,
			wantKind: KindParse,
			wantMsg:  "Failed to parse API response: expected a JSON object, got an array",
		},
		{
			name:     "empty body",
			status:   http.StatusOK,
			wantKind: KindParse,
			wantMsg:  "Failed to parse API response: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Decode(context.Background(), "VIN", secretKey)
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			de, ok := err.(*DecodeError)
			if !ok {
				t.Fatalf("error type = %T, want *DecodeError", err)
			}
			if de.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", de.Kind, tt.wantKind)
			}
			if !strings.HasPrefix(de.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want prefix %q", de.Message, tt.wantMsg)
			}
			if de.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", de.StatusCode, tt.wantStatus)
			}
			if strings.Contains(err.Error(), secretKey) || strings.Contains(err.Error(), "k3y") {
				t.Errorf("error leaks the credential: %v", err)
			}
			if n := atomic.LoadInt32(&calls); n != 1 {
				t.Errorf("server saw %d calls, want exactly 1", n)
			}
		})
	}
}

func TestClient_ConnectionFailureHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewClient(base).Decode(context.Background(), "VIN", secretKey)
	if !IsTransportError(err) {
		t.Fatalf("Decode() error = %v, want transport error", err)
	}
	if ShortMessage(err) != "API request failed: Unknown error" {
		t.Errorf("ShortMessage() = %q", ShortMessage(err))
	}
	if strings.Contains(err.Error(), "k3y") || strings.Contains(err.Error(), "apiKey") {
		t.Errorf("error leaks the request URL: %v", err)
	}
}

func TestNewClient_NoTimeout(t *testing.T) {
	c := NewClient("https://auto.dev/api/")
	if c.HTTPClient.Timeout != 0 {
		t.Errorf("Timeout = %v, want none", c.HTTPClient.Timeout)
	}
	if c.BaseURL != "https://auto.dev/api" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", c.BaseURL)
	}
}

func TestClient_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("http://127.0.0.1:1").Decode(ctx, "VIN", "k")
	if !IsTransportError(err) {
		t.Fatalf("Decode() error = %v, want transport error", err)
	}
	if got := TroubleshootingHint(err); got != "The request was cancelled." {
		t.Errorf("TroubleshootingHint() = %q", got)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		resp *http.Response
		want string
	}{
		{&http.Response{StatusCode: 503, Status: "503 Service Unavailable"}, "Service Unavailable"},
		{&http.Response{StatusCode: 418, Status: "418 I'm short and stout"}, "I'm short and stout"},
		{&http.Response{StatusCode: 404, Status: "404"}, "Not Found"},
		{&http.Response{StatusCode: 599, Status: ""}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := StatusText(tt.resp); got != tt.want {
			t.Errorf("StatusText(%v) = %q, want %q", tt.resp, got, tt.want)
		}
	}
	if NewTransportError(599, "", nil).Message != "API request failed: Unknown error" {
		t.Error("empty status text should fall back to Unknown error")
	}
}
