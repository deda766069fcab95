package vindecode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/transport"
)

// SampleVIN is a known-good VIN used to test API connectivity.
const SampleVIN = "3GCUDHEL3NG668790"

// Client represents an HTTP client for the VIN decode API
type Client struct {
	// BaseURL is the API root (e.g., "https://auto.dev/api")
	BaseURL string

	// HTTPClient is the underlying HTTP client. It must not retry.
	HTTPClient *http.Client
}

// NewClient creates a decode client for baseURL with no request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: transport.NewClient(nil, 0),
	}
}

// DecodeURL builds the request URL for vin.
func (c *Client) DecodeURL(vin, apiKey string) string {
	return fmt.Sprintf("%s/vin/%s?apiKey=%s", c.BaseURL, url.PathEscape(vin), url.QueryEscape(apiKey))
}

// Decode looks up vin with apiKey. It issues exactly one request and does
// not validate its inputs.
func (c *Client) Decode(ctx context.Context, vin, apiKey string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DecodeURL(vin, apiKey), nil)
	if err != nil {
		return nil, NewTransportError(0, "", fmt.Errorf("invalid decode request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		logging.Warn("Decode request rejected",
			zap.String("vin", vin),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, NewTransportError(resp.StatusCode, StatusText(resp), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(resp.StatusCode, "", err)
	}

	payload, err := ParsePayload(body)
	if err != nil {
		logging.Warn("Decode response not parseable",
			zap.String("vin", vin),
			zap.Error(err),
		)
		return nil, NewParseError(err)
	}

	logging.Debug("Decode succeeded",
		zap.String("vin", vin),
		zap.Int("fields", payload.Len()),
	)
	return payload, nil
}

// StatusText returns the reason phrase of resp, falling back to the
// standard text for its code.
func StatusText(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	text := strings.TrimSpace(resp.Status)
	if code := fmt.Sprintf("%d", resp.StatusCode); strings.HasPrefix(text, code) {
		text = strings.TrimSpace(strings.TrimPrefix(text, code))
	}
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
