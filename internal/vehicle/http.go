package vehicle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/transport"
)

// DefaultListTimeout bounds a single vehicle list load, retries included.
const DefaultListTimeout = 15 * time.Second

// HTTPProvider loads the vehicle tree from a remote endpoint.
type HTTPProvider struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPProvider returns a provider for url using a retrying client.
func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{
		URL:        url,
		HTTPClient: transport.NewRetryingClient(nil, DefaultListTimeout),
	}
}

// Load fetches and flattens the tree.
func (p *HTTPProvider) Load(ctx context.Context) ([]Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle list: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vehicle list request failed: %s", resp.Status)
	}

	vehicles, err := ParseTree(body)
	if err != nil {
		return nil, err
	}

	logging.Info("Vehicle list loaded",
		zap.String("source", "http"),
		zap.Int("count", len(vehicles)),
	)
	return vehicles, nil
}
