package m2m

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kerfoot/uframe-m2m/pkg/metrics"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// Ports assigned to the UFrame services reachable through the m2m gateway.
const (
	SensorPort     = 12576
	DeploymentPort = 12587
)

// Client talks to a UFrame instance through its machine-to-machine
// gateway. Requests normally go through {base}/api/m2m/{port}/{endpoint};
// direct mode addresses the service ports themselves.
type Client struct {
	baseURL    string
	m2mBaseURL string
	direct     bool
	httpClient *http.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	recorder   metrics.Recorder

	catalogOnce sync.Once
	catalog     uframe.Catalog
	catalogErr  error
}

// NewClient validates the base URL and applies options.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     zap.NewNop(),
		recorder:   metrics.Nop(),
	}
	c.m2mBaseURL = c.baseURL + "/api/m2m"

	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the validated base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// BuildURL joins a service port and endpoint into a request URL, honoring
// direct mode.
func (c *Client) BuildURL(port int, endpoint string) string {
	endpoint = strings.TrimLeft(endpoint, "/")
	if c.direct {
		return fmt.Sprintf("%s:%d/%s", c.baseURL, port, endpoint)
	}
	return fmt.Sprintf("%s/%d/%s", c.m2mBaseURL, port, endpoint)
}

// doRequest funnels every outbound call: rate pacing, the HTTP round trip,
// status mapping and instrumentation all happen here.
func (c *Client) doRequest(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("m2m: creating request for %s: %w", rawURL, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recorder.ObserveGatewayRequest(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("m2m: %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.recorder.ObserveGatewayRequest(endpoint, resp.StatusCode, elapsed)
	c.logger.Debug("gateway request",
		zap.String("endpoint", endpoint),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode), URL: rawURL}
	}
	if readErr != nil {
		return nil, fmt.Errorf("m2m: reading response from %s: %w", rawURL, readErr)
	}
	return body, nil
}

// getJSON performs a request and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, v any) error {
	body, err := c.doRequest(ctx, endpoint, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("m2m: decoding response from %s: %w", rawURL, err)
	}
	return nil
}
