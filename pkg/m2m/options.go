package m2m

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kerfoot/uframe-m2m/pkg/metrics"
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCredentials installs the m2m API basic-auth credentials on every
// request.
func WithCredentials(username, token string) Option {
	return func(c *Client) {
		c.httpClient.Transport = &BasicAuthTransport{
			Username: username,
			Token:    token,
			Base:     c.httpClient.Transport,
		}
	}
}

// WithDirect addresses the UFrame service ports directly instead of going
// through the /api/m2m gateway.
func WithDirect() Option {
	return func(c *Client) { c.direct = true }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps outbound requests at rps per second. The gateway
// throttles aggressive clients server-side; pacing here keeps batch runs
// inside its budget.
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMetrics attaches a metrics recorder to every gateway round trip.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}
