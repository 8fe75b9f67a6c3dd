// Package sender dispatches batches of synthesized data-request URLs to
// the UFrame gateway. Each dispatched URL registers a download job server
// side; the sender records the per-request outcome without letting one
// failure abort the batch.
package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kerfoot/uframe-m2m/pkg/m2m"
	"github.com/kerfoot/uframe-m2m/pkg/metrics"
)

// Result is the outcome of one dispatched request. Response carries the
// decoded JSON acknowledgment when the gateway answers with one, the raw
// body text otherwise, and nil when the request never completed.
type Result struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Response   any    `json:"response"`
	Err        string `json:"error,omitempty"`
}

// Option configures the Sender.
type Option func(*Sender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sender) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) { s.httpClient.Timeout = d }
}

// WithCredentials installs the m2m API basic-auth credentials on every
// request.
func WithCredentials(username, token string) Option {
	return func(s *Sender) {
		s.httpClient.Transport = &m2m.BasicAuthTransport{
			Username: username,
			Token:    token,
			Base:     s.httpClient.Transport,
		}
	}
}

// WithWorkers bounds the number of in-flight requests. The default of 1
// dispatches sequentially.
func WithWorkers(n int) Option {
	return func(s *Sender) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRateLimit caps dispatches at rps per second across all workers.
func WithRateLimit(rps int) Option {
	return func(s *Sender) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to every dispatch.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Sender) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Sender dispatches request URLs through a bounded worker pool.
type Sender struct {
	httpClient *http.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	recorder   metrics.Recorder
	workers    int
}

// New builds a Sender. Without options it dispatches sequentially with a
// 120 second timeout and no authentication.
func New(opts ...Option) *Sender {
	s := &Sender{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     zap.NewNop(),
		recorder:   metrics.Nop(),
		workers:    1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Send dispatches a GET for every URL and returns one Result per input,
// in input order. Escaped URLs are unescaped before dispatch. Request
// failures and non-2xx answers land in their Result, never aborting the
// batch.
func (s *Sender) Send(ctx context.Context, urls []string) []Result {
	logger := s.logger.With(zap.String("batch_id", uuid.NewString()))
	logger.Info("dispatching batch", zap.Int("requests", len(urls)))

	results := make([]Result, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, raw := range urls {
		i, raw := i, raw
		g.Go(func() error {
			results[i] = s.dispatch(gctx, logger, raw)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Sender) dispatch(ctx context.Context, logger *zap.Logger, raw string) Result {
	res := Result{URL: raw}

	target, err := url.PathUnescape(raw)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			res.Err = err.Error()
			return res
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	started := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.recorder.ObserveDispatch(0, time.Since(started))
		logger.Warn("request failed", zap.String("url", target), zap.Error(err))
		res.Err = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(started)
	s.recorder.ObserveDispatch(resp.StatusCode, elapsed)
	logger.Debug("request complete",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))
	if err != nil {
		res.Err = err.Error()
		return res
	}

	res.Response = decodeBody(body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("request rejected",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode))
	}
	return res
}

// decodeBody prefers the JSON document the gateway normally answers with
// and falls back to the raw text.
func decodeBody(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
		return doc
	}
	return trimmed
}
