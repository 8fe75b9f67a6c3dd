package query

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// Gateway is the metadata-fetch capability the engine builds on. It
// reports failure distinctly from an empty result; *m2m.Client satisfies
// it.
type Gateway interface {
	Catalog(ctx context.Context) (uframe.Catalog, error)
	FetchInstrumentStreams(ctx context.Context, rd uframe.RefDes) ([]uframe.Stream, error)
	FetchInstrumentDeployments(ctx context.Context, refDes string) ([]uframe.DeploymentEvent, error)
	BuildURL(port int, endpoint string) string
}

// Skip reasons attached to Report entries.
const (
	SkipGateway          = "gateway_error"
	SkipUnparseableBound = "unparseable_bound"
	SkipInvalidRange     = "invalid_range"
)

// Skip records one instrument or (instrument, stream) pair that produced
// no URL and why.
type Skip struct {
	ReferenceDesignator string `json:"reference_designator"`
	Stream              string `json:"stream,omitempty"`
	Reason              string `json:"reason"`
	Err                 error  `json:"-"`
}

// Report is the outcome of one synthesis run: the URLs in catalog order
// and the pairs that were skipped. The worst outcome of a run is an empty
// URL list.
type Report struct {
	URLs  []string `json:"urls"`
	Skips []Skip   `json:"skips,omitempty"`
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, uframe.ErrUnparseableBound):
		return SkipUnparseableBound
	case errors.Is(err, ErrInvalidRange):
		return SkipInvalidRange
	default:
		return SkipGateway
	}
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency bounds the parallel per-instrument lookups. The default
// of 1 keeps lookups sequential.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// Builder synthesizes download request URLs for every (instrument,
// stream) pair matching a reference-designator pattern.
type Builder struct {
	gw          Gateway
	logger      *zap.Logger
	concurrency int
}

// NewBuilder wires a Builder to a gateway.
func NewBuilder(gw Gateway, opts ...BuilderOption) *Builder {
	b := &Builder{
		gw:          gw,
		logger:      zap.NewNop(),
		concurrency: 1,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// streamLookup is one per-instrument fan-out slot. Slots keep catalog
// order regardless of completion order.
type streamLookup struct {
	refDes  string
	rd      uframe.RefDes
	streams []uframe.Stream
	err     error
}

// Build resolves pattern against the catalog and synthesizes one URL per
// surviving (instrument, stream) pair. Per-pair failures become Report
// skips; a gateway failure on one instrument skips that instrument and
// the run continues with the rest.
func (b *Builder) Build(ctx context.Context, pattern string, p Params) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	matches, err := b.resolve(ctx, pattern)
	if err != nil {
		return nil, err
	}

	lookups, err := b.fetchStreams(ctx, matches)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, lu := range lookups {
		if lu.err != nil {
			b.logger.Warn("stream lookup failed",
				zap.String("reference_designator", lu.refDes),
				zap.Error(lu.err))
			report.Skips = append(report.Skips, Skip{
				ReferenceDesignator: lu.refDes,
				Reason:              skipReason(lu.err),
				Err:                 lu.err,
			})
			continue
		}
		if len(lu.streams) == 0 {
			b.logger.Info("no streams found", zap.String("reference_designator", lu.refDes))
			continue
		}
		b.buildStreams(lu.rd, lu.streams, p, report)
	}
	return report, nil
}

func (b *Builder) resolve(ctx context.Context, pattern string) ([]string, error) {
	catalog, err := b.gw.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	matches := Resolve(catalog, pattern)
	b.logger.Debug("resolved instruments",
		zap.String("pattern", pattern),
		zap.Int("count", len(matches)))
	return matches, nil
}

// fetchStreams runs the per-instrument lookups, bounded and index-slotted.
// Lookup failures are recovered into their slots, never aborting the
// group.
func (b *Builder) fetchStreams(ctx context.Context, matches []string) ([]streamLookup, error) {
	lookups := make([]streamLookup, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, refDes := range matches {
		i, refDes := i, refDes
		g.Go(func() error {
			lookups[i].refDes = refDes
			rd, err := uframe.ParseRefDes(refDes)
			if err != nil {
				lookups[i].err = err
				return nil
			}
			lookups[i].rd = rd
			lookups[i].streams, lookups[i].err = b.gw.FetchInstrumentStreams(gctx, rd)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lookups, nil
}

// buildStreams applies the stream filters and synthesizes URLs for one
// instrument's surviving streams.
func (b *Builder) buildStreams(rd uframe.RefDes, streams []uframe.Stream, p Params, report *Report) {
	refDes := rd.String()
	for _, s := range uframe.FilterStreams(streams, p.Stream, p.Telemetry) {
		w, err := reconcileWindow(b.logger, refDes, s, p)
		if err != nil {
			b.logger.Warn("skipping stream",
				zap.String("reference_designator", refDes),
				zap.String("stream", s.Name),
				zap.Error(err))
			report.Skips = append(report.Skips, Skip{
				ReferenceDesignator: refDes,
				Stream:              s.Name,
				Reason:              skipReason(err),
				Err:                 err,
			})
			continue
		}
		report.URLs = append(report.URLs, b.gw.BuildURL(sensorPort, queryEndpoint(rd, s, w, p)))
	}
}
