// Package status builds deployment status reports: for every matched
// instrument, each (deployment, stream) pairing annotated with whether the
// deployment is active and whether the stream holds particles recorded
// inside the deployment window.
package status

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kerfoot/uframe-m2m/pkg/query"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// Row is one (instrument, deployment, stream) line of the report.
type Row struct {
	ReferenceDesignator    string  `json:"reference_designator"`
	Stream                 string  `json:"stream"`
	Telemetry              string  `json:"telemetry"`
	DeploymentNumber       int     `json:"deployment_number"`
	Active                 bool    `json:"active"`
	DeploymentHasParticles bool    `json:"deployment_has_particles"`
	DeploymentStartTime    string  `json:"deployment_start_time"`
	DeploymentEndTime      *string `json:"deployment_end_time"`
	StreamStartTime        string  `json:"stream_start_time"`
	StreamEndTime          string  `json:"stream_end_time"`
	StreamParticleCount    int64   `json:"stream_particle_count"`
}

// Headers returns the CSV column names in report order.
func Headers() []string {
	return []string{
		"reference_designator",
		"stream",
		"telemetry",
		"deployment_number",
		"active",
		"deployment_has_particles",
		"deployment_start_time",
		"deployment_end_time",
		"stream_start_time",
		"stream_end_time",
		"stream_particle_count",
	}
}

// Record renders the row as CSV fields in header order. An open
// deployment leaves the end time empty.
func (r Row) Record() []string {
	end := ""
	if r.DeploymentEndTime != nil {
		end = *r.DeploymentEndTime
	}
	return []string{
		r.ReferenceDesignator,
		r.Stream,
		r.Telemetry,
		strconv.Itoa(r.DeploymentNumber),
		strconv.FormatBool(r.Active),
		strconv.FormatBool(r.DeploymentHasParticles),
		r.DeploymentStartTime,
		end,
		r.StreamStartTime,
		r.StreamEndTime,
		strconv.FormatInt(r.StreamParticleCount, 10),
	}
}

// Filter narrows the report.
type Filter struct {
	Status    uframe.DeploymentStatus
	Stream    string
	Telemetry string
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) ReporterOption {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency bounds the parallel per-instrument lookups.
func WithConcurrency(n int) ReporterOption {
	return func(r *Reporter) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithClock overrides the evaluation instant used to decide deployment
// activeness. Tests pin it.
func WithClock(now func() time.Time) ReporterOption {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// Reporter assembles deployment status reports from a gateway.
type Reporter struct {
	gw          query.Gateway
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// NewReporter wires a Reporter to a gateway.
func NewReporter(gw query.Gateway, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		gw:          gw,
		logger:      zap.NewNop(),
		concurrency: 1,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// instrumentRecord is one per-instrument fan-out slot.
type instrumentRecord struct {
	refDes  string
	rd      uframe.RefDes
	streams []uframe.Stream
	events  []uframe.DeploymentEvent
	err     error
}

// Report resolves pattern against the catalog and returns one row per
// (deployment, stream) pairing of every matched instrument, in catalog
// order. A gateway failure on one instrument drops that instrument with a
// warning and the report continues.
func (r *Reporter) Report(ctx context.Context, pattern string, f Filter) ([]Row, error) {
	catalog, err := r.gw.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	matches := query.Resolve(catalog, pattern)

	records, err := r.fetch(ctx, matches)
	if err != nil {
		return nil, err
	}

	now := r.now()
	var rows []Row
	for _, rec := range records {
		if rec.err != nil {
			r.logger.Warn("instrument lookup failed",
				zap.String("reference_designator", rec.refDes),
				zap.Error(rec.err))
			continue
		}
		rows = append(rows, r.assemble(rec, f, now)...)
	}
	return rows, nil
}

// fetch gathers streams and deployment events per instrument, bounded and
// index-slotted so rows keep catalog order.
func (r *Reporter) fetch(ctx context.Context, matches []string) ([]instrumentRecord, error) {
	records := make([]instrumentRecord, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, refDes := range matches {
		i, refDes := i, refDes
		g.Go(func() error {
			records[i].refDes = refDes
			rd, err := uframe.ParseRefDes(refDes)
			if err != nil {
				records[i].err = err
				return nil
			}
			records[i].rd = rd
			if records[i].streams, err = r.gw.FetchInstrumentStreams(gctx, rd); err != nil {
				records[i].err = err
				return nil
			}
			records[i].events, records[i].err = r.gw.FetchInstrumentDeployments(gctx, refDes)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// assemble crosses one instrument's deployments with its streams.
func (r *Reporter) assemble(rec instrumentRecord, f Filter, now time.Time) []Row {
	events := uframe.FilterByStatus(rec.events, f.Status, now)
	streams := uframe.FilterStreams(rec.streams, f.Stream, f.Telemetry)
	if len(events) == 0 || len(streams) == 0 {
		r.logger.Info("nothing to report",
			zap.String("reference_designator", rec.refDes),
			zap.Int("deployments", len(events)),
			zap.Int("streams", len(streams)))
		return nil
	}

	var rows []Row
	for _, ev := range events {
		var end *string
		if ts := ev.StopTs(); ts != "" {
			end = &ts
		}
		for _, s := range streams {
			w, err := s.Window()
			if err != nil {
				r.logger.Warn("skipping stream",
					zap.String("reference_designator", rec.refDes),
					zap.String("stream", s.Name),
					zap.Error(err))
				continue
			}
			rows = append(rows, Row{
				ReferenceDesignator:    rec.refDes,
				Stream:                 s.Name,
				Telemetry:              s.Method,
				DeploymentNumber:       ev.DeploymentNumber,
				Active:                 ev.ActiveAt(now),
				DeploymentHasParticles: ev.OverlapsWindow(w),
				DeploymentStartTime:    ev.StartTs(),
				DeploymentEndTime:      end,
				StreamStartTime:        s.BeginTime,
				StreamEndTime:          s.EndTime,
				StreamParticleCount:    s.Count,
			})
		}
	}
	return rows
}
