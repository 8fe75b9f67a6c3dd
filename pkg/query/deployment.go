package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// BuildDeployments synthesizes download URLs bounded by deployment events
// instead of operator-supplied dates. Each event of each matching
// instrument contributes its own window: the event start as the explicit
// begin and, when the deployment has ended, the event stop as the explicit
// end. Open deployments run to each stream's recorded end. Events are
// filtered by status at the evaluation instant now.
func (b *Builder) BuildDeployments(ctx context.Context, pattern string, p Params, status uframe.DeploymentStatus, now time.Time) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	matches, err := b.resolve(ctx, pattern)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, refDes := range matches {
		rd, err := uframe.ParseRefDes(refDes)
		if err != nil {
			report.Skips = append(report.Skips, Skip{ReferenceDesignator: refDes, Reason: SkipGateway, Err: err})
			continue
		}

		events, err := b.gw.FetchInstrumentDeployments(ctx, refDes)
		if err != nil {
			b.logger.Warn("deployment lookup failed",
				zap.String("reference_designator", refDes),
				zap.Error(err))
			report.Skips = append(report.Skips, Skip{ReferenceDesignator: refDes, Reason: skipReason(err), Err: err})
			continue
		}
		events = uframe.FilterByStatus(events, status, now)
		if len(events) == 0 {
			b.logger.Info("no matching deployments",
				zap.String("reference_designator", refDes),
				zap.String("status", string(status)))
			continue
		}

		streams, err := b.gw.FetchInstrumentStreams(ctx, rd)
		if err != nil {
			b.logger.Warn("stream lookup failed",
				zap.String("reference_designator", refDes),
				zap.Error(err))
			report.Skips = append(report.Skips, Skip{ReferenceDesignator: refDes, Reason: skipReason(err), Err: err})
			continue
		}
		if len(streams) == 0 {
			b.logger.Info("no streams found", zap.String("reference_designator", refDes))
			continue
		}

		for _, ev := range events {
			ep := p
			ep.DeltaType, ep.DeltaValue = "", 0
			ep.Begin = ev.StartTs()
			ep.End = ev.StopTs()
			b.buildStreams(rd, streams, ep, report)
		}
	}
	return report, nil
}
