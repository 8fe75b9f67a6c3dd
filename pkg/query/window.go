package query

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// deltaStart computes the lower bound of a relative window ending at end.
// Calendar units go through AddDate so month lengths and leap days behave;
// clock units subtract an absolute duration.
func deltaStart(end time.Time, deltaType string, value int) time.Time {
	switch deltaType {
	case "years":
		return end.AddDate(-value, 0, 0)
	case "months":
		return end.AddDate(0, -value, 0)
	case "weeks":
		return end.AddDate(0, 0, -7*value)
	case "days":
		return end.AddDate(0, 0, -value)
	case "hours":
		return end.Add(-time.Duration(value) * time.Hour)
	case "minutes":
		return end.Add(-time.Duration(value) * time.Minute)
	default: // seconds, the unit set is vetted by Params.Validate
		return end.Add(-time.Duration(value) * time.Second)
	}
}

// reconcileWindow resolves the request window for one stream. The stream's
// recorded bounds are the fallback, explicit bounds override them, and a
// populated delta overrides both by anchoring to the stream's recorded
// end. With timeCheck the window is clamped to the recorded bounds. The
// resolved window must start before it ends regardless of timeCheck.
func reconcileWindow(logger *zap.Logger, refDes string, s uframe.Stream, p Params) (uframe.TimeWindow, error) {
	avail, err := s.Window()
	if err != nil {
		return uframe.TimeWindow{}, err
	}

	var w uframe.TimeWindow
	if p.deltaActive() {
		w.End = avail.End
		w.Start = deltaStart(w.End, p.DeltaType, p.DeltaValue)
	} else {
		w.Start = avail.Start
		if p.Begin != "" {
			// vetted by Params.Validate
			w.Start, _ = uframe.ParseTimestamp(p.Begin)
		}
		w.End = avail.End
		if p.End != "" {
			w.End, _ = uframe.ParseTimestamp(p.End)
		}
	}

	if p.TimeCheck {
		if w.End.After(avail.End) {
			logger.Warn("requested end time exceeds stream endTime, clamping",
				zap.String("reference_designator", refDes),
				zap.String("stream", s.Name),
				zap.Time("requested", w.End),
				zap.Time("stream_end", avail.End))
			w.End = avail.End
		}
		if w.Start.Before(avail.Start) {
			logger.Warn("requested start time is earlier than stream beginTime, clamping",
				zap.String("reference_designator", refDes),
				zap.String("stream", s.Name),
				zap.Time("requested", w.Start),
				zap.Time("stream_begin", avail.Start))
			w.Start = avail.Start
		}
	}

	if !w.Valid() {
		return uframe.TimeWindow{}, fmt.Errorf("%w: %s >= %s", ErrInvalidRange,
			uframe.FormatQueryTime(w.Start), uframe.FormatQueryTime(w.End))
	}
	return w, nil
}
