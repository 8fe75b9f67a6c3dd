package uframe

import (
	"fmt"
	"strings"
)

// Stream is one (stream, telemetry method) data product of an instrument,
// with its recorded availability bounds and particle count. The bounds are
// kept in wire form and parsed on demand.
type Stream struct {
	Name      string `json:"stream"`
	Method    string `json:"method"`
	Count     int64  `json:"count"`
	BeginTime string `json:"beginTime"`
	EndTime   string `json:"endTime"`
}

// Window parses the recorded availability bounds. A stream whose bounds do
// not parse cannot take part in request synthesis.
func (s Stream) Window() (TimeWindow, error) {
	begin, err := ParseTimestamp(s.BeginTime)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: %s/%s beginTime %q", ErrUnparseableBound, s.Name, s.Method, s.BeginTime)
	}
	end, err := ParseTimestamp(s.EndTime)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: %s/%s endTime %q", ErrUnparseableBound, s.Name, s.Method, s.EndTime)
	}
	return TimeWindow{Start: begin, End: end}, nil
}

// FilterStreams applies the optional stream filters: the name must match
// exactly, the telemetry method as a substring.
func FilterStreams(streams []Stream, name, telemetry string) []Stream {
	var matched []Stream
	for _, s := range streams {
		if name != "" && s.Name != name {
			continue
		}
		if telemetry != "" && !strings.Contains(s.Method, telemetry) {
			continue
		}
		matched = append(matched, s)
	}
	return matched
}
