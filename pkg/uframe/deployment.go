package uframe

import (
	"encoding/json"
	"fmt"
	"time"
)

// DeploymentStatus selects deployment events by their activity at an
// evaluation instant.
type DeploymentStatus string

const (
	StatusActive   DeploymentStatus = "active"
	StatusInactive DeploymentStatus = "inactive"
	StatusAll      DeploymentStatus = "all"
)

// ParseDeploymentStatus validates a status argument.
func ParseDeploymentStatus(s string) (DeploymentStatus, error) {
	switch DeploymentStatus(s) {
	case StatusActive, StatusInactive, StatusAll:
		return DeploymentStatus(s), nil
	}
	return "", fmt.Errorf("invalid deployment status %q", s)
}

// DeploymentEvent is one deployment record from the asset management event
// store. Wire timestamps are epoch milliseconds; a missing eventStopTime
// marks a deployment still in the water. Fields outside the core set are
// preserved in AdditionalFields.
type DeploymentEvent struct {
	EventID             int64  `json:"eventId"`
	DeploymentNumber    int    `json:"deploymentNumber"`
	ReferenceDesignator RefDes `json:"referenceDesignator"`
	EventStartTime      *int64 `json:"eventStartTime"`
	EventStopTime       *int64 `json:"eventStopTime"`

	// AdditionalFields holds the remainder of the event document (asset
	// identifiers, location, cruise metadata and so on).
	AdditionalFields map[string]any `json:"-"`
}

var knownDeploymentFields = map[string]bool{
	"eventId": true, "deploymentNumber": true, "referenceDesignator": true,
	"eventStartTime": true, "eventStopTime": true,
}

// UnmarshalJSON implements custom unmarshaling to capture foreign members.
func (ev *DeploymentEvent) UnmarshalJSON(data []byte) error {
	type eventAlias DeploymentEvent
	var aux eventAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*ev = DeploymentEvent(aux)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ev.AdditionalFields = make(map[string]any)
	for key, val := range raw {
		if !knownDeploymentFields[key] {
			var decoded any
			if err := json.Unmarshal(val, &decoded); err != nil {
				continue
			}
			ev.AdditionalFields[key] = decoded
		}
	}

	return nil
}

// MarshalJSON implements custom marshaling to include foreign members.
func (ev DeploymentEvent) MarshalJSON() ([]byte, error) {
	type eventAlias DeploymentEvent
	aux := eventAlias(ev)

	data, err := json.Marshal(aux)
	if err != nil {
		return nil, err
	}

	if len(ev.AdditionalFields) == 0 {
		return data, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	for key, val := range ev.AdditionalFields {
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		obj[key] = encoded
	}

	return json.Marshal(obj)
}

// StartTime returns the deployment start in UTC. Records without a usable
// start time report false and are dropped at the ingestion boundary.
func (ev DeploymentEvent) StartTime() (time.Time, bool) {
	if ev.EventStartTime == nil {
		return time.Time{}, false
	}
	return FromEpochMillis(*ev.EventStartTime), true
}

// StopTime returns the deployment stop in UTC; open deployments have none.
func (ev DeploymentEvent) StopTime() (time.Time, bool) {
	if ev.EventStopTime == nil {
		return time.Time{}, false
	}
	return FromEpochMillis(*ev.EventStopTime), true
}

// StartTs renders the deployment start at second precision, empty when the
// record has no usable start time.
func (ev DeploymentEvent) StartTs() string {
	t, ok := ev.StartTime()
	if !ok {
		return ""
	}
	return FormatEventTime(t)
}

// StopTs renders the deployment stop at second precision, empty for open
// deployments.
func (ev DeploymentEvent) StopTs() string {
	t, ok := ev.StopTime()
	if !ok {
		return ""
	}
	return FormatEventTime(t)
}

// ActiveAt reports whether the deployment is active at the given instant:
// no recorded stop time, or a stop time at or after it.
func (ev DeploymentEvent) ActiveAt(now time.Time) bool {
	stop, ok := ev.StopTime()
	if !ok {
		return true
	}
	return !stop.Before(now)
}

// OverlapsWindow reports whether the deployment interval intersects the
// stream availability window w. Boundary contact counts as overlap.
func (ev DeploymentEvent) OverlapsWindow(w TimeWindow) bool {
	start, ok := ev.StartTime()
	if !ok {
		return false
	}
	if w.End.Before(start) {
		return false
	}
	stop, ok := ev.StopTime()
	if !ok {
		return true
	}
	return !w.Start.After(stop)
}

// FilterByStatus keeps the events matching status at the evaluation
// instant. StatusAll and an empty status keep everything.
func FilterByStatus(events []DeploymentEvent, status DeploymentStatus, now time.Time) []DeploymentEvent {
	if status == StatusAll || status == "" {
		return events
	}
	var matched []DeploymentEvent
	for _, ev := range events {
		active := ev.ActiveAt(now)
		if (status == StatusActive && active) || (status == StatusInactive && !active) {
			matched = append(matched, ev)
		}
	}
	return matched
}
