package query

import (
	"errors"
	"fmt"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// Response formats accepted by the asynchronous download service.
const (
	FormatNetCDF = "netcdf"
	FormatJSON   = "json"
)

// Decimation limits accepted by the download service. NoLimit routes the
// request to the full asynchronous pipeline.
const (
	NoLimit  = -1
	MaxLimit = 10000
)

// DeltaTypes are the relative time-window units accepted by Params.
var DeltaTypes = []string{"years", "months", "weeks", "days", "hours", "minutes", "seconds"}

var (
	// ErrInvalidDeltaType rejects a request whose relative-window unit is
	// not one of DeltaTypes. The whole request fails before any gateway
	// traffic.
	ErrInvalidDeltaType = errors.New("query: invalid time delta type")
	// ErrInvalidRange marks a reconciled window whose start does not
	// precede its end. The stream carrying it is skipped.
	ErrInvalidRange = errors.New("query: invalid time range")
)

// Params carries the operator's intent for one synthesis run. Explicit
// Begin/End bounds and the relative delta compete: a populated delta wins
// over both, even a partial pair of explicit bounds.
type Params struct {
	User   string
	Email  string
	Format string
	Limit  int

	// Stream restricts synthesis to an exact stream name; Telemetry to
	// methods containing the given substring.
	Stream    string
	Telemetry string

	// Begin and End are explicit ISO-8601 bounds. An empty bound falls
	// back to the stream's recorded availability.
	Begin string
	End   string

	// DeltaType and DeltaValue describe a window reaching back from each
	// stream's recorded end. A zero value leaves delta mode inactive.
	DeltaType  string
	DeltaValue int

	TimeCheck          bool
	ExecDPA            bool
	IncludeProvenance  bool
	IncludeAnnotations bool // accepted for request compatibility, never rendered
}

// DefaultParams returns the download service defaults for user.
func DefaultParams(user string) Params {
	return Params{
		User:              user,
		Format:            FormatNetCDF,
		Limit:             NoLimit,
		TimeCheck:         true,
		ExecDPA:           true,
		IncludeProvenance: true,
	}
}

// Validate vets the parameter combination before any gateway traffic.
func (p Params) Validate() error {
	if p.User == "" {
		return errors.New("query: user is required")
	}

	switch p.Format {
	case FormatNetCDF, FormatJSON:
	default:
		return fmt.Errorf("query: invalid response format %q", p.Format)
	}

	if p.Limit != NoLimit && (p.Limit < 1 || p.Limit > MaxLimit) {
		return fmt.Errorf("query: limit must be %d or 1..%d, got %d", NoLimit, MaxLimit, p.Limit)
	}

	if p.DeltaType != "" && !validDeltaType(p.DeltaType) {
		return fmt.Errorf("%w: %q", ErrInvalidDeltaType, p.DeltaType)
	}

	if p.Begin != "" {
		if _, err := uframe.ParseTimestamp(p.Begin); err != nil {
			return fmt.Errorf("query: invalid begin date: %w", err)
		}
	}
	if p.End != "" {
		if _, err := uframe.ParseTimestamp(p.End); err != nil {
			return fmt.Errorf("query: invalid end date: %w", err)
		}
	}

	return nil
}

// deltaActive reports whether the relative window dominates the explicit
// bounds.
func (p Params) deltaActive() bool {
	return p.DeltaType != "" && p.DeltaValue != 0
}

func validDeltaType(deltaType string) bool {
	for _, dt := range DeltaTypes {
		if dt == deltaType {
			return true
		}
	}
	return false
}
