package uframe

import "time"

// TimeWindow is a request interval over which data is wanted. A valid
// window starts strictly before it ends.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether Start is strictly before End.
func (w TimeWindow) Valid() bool {
	return w.Start.Before(w.End)
}
