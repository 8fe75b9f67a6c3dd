package metrics

import "time"

// Recorder receives instrumentation events from the gateway client and the
// request sender. Implementations must be safe for concurrent use.
type Recorder interface {
	// ObserveGatewayRequest records one gateway round trip. A status of 0
	// means the request never produced a response.
	ObserveGatewayRequest(endpoint string, status int, elapsed time.Duration)
	// ObserveDispatch records one synthesized-request dispatch.
	ObserveDispatch(status int, elapsed time.Duration)
}

// Nop returns a Recorder that discards every observation.
func Nop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) ObserveGatewayRequest(string, int, time.Duration) {}
func (nopRecorder) ObserveDispatch(int, time.Duration)               {}
