package m2m

import "net/http"

// BasicAuthTransport injects the m2m API credentials into outgoing
// requests. The gateway authenticates with the API username and token
// issued alongside a user account.
type BasicAuthTransport struct {
	Username string
	Token    string
	Base     http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Username != "" {
		clone.SetBasicAuth(t.Username, t.Token)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
