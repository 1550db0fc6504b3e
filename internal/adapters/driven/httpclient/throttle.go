package httpclient

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle is a RoundTripper that waits on a token bucket before each
// request.
type Throttle struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewThrottle wraps next with a limiter of rps requests per second.
// A burst below one is raised to one.
func NewThrottle(next http.RoundTripper, rps float64, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}
	return &Throttle{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// RoundTrip implements http.RoundTripper.
func (t *Throttle) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
