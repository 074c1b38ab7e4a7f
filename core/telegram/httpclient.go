package telegram

import (
	"net"
	"net/http"
	"time"

	coreconfig "github.com/m3rciful/kuafsurvey/core/config"
	"github.com/m3rciful/kuafsurvey/core/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	tlsHandshake      = 5 * time.Second
	idleConnTimeout   = 30 * time.Second
	keepAliveInterval = 30 * time.Second

	// responseMargin is the time Telegram gets to answer once the long-poll
	// wait is over; uploads of exports are bounded by twice this on top.
	responseMargin = 10 * time.Second

	retryAttempts = 3
	retryBackoff  = 2 * time.Second
)

// pollTimeout is the server-side wait of getUpdates.
func pollTimeout(cfg *coreconfig.Config) time.Duration {
	sec := defaultLongPollSeconds
	if cfg != nil && cfg.Telegram.LongPollTimeoutSeconds > 0 {
		sec = cfg.Telegram.LongPollTimeoutSeconds
	}
	return time.Duration(sec) * time.Second
}

// BuildHTTPClient returns the client for Telegram API calls. getUpdates keeps
// the response open for up to poll, so both the header wait and the overall
// request deadline sit above it.
func BuildHTTPClient(poll time.Duration) *http.Client {
	if poll < 0 {
		poll = 0
	}
	headerWait := poll + responseMargin

	return &http.Client{
		Timeout: headerWait + 2*responseMargin,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAliveInterval}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       idleConnTimeout,
				TLSHandshakeTimeout:   tlsHandshake,
				ResponseHeaderTimeout: headerWait,
				ExpectContinueTimeout: time.Second,
			},
			attempts: retryAttempts + 1,
			backoff:  retryBackoff,
		},
	}
}

// retryTransport repeats requests that failed before a response arrived.
// Bodies are replayed through GetBody; a request without one is tried once.
type retryTransport struct {
	base     http.RoundTripper
	attempts int
	backoff  time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.attempts
	if attempts < 1 || (req.Body != nil && req.GetBody == nil) {
		attempts = 1
	}

	var err error
	for attempt := 1; ; attempt++ {
		next := req
		if attempt > 1 {
			next = req.Clone(req.Context())
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, bodyErr
				}
				next.Body = body
			}
		}

		var resp *http.Response
		resp, err = base.RoundTrip(next)
		if err == nil {
			return resp, nil
		}
		if attempt >= attempts || !netutil.ShouldRetry(err) {
			return nil, err
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
}
