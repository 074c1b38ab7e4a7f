package telegram

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/kuafsurvey/core/config"
)

func transportOf(t *testing.T, c *http.Client) *http.Transport {
	t.Helper()
	rt, ok := c.Transport.(*retryTransport)
	require.True(t, ok, "unexpected transport %T", c.Transport)
	tr, ok := rt.base.(*http.Transport)
	require.True(t, ok, "unexpected base transport %T", rt.base)
	return tr
}

func TestBuildHTTPClientOutlastsLongPoll(t *testing.T) {
	for _, poll := range []time.Duration{0, 10 * time.Second, 50 * time.Second} {
		c := BuildHTTPClient(poll)
		tr := transportOf(t, c)
		assert.Greater(t, tr.ResponseHeaderTimeout, poll, "header wait for poll %s", poll)
		assert.Greater(t, c.Timeout, tr.ResponseHeaderTimeout, "client deadline for poll %s", poll)
	}
}

func TestPollTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(defaultLongPollSeconds)*time.Second, pollTimeout(nil))

	cfg := &coreconfig.Config{}
	assert.Equal(t, time.Duration(defaultLongPollSeconds)*time.Second, pollTimeout(cfg))

	cfg.Telegram.LongPollTimeoutSeconds = 25
	assert.Equal(t, 25*time.Second, pollTimeout(cfg))
}

// A getUpdates call answered after a second of long polling must succeed
// on the first attempt.
func TestBuildHTTPClientWaitsForSlowPoll(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(time.Second)
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
	}))
	defer srv.Close()

	c := BuildHTTPClient(time.Second)
	resp, err := c.Post(srv.URL+"/getUpdates", "application/json", strings.NewReader(`{"timeout":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

type failingTransport struct {
	errs  []error
	calls int
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryTransportRetriesTransientErrors(t *testing.T) {
	base := &failingTransport{errs: []error{timeoutErr{}, timeoutErr{}}}
	rt := &retryTransport{base: base, attempts: 3}

	req, err := http.NewRequest(http.MethodPost, "http://telegram.test/sendMessage", strings.NewReader("text=hi"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, base.calls)
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &failingTransport{errs: []error{timeoutErr{}, timeoutErr{}, timeoutErr{}}}
	rt := &retryTransport{base: base, attempts: 2}

	req, err := http.NewRequest(http.MethodGet, "http://telegram.test/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 2, base.calls)
}
