package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(window time.Duration, maxRequests int) (*Limiter, *time.Time) {
	l := New(window, maxRequests)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowBurstThenReject(t *testing.T) {
	l, _ := newTestLimiter(time.Hour, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"), "other clients keep their own bucket")
}

func TestAllowRefillsOverWindow(t *testing.T) {
	l, now := newTestLimiter(time.Minute, 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	*now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestSweep(t *testing.T) {
	l, now := newTestLimiter(time.Minute, 5)

	l.Allow("old")
	*now = now.Add(45 * time.Second)
	l.Allow("fresh")
	*now = now.Add(30 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(time.Hour, 1)
	rejected := 0
	l.OnReject = func(string) { rejected++ }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/receiptsplit.v1.ReceiptService/Distribute", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"resource_exhausted"`)
	assert.Equal(t, 1, rejected)
}
