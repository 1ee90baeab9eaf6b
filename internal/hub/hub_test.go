package hub

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// streamRecorder is a ResponseWriter that can be read while ServeHTTP is
// still writing to it
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	code   int
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestHubBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(nil)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		h.Run(hubCtx)
		close(hubDone)
	}()

	reqCtx, disconnect := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(reqCtx)
	rec := newStreamRecorder()
	served := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(served)
	}()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	h.Broadcast(map[string]string{"type": "wordlist_generated"})
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(rec.String()), []byte(`data: {"type":"wordlist_generated"}`))
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, rec.String(), ": connected")

	disconnect()
	<-served
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	stopHub()
	<-hubDone
}

func TestHubShutdownDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(nil)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		h.Run(hubCtx)
		close(hubDone)
	}()

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := newStreamRecorder()
	served := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(served)
	}()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	stopHub()
	<-hubDone

	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("ServeHTTP did not return after hub shutdown")
	}

	// Late clients are refused once the hub is gone
	late := newStreamRecorder()
	h.ServeHTTP(late, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, late.code)
}

func TestHubKeepAlive(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(nil).WithKeepAlive(10 * time.Millisecond)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		h.Run(hubCtx)
		close(hubDone)
	}()

	reqCtx, disconnect := context.WithCancel(context.Background())
	rec := newStreamRecorder()
	served := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(reqCtx))
		close(served)
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(rec.String()), []byte(": keepalive"))
	}, time.Second, 5*time.Millisecond)

	disconnect()
	<-served
	stopHub()
	<-hubDone
}

func TestBroadcastWithoutClients(t *testing.T) {
	h := New(nil)
	h.Broadcast("nobody listening")
	assert.Equal(t, 0, h.ClientCount())
}
