package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/careercompass/internal/assessment"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) Write(_ context.Context, _ websocket.MessageType, p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append([]byte(nil), p...))
	return nil
}

func (c *fakeConn) Close(websocket.StatusCode, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) envelopes(t *testing.T) []Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		var env Envelope
		require.NoError(t, json.Unmarshal(f, &env))
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// stuckConn blocks every write until release is closed.
type stuckConn struct {
	fakeConn
	release chan struct{}
}

func (c *stuckConn) Write(ctx context.Context, typ websocket.MessageType, p []byte) error {
	select {
	case <-c.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.fakeConn.Write(ctx, typ, p)
}

func TestHub_Register(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}

	client := hub.Register("user123", "tab-1", conn)

	assert.Same(t, client, hub.Get("user123", "tab-1"))
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	client := hub.Register("user123", "tab-1", &fakeConn{})

	hub.Unregister("user123", "tab-1", client)

	assert.Nil(t, hub.Get("user123", "tab-1"))
	assert.False(t, client.Enqueue(Envelope{Type: FramePong}))
}

func TestHub_ReplaceClosesOldConnection(t *testing.T) {
	hub := NewHub()
	oldConn := &fakeConn{}

	old := hub.Register("user123", "tab-1", oldConn)
	replacement := hub.Register("user123", "tab-1", &fakeConn{})

	assert.True(t, oldConn.isClosed())
	assert.Same(t, replacement, hub.Get("user123", "tab-1"))

	// The replaced connection's deferred unregister must not evict the new one.
	hub.Unregister("user123", "tab-1", old)
	assert.Same(t, replacement, hub.Get("user123", "tab-1"))
}

func TestHub_PublishRoutesByTab(t *testing.T) {
	hub := NewHub()
	tab1, tab2 := &fakeConn{}, &fakeConn{}
	hub.Register("user123", "tab-1", tab1)
	hub.Register("user123", "tab-2", tab2)

	hub.Publish("user123", "tab-1", assessment.Event{Type: assessment.EventProgress, RunID: "run-1", Progress: 20})
	hub.Publish("someone-else", "tab-1", assessment.Event{Type: assessment.EventProgress})

	require.Eventually(t, func() bool { return tab1.frameCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	got := tab1.envelopes(t)
	assert.Equal(t, FrameEvent, got[0].Type)
	require.NotNil(t, got[0].Event)
	assert.Equal(t, assessment.EventProgress, got[0].Event.Type)
	assert.InDelta(t, 20.0, got[0].Event.Progress, 1e-9)
	assert.Zero(t, tab2.frameCount())
}

func TestHub_PublishKeepsOrder(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register("user123", "tab-1", conn)

	types := []assessment.EventType{
		assessment.EventMessage, assessment.EventThinking, assessment.EventMessage,
		assessment.EventProgress, assessment.EventComplete,
	}
	for _, typ := range types {
		hub.Publish("user123", "tab-1", assessment.Event{Type: typ})
	}

	require.Eventually(t, func() bool { return conn.frameCount() == len(types) }, 2*time.Second, 5*time.Millisecond)
	for i, env := range conn.envelopes(t) {
		assert.Equal(t, types[i], env.Event.Type)
	}
}

func TestHub_SlowConnectionDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub()
	conn := &stuckConn{release: make(chan struct{})}
	client := hub.Register("user123", "tab-1", conn)
	defer hub.Unregister("user123", "tab-1", client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < outboxSize*2; i++ {
			hub.Publish("user123", "tab-1", assessment.Event{Type: assessment.EventThinking})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stuck connection")
	}

	close(conn.release)
	assert.Eventually(t, func() bool { return conn.frameCount() > 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_SlowConnectionDoesNotBlockMachine(t *testing.T) {
	hub := NewHub()
	conn := &stuckConn{release: make(chan struct{})}
	defer close(conn.release)
	client := hub.Register("u1", "tab-1", conn)
	defer hub.Unregister("u1", "tab-1", client)

	sched := assessment.NewManualScheduler()
	mgr := assessment.NewManager(assessment.ManagerConfig{Scheduler: sched}, hub)
	defer mgr.CloseAll()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = mgr.Submit("u1", "tab-1", "first")
		sched.Advance(assessment.DefaultThinkDelay)
		_, _ = mgr.Submit("u1", "tab-1", "second")
		_ = mgr.Current("u1", "tab-1")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("machine transitions waited on a socket write")
	}
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register("u1", "tab-1", a)
	hub.Register("u2", "tab-1", b)

	hub.CloseAll()

	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.Nil(t, hub.Get("u1", "tab-1"))
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			hub.Register("concurrentUser", "tab-"+strconv.Itoa(i), &fakeConn{})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			hub.Publish("concurrentUser", "tab-"+strconv.Itoa(i), assessment.Event{Type: assessment.EventThinking, At: time.Now()})
		}
	}()

	wg.Wait()
	hub.CloseAll()
}
