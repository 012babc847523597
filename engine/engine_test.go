package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/internal/testutil"
	"github.com/sudhirerahul/meta-creation-agents/session"
)

func startedEngine(t *testing.T, optFns ...func(o *Options)) *Engine {
	t.Helper()
	e := New(optFns...)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })
	return e
}

func TestEngine_RegisterDoesNotInstantiate(t *testing.T) {
	e := startedEngine(t)
	f := &testutil.CountingFactory{Name: "echo"}

	require.NoError(t, e.Register(context.Background(), "echo", f.Factory()))

	assert.Equal(t, 0, f.Calls())
	assert.Equal(t, []string{"echo"}, e.Types())
	assert.Empty(t, e.Live())
}

func TestEngine_RegisterValidation(t *testing.T) {
	e := New()
	assert.Error(t, e.Register(context.Background(), "", func() core.Agent { return nil }))
	assert.Error(t, e.Register(context.Background(), "x", nil))
}

func TestEngine_DuplicateRegistrationKeepsFirst(t *testing.T) {
	e := startedEngine(t)
	first := &testutil.CountingFactory{Name: "first"}
	second := &testutil.CountingFactory{Name: "second"}

	require.NoError(t, e.Register(context.Background(), "echo", first.Factory()))
	err := e.Register(context.Background(), "echo", second.Factory())

	var dup *core.DuplicateTypeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "echo", dup.Type)

	reply, err := e.Send(context.Background(), core.NewAddress("echo"), core.NewMessage("hi"))
	require.NoError(t, err)
	assert.Equal(t, "first: hi", reply.Content)
	assert.Equal(t, 0, second.Calls())
}

func TestEngine_ConcurrentDuplicateRegistration(t *testing.T) {
	e := New()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		dups int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f := &testutil.CountingFactory{Name: "x"}
			err := e.Register(context.Background(), "x", f.Factory())
			mu.Lock()
			defer mu.Unlock()
			var dup *core.DuplicateTypeError
			switch {
			case err == nil:
				wins++
			case errors.As(err, &dup):
				dups++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 31, dups)
}

func TestEngine_SingleConstructionUnderConcurrency(t *testing.T) {
	e := startedEngine(t)
	f := &testutil.CountingFactory{Name: "echo"}
	require.NoError(t, e.Register(context.Background(), "echo", f.Factory()))

	addr := core.NewAddress("echo")
	agents := make([]core.Agent, 64)
	var wg sync.WaitGroup
	for i := range agents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := e.Resolve(context.Background(), addr)
			assert.NoError(t, err)
			agents[i] = a
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.Calls())
	for _, a := range agents {
		assert.Same(t, agents[0], a)
	}
	assert.Equal(t, []core.Address{addr}, e.Live())
}

func TestEngine_KeysAreDistinctInstances(t *testing.T) {
	e := startedEngine(t)
	f := &testutil.CountingFactory{Name: "echo"}
	require.NoError(t, e.Register(context.Background(), "echo", f.Factory()))

	a, err := e.Resolve(context.Background(), core.Address{Type: "echo", Key: "a"})
	require.NoError(t, err)
	b, err := e.Resolve(context.Background(), core.Address{Type: "echo", Key: "b"})
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, f.Calls())
}

func TestEngine_UnknownType(t *testing.T) {
	e := startedEngine(t)

	_, err := e.Send(context.Background(), core.NewAddress("missing"), core.NewMessage("hi"))

	var unknown *core.UnknownTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Type)
}

func TestEngine_NilFactoryResultCanRetry(t *testing.T) {
	e := startedEngine(t)
	calls := 0
	require.NoError(t, e.Register(context.Background(), "flaky", func() core.Agent {
		calls++
		if calls == 1 {
			return nil
		}
		return &testutil.EchoAgent{AgentName: "flaky"}
	}))

	_, err := e.Resolve(context.Background(), core.NewAddress("flaky"))
	assert.Error(t, err)
	a, err := e.Resolve(context.Background(), core.NewAddress("flaky"))
	require.NoError(t, err)
	assert.Equal(t, "flaky", a.Name())
}

func TestEngine_SendRequiresRunning(t *testing.T) {
	e := New()
	f := &testutil.CountingFactory{Name: "echo"}
	require.NoError(t, e.Register(context.Background(), "echo", f.Factory()))

	_, err := e.Send(context.Background(), core.NewAddress("echo"), core.NewMessage("hi"))
	var de *core.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, core.ErrRuntimeStopped)

	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Stop(context.Background()))

	_, err = e.Send(context.Background(), core.NewAddress("echo"), core.NewMessage("hi"))
	assert.ErrorIs(t, err, core.ErrRuntimeStopped)
	assert.ErrorIs(t, e.Start(context.Background()), core.ErrRuntimeStopped)
}

func TestEngine_HandlerErrorPropagatesUnchanged(t *testing.T) {
	store := session.NewInMemoryStore()
	e := startedEngine(t, func(o *Options) { o.SessionStore = store })
	boom := errors.New("boom")
	require.NoError(t, e.Register(context.Background(), "bad", func() core.Agent {
		return core.AgentFunc{AgentName: "bad", Fn: func(context.Context, core.Message) (core.Message, error) {
			return core.Message{}, boom
		}}
	}))

	ctx := core.WithRequestID(context.Background(), "req-bad")
	_, err := e.Send(ctx, core.NewAddress("bad"), core.NewMessage("hi"))
	assert.Same(t, boom, err)

	sess, err := store.Get("req-bad")
	require.NoError(t, err)
	events := sess.GetEvents()
	require.Len(t, events, 1)
	assert.True(t, events[0].Failed())
	assert.Equal(t, "boom", events[0].Error)
}

func TestEngine_StopIsIdempotentAndJoinsErrors(t *testing.T) {
	e := New()
	good := &testutil.CountingFactory{Name: "good"}
	require.NoError(t, e.Register(context.Background(), "good", good.Factory()))
	errA := errors.New("stop a failed")
	errB := errors.New("stop b failed")
	require.NoError(t, e.Register(context.Background(), "a", func() core.Agent { return &testutil.EchoAgent{AgentName: "a", StopErr: errA} }))
	require.NoError(t, e.Register(context.Background(), "b", func() core.Agent { return &testutil.EchoAgent{AgentName: "b", StopErr: errB} }))
	require.NoError(t, e.Start(context.Background()))

	for _, typ := range []string{"good", "a", "b"} {
		_, err := e.Send(context.Background(), core.NewAddress(typ), core.NewMessage("hi"))
		require.NoError(t, err)
	}

	err := e.Stop(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, int32(1), good.Built()[0].Stops.Load(), "remaining instances are still stopped")

	assert.NoError(t, e.Stop(context.Background()))
	assert.Equal(t, int32(1), good.Built()[0].Stops.Load())
}

func TestEngine_RegisterAfterStopIsRefused(t *testing.T) {
	e := New()
	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Stop(context.Background()))

	f := &testutil.CountingFactory{Name: "late"}
	err := e.Register(context.Background(), "late", f.Factory())
	assert.ErrorIs(t, err, core.ErrRuntimeStopped)
	assert.Empty(t, e.Types())
}

func TestEngine_ResolveWaiterHonoursContext(t *testing.T) {
	e := startedEngine(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, e.Register(context.Background(), "slow", func() core.Agent {
		close(entered)
		<-release
		return &testutil.EchoAgent{AgentName: "slow"}
	}))

	addr := core.NewAddress("slow")
	built := make(chan error, 1)
	go func() {
		_, err := e.Resolve(context.Background(), addr)
		built <- err
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := e.Resolve(ctx, addr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-built)
	a, err := e.Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "slow", a.Name())
}

func TestEngine_StopBeforeStart(t *testing.T) {
	e := New()
	assert.NoError(t, e.Stop(context.Background()))
	assert.False(t, e.Running())
}

func TestEngine_NestedSendsShareRequest(t *testing.T) {
	store := session.NewInMemoryStore()
	e := startedEngine(t, func(o *Options) { o.SessionStore = store })
	leaf := &testutil.CountingFactory{Name: "leaf"}
	require.NoError(t, e.Register(context.Background(), "leaf", leaf.Factory()))

	var seen struct {
		requestID string
		limiter   *core.SpawnLimiter
	}
	require.NoError(t, e.Register(context.Background(), "parent", func() core.Agent {
		return core.AgentFunc{AgentName: "parent", Fn: func(ctx context.Context, msg core.Message) (core.Message, error) {
			seen.requestID, _ = core.RequestIDFrom(ctx)
			seen.limiter = core.SpawnLimiterFrom(ctx)
			sender, _ := core.SenderFrom(ctx)
			assert.Equal(t, "parent", sender.Type)
			return e.Send(ctx, core.NewAddress("leaf"), msg)
		}}
	}))

	reply, err := e.Send(context.Background(), core.NewAddress("parent"), core.NewMessage("ping"))
	require.NoError(t, err)
	assert.Equal(t, "leaf: ping", reply.Content)
	require.NotEmpty(t, seen.requestID)
	require.NotNil(t, seen.limiter)

	sess, err := store.Get(seen.requestID)
	require.NoError(t, err)
	events := sess.GetEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "leaf", events[0].To.Type)
	assert.Equal(t, "parent", events[0].From.Type)
	assert.True(t, events[1].External())
	assert.Equal(t, "leaf: ping", events[1].Reply)
}

func TestEngine_ConcurrentRequestLimitHonoursContext(t *testing.T) {
	e := startedEngine(t, func(o *Options) { o.Config.MaxConcurrentRequests = 1 })
	release := make(chan struct{})
	entered := make(chan struct{})
	require.NoError(t, e.Register(context.Background(), "slow", func() core.Agent {
		return core.AgentFunc{AgentName: "slow", Fn: func(ctx context.Context, msg core.Message) (core.Message, error) {
			close(entered)
			<-release
			return msg, nil
		}}
	}))

	done := make(chan error, 1)
	go func() {
		_, err := e.Send(context.Background(), core.NewAddress("slow"), core.NewMessage("a"))
		done <- err
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Send(ctx, core.NewAddress("slow"), core.NewMessage("b"))
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NoError(t, <-done)
}
