package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/internal/testutil"
)

func TestCallbacks_LifecycleOrder(t *testing.T) {
	cm := NewCallbackManager()
	var trace []string
	for _, typ := range []CallbackType{CallbackBeforeRegister, CallbackAfterRegister, CallbackBeforeDeliver, CallbackAfterDeliver, CallbackOnError} {
		cm.RegisterCallback(NewLoggingCallback(typ, func(m string) { trace = append(trace, m) }))
	}
	e := startedEngine(t, func(o *Options) { o.Callbacks = cm })
	f := &testutil.CountingFactory{Name: "echo"}

	require.NoError(t, e.Register(context.Background(), "echo", f.Factory()))
	_, err := e.Send(context.Background(), core.NewAddress("echo"), core.NewMessage("hi"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[before_register] type echo",
		"[after_register] type echo",
		`[before_deliver] echo/default: "hi"`,
		`[after_deliver] echo/default: "hi"`,
	}, trace)
}

func TestCallbacks_TypeValidationVetoesRegistration(t *testing.T) {
	cm := NewCallbackManager()
	cm.RegisterCallback(NewTypeValidationCallback(func(typ string) error {
		if typ == "reserved" {
			return fmt.Errorf("type %q is reserved", typ)
		}
		return nil
	}))
	e := New(func(o *Options) { o.Callbacks = cm })
	f := &testutil.CountingFactory{Name: "x"}

	err := e.Register(context.Background(), "reserved", f.Factory())
	assert.ErrorContains(t, err, "reserved")
	assert.Empty(t, e.Types())
	assert.NoError(t, e.Register(context.Background(), "fine", f.Factory()))
}

func TestCallbacks_OnErrorReceivesHandlerError(t *testing.T) {
	cm := NewCallbackManager()
	var got error
	cm.RegisterCallback(NewFunctionCallback(CallbackOnError, func(_ context.Context, cbCtx *CallbackContext) error {
		got = cbCtx.Err
		return nil
	}))
	e := startedEngine(t, func(o *Options) { o.Callbacks = cm })
	boom := errors.New("boom")
	require.NoError(t, e.Register(context.Background(), "bad", func() core.Agent {
		return core.AgentFunc{AgentName: "bad", Fn: func(context.Context, core.Message) (core.Message, error) { return core.Message{}, boom }}
	}))

	_, err := e.Send(context.Background(), core.NewAddress("bad"), core.NewMessage("x"))
	assert.Same(t, boom, err)
	assert.Same(t, boom, got)
}

func TestCallbacks_BeforeDeliverAborts(t *testing.T) {
	cm := NewCallbackManager()
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeDeliver, func(context.Context, *CallbackContext) error {
		return errors.New("denied")
	}))
	e := startedEngine(t, func(o *Options) { o.Callbacks = cm })
	f := &testutil.CountingFactory{Name: "echo"}
	require.NoError(t, e.Register(context.Background(), "echo", f.Factory()))

	_, err := e.Send(context.Background(), core.NewAddress("echo"), core.NewMessage("x"))
	assert.ErrorContains(t, err, "denied")
}

func TestCallbackManager_Nil(t *testing.T) {
	var cm *CallbackManager
	assert.NoError(t, cm.ExecuteCallbacks(context.Background(), CallbackOnError, &CallbackContext{}))
}
