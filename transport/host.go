package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
)

// HostRuntime is the runtime a Host serves.
type HostRuntime interface {
	core.Registrar
	core.Sender
	Types() []string
}

// HostOptions configure a Host.
type HostOptions struct {
	// Loader turns specifications received by Register into factories.
	// Register is refused when nil.
	Loader core.SpecLoader
	// ServerOptions are passed to grpc.NewServer.
	ServerOptions []grpc.ServerOption
	// StopTimeout bounds the graceful shutdown before in-flight calls are
	// cut off.
	StopTimeout time.Duration
	Logger      logging.Logger
}

// Host serves a runtime over gRPC.
type Host struct {
	rt     HostRuntime
	opts   HostOptions
	server *grpc.Server
	logger logging.Logger

	stopOnce sync.Once
}

var _ RuntimeServer = (*Host)(nil)

// NewHost returns a Host for rt.
func NewHost(rt HostRuntime, optFns ...func(o *HostOptions)) *Host {
	opts := HostOptions{
		StopTimeout: 10 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &Host{
		rt:     rt,
		opts:   opts,
		server: grpc.NewServer(opts.ServerOptions...),
		logger: logging.With(opts.Logger, "transport"),
	}
	RegisterRuntimeServer(h.server, h)
	return h
}

// Serve accepts connections on lis until Stop is called.
func (h *Host) Serve(lis net.Listener) error {
	h.logger.Info("Runtime host listening", "addr", lis.Addr().String())
	if err := h.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls and closes every listener. Calls still running
// after StopTimeout are cancelled.
func (h *Host) Stop() {
	h.stopOnce.Do(func() {
		done := make(chan struct{})
		go func() {
			h.server.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
			h.logger.Info("Runtime host stopped gracefully")
		case <-time.After(h.opts.StopTimeout):
			h.logger.Warn("Graceful stop timed out, forcing shutdown", "timeout", h.opts.StopTimeout)
			h.server.Stop()
		}
	})
}

// Send implements RuntimeServer.
func (h *Host) Send(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	addr := core.Address{Type: stringField(in, "type"), Key: stringField(in, "key")}
	if addr.Type == "" {
		return nil, status.Error(codes.InvalidArgument, "type is required")
	}
	if addr.Key == "" {
		addr.Key = core.DefaultKey
	}

	content, err := getContent(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	reply, err := h.rt.Send(ctx, addr, core.NewMessage(content))
	if err != nil {
		h.logger.Debug("Remote send failed", "to", addr.String(), "error", err)
		return nil, toStatus(err)
	}
	out := map[string]any{}
	putContent(out, reply.Content)
	return structpb.NewStruct(out)
}

// Register implements RuntimeServer.
func (h *Host) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if h.opts.Loader == nil {
		return nil, status.Error(codes.Unimplemented, "host does not accept specifications")
	}
	typ, symbol := stringField(in, "type"), stringField(in, "symbol")
	if typ == "" || symbol == "" {
		return nil, status.Error(codes.InvalidArgument, "type and symbol are required")
	}

	cons, err := h.opts.Loader.Load(stringField(in, "spec"), symbol)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := h.rt.Register(ctx, typ, func() core.Agent { return cons.New(typ) }); err != nil {
		return nil, toStatus(err)
	}

	h.logger.Info("Remote type registered", "type", typ, "symbol", symbol)
	return &structpb.Struct{}, nil
}

// Types implements RuntimeServer.
func (h *Host) Types(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	types := h.rt.Types()
	list := make([]any, len(types))
	for i, t := range types {
		list[i] = t
	}
	return structpb.NewStruct(map[string]any{"types": list})
}
