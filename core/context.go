package core

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	senderKey
	chainDepthKey
	spawnLimiterKey
)

// WithRequestID returns a context carrying the id of the top-level request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the top-level request id, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithSender returns a context recording which agent is currently handling a
// message. Sends issued from inside that handler originate from addr.
func WithSender(ctx context.Context, addr Address) context.Context {
	return context.WithValue(ctx, senderKey, addr)
}

// SenderFrom returns the address of the agent currently handling a message.
func SenderFrom(ctx context.Context) (Address, bool) {
	addr, ok := ctx.Value(senderKey).(Address)
	return addr, ok
}

// WithChainDepth returns a context carrying the meta-creation depth.
func WithChainDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, chainDepthKey, depth)
}

// ChainDepth returns the meta-creation depth carried by ctx (0 at the root).
func ChainDepth(ctx context.Context) int {
	d, _ := ctx.Value(chainDepthKey).(int)
	return d
}

// WithSpawnLimiter returns a context carrying l.
func WithSpawnLimiter(ctx context.Context, l *SpawnLimiter) context.Context {
	return context.WithValue(ctx, spawnLimiterKey, l)
}

// SpawnLimiterFrom returns the limiter attached to ctx, or nil.
func SpawnLimiterFrom(ctx context.Context) *SpawnLimiter {
	l, _ := ctx.Value(spawnLimiterKey).(*SpawnLimiter)
	return l
}
