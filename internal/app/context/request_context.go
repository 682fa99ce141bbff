package context

import (
	"context"
	"fmt"
	"sync"
)

type ctxKey struct{}

// entry holds one memoized fetch. Concurrent callers for the same key wait
// on the first fetch instead of starting their own.
type entry struct {
	once  sync.Once
	value any
	err   error
}

// RequestContext memoizes fetches for the lifetime of one request. Errors
// are memoized too, so a failed lookup is not retried within the request.
type RequestContext struct {
	ctx   context.Context
	cache sync.Map
}

// New creates a RequestContext whose fetches run with ctx.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx}
}

// FromContext returns the RequestContext in ctx, or nil.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}

	if rc, ok := ctx.Value(ctxKey{}).(*RequestContext); ok {
		return rc
	}

	return nil
}

// WithContext stores rc in ctx.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// GetOrFetch returns the value memoized under key, calling fetchFn on the
// first request for it.
func (rc *RequestContext) GetOrFetch(key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	e, _ := rc.cache.LoadOrStore(key, &entry{})
	ent := e.(*entry)

	ent.once.Do(func() {
		ent.value, ent.err = fetchFn(rc.ctx)
	})

	return ent.value, ent.err
}

// Forget drops a memoized key, e.g. after a write made it stale.
func (rc *RequestContext) Forget(key string) {
	rc.cache.Delete(key)
}

// Context returns the context fetches run with.
func (rc *RequestContext) Context() context.Context {
	return rc.ctx
}

// Fetch is the typed form of GetOrFetch. When ctx carries no RequestContext
// it calls fn directly.
func Fetch[T any](ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	rc := FromContext(ctx)
	if rc == nil {
		return fn(ctx)
	}

	value, err := rc.GetOrFetch(key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("request context key %q holds %T", key, value)
	}

	return typed, nil
}

// Invalidate drops key from the RequestContext in ctx, if any.
func Invalidate(ctx context.Context, key string) {
	if rc := FromContext(ctx); rc != nil {
		rc.Forget(key)
	}
}
