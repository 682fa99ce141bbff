package context

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	rc := New(ctx)

	require.NotNil(t, rc)
	assert.Equal(t, ctx, rc.Context())
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(nil)) //nolint:staticcheck // Testing nil guard intentionally
	assert.Nil(t, FromContext(context.Background()))

	rc := New(context.Background())
	assert.Same(t, rc, FromContext(WithContext(context.Background(), rc)))
}

func TestGetOrFetch_Memoizes(t *testing.T) {
	rc := New(context.Background())

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "exchanges", nil
	}

	for range 3 {
		v, err := rc.GetOrFetch("exchanges", fetch)
		require.NoError(t, err)
		assert.Equal(t, "exchanges", v)
	}

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_MemoizesErrors(t *testing.T) {
	rc := New(context.Background())
	boom := errors.New("api down")

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	_, err := rc.GetOrFetch("exchanges", fetch)
	require.ErrorIs(t, err, boom)
	_, err = rc.GetOrFetch("exchanges", fetch)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_ConcurrentCallersShareOneFetch(t *testing.T) {
	rc := New(context.Background())

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			v, err := rc.GetOrFetch("answer", fetch)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestForget(t *testing.T) {
	rc := New(context.Background())

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		return calls.Add(1), nil
	}

	v1, _ := rc.GetOrFetch("k", fetch)
	rc.Forget("k")
	v2, _ := rc.GetOrFetch("k", fetch)

	assert.Equal(t, int32(1), v1)
	assert.Equal(t, int32(2), v2)
}

func TestFetch_Typed(t *testing.T) {
	rc := New(context.Background())
	ctx := WithContext(context.Background(), rc)

	var calls atomic.Int32
	list := func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"cardmarket", "tcgplayer"}, nil
	}

	got, err := Fetch(ctx, "exchanges", list)
	require.NoError(t, err)
	assert.Equal(t, []string{"cardmarket", "tcgplayer"}, got)

	_, err = Fetch(ctx, "exchanges", list)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	Invalidate(ctx, "exchanges")
	_, err = Fetch(ctx, "exchanges", list)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_WithoutRequestContext(t *testing.T) {
	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		return 7, nil
	}

	for range 2 {
		v, err := Fetch(context.Background(), "k", fn)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}

	assert.Equal(t, int32(2), calls.Load())
	Invalidate(context.Background(), "k")
}

func TestFetch_TypeMismatch(t *testing.T) {
	rc := New(context.Background())
	ctx := WithContext(context.Background(), rc)

	_, err := rc.GetOrFetch("k", func(context.Context) (any, error) { return "text", nil })
	require.NoError(t, err)

	_, err = Fetch(ctx, "k", func(context.Context) (int, error) { return 1, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `request context key "k" holds string`)
}
