package batch

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClampWorkers(t *testing.T) {
	require.Equal(t, DefaultWorkers, ClampWorkers(0))
	require.Equal(t, 3, ClampWorkers(3))
	require.Equal(t, MaxWorkers, ClampWorkers(500))
}

func TestNewPool_ClampsWidth(t *testing.T) {
	fn := func(context.Context, string) (string, error) { return "", nil }
	require.Equal(t, DefaultWorkers, NewPool(0, fn).Workers())
	require.Equal(t, MaxWorkers, NewPool(500, fn).Workers())
}

func TestPool_RunsEveryURL(t *testing.T) {
	pool := NewPool(4, func(_ context.Context, url string) (string, error) {
		if url == "bad" {
			return "", errors.New("boom")
		}
		return "ok:" + url, nil
	})

	var seen int32
	pool.OnResult = func(Result[string]) { atomic.AddInt32(&seen, 1) }

	results := pool.Run(context.Background(), []string{"a", "b", "bad", "c"})
	require.Len(t, results, 4)
	require.EqualValues(t, 4, seen)

	var urls []string
	failed := 0
	for _, r := range results {
		urls = append(urls, r.URL)
		if r.Err != nil {
			failed++
			continue
		}
		require.Equal(t, "ok:"+r.URL, r.Value)
	}
	sort.Strings(urls)
	require.Equal(t, []string{"a", "b", "bad", "c"}, urls)
	require.Equal(t, 1, failed)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var running, peak int32
	pool := NewPool(2, func(_ context.Context, _ string) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})

	pool.Run(context.Background(), []string{"1", "2", "3", "4", "5", "6"})
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPool_Empty(t *testing.T) {
	pool := NewPool(1, func(context.Context, string) (int, error) { return 0, nil })
	require.Empty(t, pool.Run(context.Background(), nil))
}
