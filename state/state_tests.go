package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStore runs the behavior every Store must exhibit against s.
// The Store is stopped when the tests are done.
func TestStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	require.Equal(t, ErrStateNotFound, err)

	_, err = s.Load(ctx, "")
	require.Equal(t, ErrInvalidStream, err)
	require.Equal(t, ErrInvalidStream, s.Save(ctx, "", 1))

	require.Nil(t, s.Save(ctx, "dungeon", 42))
	v, err := s.Load(ctx, "dungeon")
	require.Nil(t, err)
	require.Equal(t, int64(42), v)

	require.Nil(t, s.Save(ctx, "negative", -2487063))
	v, err = s.Load(ctx, "negative")
	require.Nil(t, err)
	require.Equal(t, int64(-2487063), v)

	err = s.Update(ctx, "fresh", func(current int64, found bool) (int64, error) {
		require.False(t, found)
		require.Equal(t, int64(0), current)
		return 7, nil
	})
	require.Nil(t, err)
	v, err = s.Load(ctx, "fresh")
	require.Nil(t, err)
	require.Equal(t, int64(7), v)

	errAbort := errors.New("abort")
	err = s.Update(ctx, "fresh", func(current int64, found bool) (int64, error) {
		require.True(t, found)
		require.Equal(t, int64(7), current)
		return 99, errAbort
	})
	require.Equal(t, errAbort, err)
	v, err = s.Load(ctx, "fresh")
	require.Nil(t, err)
	require.Equal(t, int64(7), v, "aborted update must not save")

	// Concurrent increments must not be lost.
	const workers, rounds = 4, 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				err := s.Update(ctx, "counter", func(current int64, _ bool) (int64, error) {
					return current + 1, nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	v, err = s.Load(ctx, "counter")
	require.Nil(t, err)
	require.Equal(t, int64(workers*rounds), v)

	errs := s.Stop().Wait()
	require.Empty(t, errs)
}
