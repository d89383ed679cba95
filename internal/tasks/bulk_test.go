package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkAction(t *testing.T) {
	t.Run("collects partial failures", func(t *testing.T) {
		var mu sync.Mutex
		seen := map[string]bool{}
		fn := func(_ context.Context, id string) error {
			mu.Lock()
			seen[id] = true
			mu.Unlock()
			if id == "bad" {
				return errors.New("device unreachable")
			}
			return nil
		}

		progress := make(chan ProgressUpdate, 10)
		res, err := BulkAction(context.Background(), progress, []string{"a", "bad", "c"}, fn, BulkOpts{Action: "wake", RateLimit: 1000})
		require.NoError(t, err)

		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 2, res.Succeeded)
		assert.Equal(t, 1, res.Failed)
		assert.Len(t, seen, 3)

		close(progress)
		count := 0
		for u := range progress {
			assert.Equal(t, DeviceAction, u.Phase)
			assert.Equal(t, 3, u.Total)
			count++
		}
		assert.Equal(t, 3, count)
	})

	t.Run("no ids", func(t *testing.T) {
		_, err := BulkAction(context.Background(), nil, nil, nil, BulkOpts{})
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		fn := func(context.Context, string) error { return nil }
		res, err := BulkAction(ctx, nil, []string{"a", "b", "c", "d"}, fn, BulkOpts{Action: "shutdown", RateLimit: 10})
		require.Error(t, err)
		assert.Less(t, len(res.Results), 4)
	})
}
