// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkerPool(t *testing.T) {
	assert.Equal(t, 1, NewWorkerPool(0).workerCount)
	assert.Equal(t, 1, NewWorkerPool(-5).workerCount)
	assert.Equal(t, 4, NewWorkerPool(4).workerCount)
}

func TestWorkerPoolRun(t *testing.T) {
	t.Run("runs all functions", func(t *testing.T) {
		var count atomic.Int32
		tasks := make([]func() error, 10)
		for i := range tasks {
			tasks[i] = func() error {
				count.Add(1)
				return nil
			}
		}

		err := NewWorkerPool(3).Run(context.Background(), tasks...)
		assert.NoError(t, err)
		assert.Equal(t, int32(10), count.Load())
	})

	t.Run("returns first error", func(t *testing.T) {
		wantErr := errors.New("boom")
		err := NewWorkerPool(2).Run(context.Background(),
			func() error { return nil },
			func() error { return wantErr },
		)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("no functions is a no-op", func(t *testing.T) {
		assert.NoError(t, NewWorkerPool(2).Run(context.Background()))
	})
}

func TestWorkerPoolRunAll(t *testing.T) {
	t.Run("collects all errors without cancelling", func(t *testing.T) {
		var count atomic.Int32
		errs := NewWorkerPool(2).RunAll(context.Background(),
			func() error { count.Add(1); return errors.New("one") },
			func() error { count.Add(1); return nil },
			func() error { count.Add(1); return errors.New("two") },
		)
		assert.Len(t, errs, 2)
		assert.Equal(t, int32(3), count.Load())
	})

	t.Run("cancelled context reports context errors", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		errs := NewWorkerPool(1).RunAll(ctx,
			func() error { return nil },
		)
		assert.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], context.Canceled)
	})
}
