package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/async"
)

func TestRun_Success(t *testing.T) {
	t.Parallel()

	f := async.Run(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	got, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRun_Error(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("send failed")
	f := async.Run(context.Background(), func(context.Context) (struct{}, error) {
		return struct{}{}, wantErr
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, wantErr)
}

func TestRun_PreCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	f := async.Run(ctx, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := async.Run(context.Background(), func(context.Context) (string, error) {
		<-release
		return "late", nil
	})

	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)

	close(release)
	got, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, "late", got)
}
