package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingCloser struct {
	ch     chan struct{}
	closes int
}

func (c *blockingCloser) Close() error {
	c.closes++
	if c.closes == 1 {
		close(c.ch)
	}
	return nil
}

func TestRunnerFirstStopCancelsOthers(t *testing.T) {
	r := NewRunner()
	boom := errors.New("boom")
	r.Go(
		RunFunc(func(context.Context) error { return boom }),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, boom))
}

func TestRunnerNoErrors(t *testing.T) {
	r := NewRunner()
	r.Go(RunFunc(func(context.Context) error { return nil }))
	require.NoError(t, r.Wait())
}

func TestRunWithContextCloser(t *testing.T) {
	c := &blockingCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.ch
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c.closes)

	c = &blockingCloser{ch: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, c.closes)
}
