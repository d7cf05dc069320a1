package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcWorker struct {
	name string
	run  func(ctx context.Context) error
}

func (f funcWorker) Name() string                    { return f.name }
func (f funcWorker) Start(ctx context.Context) error { return f.run(ctx) }

func untilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestGroupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := Group{funcWorker{"a", untilDone}, funcWorker{"b", untilDone}}

	done := make(chan error, 1)
	go func() { done <- g.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("group did not stop")
	}
}

func TestGroupFailureCancelsOthers(t *testing.T) {
	stopped := make(chan struct{})
	g := Group{
		funcWorker{"failing", func(context.Context) error { return errors.New("boom") }},
		funcWorker{"waiting", func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return errors.New("interrupted")
		}},
	}

	err := g.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: boom")
	assert.Contains(t, err.Error(), "waiting: interrupted")
	<-stopped
}
