package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	mu     sync.Mutex
	resets int
	warms  int
	err    error
	done   chan struct{}
}

func (f *fakeRefresher) ResetCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeRefresher) Warm(ctx context.Context) error {
	f.mu.Lock()
	f.warms++
	f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	if f.done != nil {
		close(f.done)
	}
	return f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefresh(t *testing.T) {
	target := &fakeRefresher{}
	s := NewScheduler("*/30 * * * *", target, discard())

	s.refresh()
	target.err = errors.New("workbook missing")
	s.refresh()

	assert.Equal(t, 2, target.resets)
	assert.Equal(t, 2, target.warms)
}

func TestRunNow(t *testing.T) {
	target := &fakeRefresher{done: make(chan struct{})}
	s := NewScheduler("", target, discard())

	s.RunNow()

	select {
	case <-target.done:
	case <-time.After(time.Second):
		t.Fatal("refresh did not run")
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	assert.Equal(t, 1, target.resets)
}

func TestStart(t *testing.T) {
	t.Run("schedules the job", func(t *testing.T) {
		s := NewScheduler("*/30 * * * *", &fakeRefresher{}, discard())
		require.NoError(t, s.Start())
		assert.Len(t, s.cron.Entries(), 1)
		<-s.Stop().Done()
	})

	t.Run("empty spec disables", func(t *testing.T) {
		s := NewScheduler("", &fakeRefresher{}, discard())
		require.NoError(t, s.Start())
		assert.Empty(t, s.cron.Entries())
	})

	t.Run("invalid spec", func(t *testing.T) {
		s := NewScheduler("every now and then", &fakeRefresher{}, discard())
		assert.Error(t, s.Start())
	})
}
