package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundraiser/internal/adapter/memory"
	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
	"fundraiser/internal/core/port/mocks"
)

// sliceSource serves events from memory the way the ledger does.
type sliceSource struct {
	events []domain.Event
}

func (s *sliceSource) Events(_ context.Context, after int64, limit int) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range s.events {
		if e.Seq > after && (limit <= 0 || len(out) < limit) {
			out = append(out, e)
		}
	}
	return out, nil
}

func testEvents(n int) []domain.Event {
	events := make([]domain.Event, n)
	for i := range events {
		events[i] = domain.Event{Seq: int64(i + 1), Kind: domain.EventDonate, CampaignID: 1, Amount: uint64(i + 1)}
	}
	return events
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFlushDeliversInBatches(t *testing.T) {
	events := testEvents(3)
	pub := mocks.NewMockEventPublisher(t)
	pub.EXPECT().Publish(mock.Anything, events[:2]).Return(nil).Once()
	pub.EXPECT().Publish(mock.Anything, events[2:]).Return(nil).Once()

	r := New(&sliceSource{events: events}, []port.EventPublisher{pub}, time.Second, 2, discardLogger())
	n, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(3), r.Cursor())

	// nothing new, nothing published
	n, err = r.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushRetriesFailedBatch(t *testing.T) {
	events := testEvents(2)
	pub := mocks.NewMockEventPublisher(t)
	pub.EXPECT().Publish(mock.Anything, events).Return(errors.New("unavailable")).Once()
	pub.EXPECT().Publish(mock.Anything, events).Return(nil).Once()

	r := New(&sliceSource{events: events}, []port.EventPublisher{pub}, time.Second, 10, discardLogger())
	_, err := r.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(0), r.Cursor())

	n, err := r.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), r.Cursor())
}

func TestRunStopsOnCancel(t *testing.T) {
	events := testEvents(1)
	delivered := make(chan struct{})
	pub := mocks.NewMockEventPublisher(t)
	pub.EXPECT().Publish(mock.Anything, events).
		Run(func(context.Context, []domain.Event) { close(delivered) }).
		Return(nil).Once()

	r := New(&sliceSource{events: events}, []port.EventPublisher{pub}, 10*time.Millisecond, 10, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not publish")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestResumeFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	events := testEvents(3)
	cp := NewStoreCheckpoint(memory.NewStore(), "relay")
	src := &sliceSource{events: events[:2]}

	pub := mocks.NewMockEventPublisher(t)
	pub.EXPECT().Publish(mock.Anything, events[:2]).Return(nil).Once()
	pub.EXPECT().Publish(mock.Anything, events[2:]).Return(nil).Once()

	first := New(src, []port.EventPublisher{pub}, time.Second, 10, discardLogger())
	require.NoError(t, first.Resume(ctx, cp))
	assert.Zero(t, first.Cursor())
	n, err := first.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a restarted relay only delivers what was logged since
	src.events = events
	second := New(src, []port.EventPublisher{pub}, time.Second, 10, discardLogger())
	require.NoError(t, second.Resume(ctx, cp))
	assert.Equal(t, int64(2), second.Cursor())
	n, err = second.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	seq, err := cp.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestFailedBatchKeepsCheckpoint(t *testing.T) {
	ctx := context.Background()
	events := testEvents(2)
	cp := NewStoreCheckpoint(memory.NewStore(), "relay")
	pub := mocks.NewMockEventPublisher(t)
	pub.EXPECT().Publish(mock.Anything, events).Return(errors.New("unavailable")).Once()

	r := New(&sliceSource{events: events}, []port.EventPublisher{pub}, time.Second, 10, discardLogger())
	require.NoError(t, r.Resume(ctx, cp))
	_, err := r.Flush(ctx)
	require.Error(t, err)

	seq, err := cp.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq)
}
