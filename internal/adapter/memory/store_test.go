package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

func lastID(t *testing.T, s *Store) uint64 {
	t.Helper()
	var id uint64
	require.NoError(t, s.View(context.Background(), func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		id, err = tx.Campaigns().LastID(ctx)
		return err
	}))
	return id
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		id, err := tx.Campaigns().NextID(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Registry().Mint(ctx, "0xa", id, "uri"))
		require.NoError(t, tx.Campaigns().Insert(ctx, domain.NewCampaign(id, 10)))
		require.NoError(t, tx.Treasury().Hold(ctx, 5))
		_, err = tx.Events().Append(ctx, domain.Event{Kind: domain.EventStartCampaign, CampaignID: id})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, uint64(0), lastID(t, s))
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		exists, _ := tx.Registry().Exists(ctx, 1)
		assert.False(t, exists)
		escrow, _ := tx.Treasury().EscrowBalance(ctx)
		assert.Zero(t, escrow)
		events, _ := tx.Events().After(ctx, 0, 0)
		assert.Empty(t, events)
		return nil
	}))

	// the id released by the rollback is handed out again
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		id, err := tx.Campaigns().NextID(ctx)
		assert.Equal(t, uint64(1), id)
		return err
	}))
	assert.Equal(t, uint64(1), lastID(t, s))
}

func TestViewDoesNotWaitForInTx(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	staged := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
			if _, err := tx.Campaigns().NextID(ctx); err != nil {
				return err
			}
			close(staged)
			<-release
			return nil
		})
	}()

	<-staged
	assert.Equal(t, uint64(0), lastID(t, s), "staged change must not be visible")
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), lastID(t, s))
}

func TestViewIsReadOnly(t *testing.T) {
	s := NewStore()
	err := s.View(context.Background(), func(ctx context.Context, tx port.LedgerTx) error {
		_, err := tx.Campaigns().NextID(ctx)
		return err
	})
	require.ErrorIs(t, err, port.ErrReadOnly)
}

func TestInTxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := NewStore().InTx(ctx, func(context.Context, port.LedgerTx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestEventsAfter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
			_, err := tx.Events().Append(ctx, domain.Event{Kind: domain.EventDonate, Amount: uint64(i), CreatedAt: time.Now()})
			return err
		}))
	}

	var snapshot []domain.Event
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		snapshot, err = tx.Events().After(ctx, 1, 2)
		return err
	}))
	require.Len(t, snapshot, 2)
	assert.Equal(t, int64(2), snapshot[0].Seq)
	assert.Equal(t, int64(3), snapshot[1].Seq)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		all, _ := tx.Events().After(ctx, 0, 0)
		assert.Len(t, all, 5)
		tail, _ := tx.Events().After(ctx, 5, 10)
		assert.Empty(t, tail)
		return nil
	}))
}

func TestTreasuryPay(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Treasury().Pay(ctx, "0xa", 1)
	})
	require.ErrorIs(t, err, domain.ErrEscrowShortfall)

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		require.NoError(t, tx.Treasury().Hold(ctx, 10))
		return tx.Treasury().Pay(ctx, "0xa", 4)
	}))
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		bal, _ := tx.Treasury().Balance(ctx, "0xa")
		assert.Equal(t, uint64(4), bal)
		escrow, _ := tx.Treasury().EscrowBalance(ctx)
		assert.Equal(t, uint64(6), escrow)
		return nil
	}))
}

func TestRegistryTransfer(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Registry().Mint(ctx, "0xa", 1, "uri")
	}))

	err := s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Registry().Transfer(ctx, "0xb", "0xc", 1)
	})
	require.ErrorIs(t, err, domain.ErrNotTokenOwner)

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Registry().Transfer(ctx, "0xa", "0xb", 1)
	}))
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		owner, _ := tx.Registry().OwnerOf(ctx, 1)
		assert.Equal(t, domain.Address("0xb"), owner)
		a, _ := tx.Registry().BalanceOf(ctx, "0xa")
		b, _ := tx.Registry().BalanceOf(ctx, "0xb")
		assert.Equal(t, uint64(0), a)
		assert.Equal(t, uint64(1), b)
		_, err := tx.Registry().OwnerOf(ctx, 2)
		assert.ErrorIs(t, err, domain.ErrDoesNotExist)
		return nil
	}))
}

func TestInTxDoesNotCopyEventLog(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	appendOne := func() {
		require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
			_, err := tx.Events().Append(ctx, domain.Event{Kind: domain.EventDonate, Amount: 1})
			return err
		}))
	}
	for i := 0; i < 2000; i++ {
		appendOne()
	}

	moves := 0
	first := &s.committed.events[0]
	for i := 0; i < 2000; i++ {
		appendOne()
		if cur := &s.committed.events[0]; cur != first {
			moves++
			first = cur
		}
	}
	// only amortized slice growth may move the log, never each write
	assert.Less(t, moves, 20)
	assert.Len(t, s.committed.events, 4000)
}

func TestRolledBackWritesStayInvisible(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		require.NoError(t, tx.Registry().Mint(ctx, "0xa", 1, "uri"))
		_, err := tx.Events().Append(ctx, domain.Event{Kind: domain.EventStartCampaign, CampaignID: 1})
		return err
	}))

	err := s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		require.NoError(t, tx.Registry().Transfer(ctx, "0xa", "0xb", 1))
		require.NoError(t, tx.Treasury().SetAcceptsFunds(ctx, "0xb", false))
		require.NoError(t, tx.Cursors().Set(ctx, "relay", 1))
		_, err := tx.Events().Append(ctx, domain.Event{Kind: domain.EventTransfer, CampaignID: 1})
		require.NoError(t, err)

		// the unit of work sees its own staged writes
		owner, _ := tx.Registry().OwnerOf(ctx, 1)
		assert.Equal(t, domain.Address("0xb"), owner)
		n, _ := tx.Registry().BalanceOf(ctx, "0xa")
		assert.Zero(t, n)
		return errors.New("abort")
	})
	require.Error(t, err)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		owner, _ := tx.Registry().OwnerOf(ctx, 1)
		assert.Equal(t, domain.Address("0xa"), owner)
		n, _ := tx.Registry().BalanceOf(ctx, "0xa")
		assert.Equal(t, uint64(1), n)
		accepts, _ := tx.Treasury().AcceptsFunds(ctx, "0xb")
		assert.True(t, accepts)
		seq, _ := tx.Cursors().Get(ctx, "relay")
		assert.Zero(t, seq)
		events, _ := tx.Events().After(ctx, 0, 0)
		assert.Len(t, events, 1)
		return nil
	}))

	// the next append reuses the slot of the rolled back one
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		seq, err := tx.Events().Append(ctx, domain.Event{Kind: domain.EventDonate, CampaignID: 1})
		assert.Equal(t, int64(2), seq)
		return err
	}))
}

func TestCursors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Cursors().Set(ctx, "relay", 42)
	}))
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		seq, err := tx.Cursors().Get(ctx, "relay")
		assert.Equal(t, int64(42), seq)
		other, _ := tx.Cursors().Get(ctx, "other")
		assert.Zero(t, other)
		assert.ErrorIs(t, tx.Cursors().Set(ctx, "relay", 1), port.ErrReadOnly)
		return err
	}))
}

func TestTreasuryHoldRespectsMaxAmount(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	err := s.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		require.NoError(t, tx.Treasury().Hold(ctx, domain.MaxAmount))
		return tx.Treasury().Hold(ctx, 1)
	})
	require.ErrorIs(t, err, domain.ErrAmountOverflow)
}
