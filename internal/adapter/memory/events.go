package memory

import (
	"context"
	"sort"

	"fundraiser/internal/core/domain"
)

type eventLog struct{ tx *ledgerTx }

// Append writes into the shared backing array past the committed length;
// readers of the committed state never look there.
func (l eventLog) Append(_ context.Context, e domain.Event) (int64, error) {
	if err := l.tx.checkWritable(); err != nil {
		return 0, err
	}
	e.Seq = int64(len(l.tx.events)) + 1
	l.tx.events = append(l.tx.events, e)
	return e.Seq, nil
}

func (l eventLog) After(_ context.Context, seq int64, limit int) ([]domain.Event, error) {
	events := l.tx.events
	start := sort.Search(len(events), func(i int) bool { return events[i].Seq > seq })
	end := len(events)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]domain.Event, end-start)
	copy(out, events[start:end])
	return out, nil
}
