package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"fundraiser/internal/core/domain"
)

// eventLog implements port.EventLog on the campaign_events table. Sequence
// numbers come from a BIGSERIAL; writers hold the ledger lock, so commit
// order matches sequence order, though rolled back appends leave gaps.
type eventLog struct{ t *ledgerTx }

func (l eventLog) Append(ctx context.Context, e domain.Event) (int64, error) {
	if err := l.t.checkWritable(); err != nil {
		return 0, err
	}
	if err := bigint(e.Amount); err != nil {
		return 0, err
	}
	var seq int64
	err := l.t.tx.QueryRow(ctx, `INSERT INTO campaign_events (id, kind, campaign_id, actor, recipient, amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING seq`,
		e.ID, string(e.Kind), e.CampaignID, e.Actor.String(), e.Recipient.String(), e.Amount, e.CreatedAt).Scan(&seq)
	return seq, err
}

func (l eventLog) After(ctx context.Context, seq int64, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := l.t.tx.Query(ctx, `SELECT seq, id, kind, campaign_id, actor, recipient, amount, created_at
FROM campaign_events WHERE seq > $1 ORDER BY seq LIMIT $2`, seq, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var (
			e               domain.Event
			kind            string
			actor, receiver string
		)
		err := row.Scan(&e.Seq, &e.ID, &kind, &e.CampaignID, &actor, &receiver, &e.Amount, &e.CreatedAt)
		e.Kind = domain.EventKind(kind)
		e.Actor = domain.Address(actor)
		e.Recipient = domain.Address(receiver)
		return e, err
	})
}
