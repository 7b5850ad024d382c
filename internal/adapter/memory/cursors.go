package memory

import "context"

type cursorRepo struct{ tx *ledgerTx }

func (r cursorRepo) Get(_ context.Context, name string) (int64, error) {
	seq, _ := lookup(r.tx.cursors, r.tx.base.cursors, name)
	return seq, nil
}

func (r cursorRepo) Set(_ context.Context, name string, seq int64) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	r.tx.cursors[name] = seq
	return nil
}
