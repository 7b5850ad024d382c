package memory

import (
	"context"
	"maps"
	"sync"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

// Store implements port.Store in process memory. A unit of work stages its
// writes in an overlay on top of the committed state and merges them on
// success, so a failed call leaves nothing behind and the cost of a call
// does not depend on the size of the ledger.
type Store struct {
	writeMu sync.Mutex // one unit of work at a time

	mu        sync.RWMutex // held by readers, and by the writer while merging
	committed *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{committed: newState()}
}

// InTx implements port.Store.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	// committed only changes under writeMu, so the staging phase reads it
	// without s.mu
	tx := newWriteTx(s.committed)
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	tx.merge(s.committed)
	s.mu.Unlock()
	return nil
}

// View implements port.Store. Readers only wait for the merge of a finished
// unit of work, never for one still staging.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, newReadTx(s.committed))
}

type account struct {
	balance  uint64
	refusing bool
}

type state struct {
	lastID    uint64
	escrow    uint64
	campaigns map[uint64]domain.Campaign
	certs     map[uint64]domain.Certificate
	holdings  map[domain.Address]uint64
	accounts  map[domain.Address]account
	cursors   map[string]int64
	// events may have spare capacity holding appends of rolled back units;
	// nothing reads past len.
	events []domain.Event
}

func newState() *state {
	return &state{
		campaigns: make(map[uint64]domain.Campaign),
		certs:     make(map[uint64]domain.Certificate),
		holdings:  make(map[domain.Address]uint64),
		accounts:  make(map[domain.Address]account),
		cursors:   make(map[string]int64),
	}
}

// ledgerTx reads through its overlay to the committed base. Read-only
// transactions carry nil overlays.
type ledgerTx struct {
	base     *state
	writable bool

	lastID    uint64
	escrow    uint64
	campaigns map[uint64]domain.Campaign
	certs     map[uint64]domain.Certificate
	holdings  map[domain.Address]uint64
	accounts  map[domain.Address]account
	cursors   map[string]int64
	events    []domain.Event
}

func newReadTx(base *state) *ledgerTx {
	return &ledgerTx{base: base, lastID: base.lastID, escrow: base.escrow, events: base.events}
}

func newWriteTx(base *state) *ledgerTx {
	tx := newReadTx(base)
	tx.writable = true
	tx.campaigns = make(map[uint64]domain.Campaign)
	tx.certs = make(map[uint64]domain.Certificate)
	tx.holdings = make(map[domain.Address]uint64)
	tx.accounts = make(map[domain.Address]account)
	tx.cursors = make(map[string]int64)
	return tx
}

// merge applies the staged writes to base. Callers hold the store's write
// lock.
func (tx *ledgerTx) merge(base *state) {
	base.lastID = tx.lastID
	base.escrow = tx.escrow
	maps.Copy(base.campaigns, tx.campaigns)
	maps.Copy(base.certs, tx.certs)
	maps.Copy(base.accounts, tx.accounts)
	maps.Copy(base.cursors, tx.cursors)
	for addr, n := range tx.holdings {
		if n == 0 {
			delete(base.holdings, addr)
			continue
		}
		base.holdings[addr] = n
	}
	base.events = tx.events
}

func lookup[K comparable, V any](overlay, base map[K]V, k K) (V, bool) {
	if v, ok := overlay[k]; ok {
		return v, true
	}
	v, ok := base[k]
	return v, ok
}

func (tx *ledgerTx) campaign(id uint64) (domain.Campaign, bool) {
	return lookup(tx.campaigns, tx.base.campaigns, id)
}

func (tx *ledgerTx) cert(id uint64) (domain.Certificate, bool) {
	return lookup(tx.certs, tx.base.certs, id)
}

func (tx *ledgerTx) holding(addr domain.Address) uint64 {
	n, _ := lookup(tx.holdings, tx.base.holdings, addr)
	return n
}

func (tx *ledgerTx) account(addr domain.Address) account {
	acc, _ := lookup(tx.accounts, tx.base.accounts, addr)
	return acc
}

func (tx *ledgerTx) Campaigns() port.CampaignRepository { return campaignRepo{tx} }
func (tx *ledgerTx) Registry() port.OwnershipRegistry   { return registry{tx} }
func (tx *ledgerTx) Treasury() port.Treasury            { return treasury{tx} }
func (tx *ledgerTx) Events() port.EventLog              { return eventLog{tx} }
func (tx *ledgerTx) Cursors() port.CursorRepository     { return cursorRepo{tx} }

func (tx *ledgerTx) checkWritable() error {
	if !tx.writable {
		return port.ErrReadOnly
	}
	return nil
}
