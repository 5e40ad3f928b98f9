package projection

import (
	"sort"
	"sync"
	"sync/atomic"

	"TxnEngine/internal/core"
	"TxnEngine/internal/ledger"
)

// AccountProjection maintains a read-side copy of account state, fed
// by the engine's projection channel. Queries read this copy and never
// touch core state, so the engine stays free of locks.
type AccountProjection struct {
	mu       sync.RWMutex
	accounts map[uint16]ledger.AccountView
	applied  atomic.Int64
}

func NewAccountProjection() *AccountProjection {
	return &AccountProjection{
		accounts: make(map[uint16]ledger.AccountView),
	}
}

// Run consumes updates until the channel is closed. The engine blocks
// on this channel, so the worker must keep draining for the core to
// make progress.
func (p *AccountProjection) Run(updates <-chan core.AccountUpdate) {
	for update := range updates {
		p.mu.Lock()
		p.accounts[update.Account.Client] = update.Account
		p.mu.Unlock()
		p.applied.Add(1)
	}
}

// Get returns the projected state for one client.
func (p *AccountProjection) Get(client uint16) (ledger.AccountView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	view, ok := p.accounts[client]
	return view, ok
}

// List returns all projected accounts sorted by client id.
func (p *AccountProjection) List() []ledger.AccountView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	views := make([]ledger.AccountView, 0, len(p.accounts))
	for _, view := range p.accounts {
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Client < views[j].Client })
	return views
}

// Applied returns how many updates this projection has absorbed, used
// as the freshness watermark in query responses.
func (p *AccountProjection) Applied() int64 {
	return p.applied.Load()
}
