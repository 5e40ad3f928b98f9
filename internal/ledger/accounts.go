package ledger

import (
	"crypto/sha256"
	"sort"

	"TxnEngine/internal/money"
)

// Account is the mutable per-client state. Created zeroed on first
// deposit or withdrawal, never destroyed. Locked is monotonic: once
// set it is never cleared.
type Account struct {
	Client    uint16
	Available money.Amount
	Held      money.Amount
	Locked    bool
}

// Total returns available + held.
func (a *Account) Total() money.Amount {
	return a.Available.Add(a.Held)
}

// View returns an immutable copy of the account for read-side use.
func (a *Account) View() AccountView {
	return AccountView{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// AccountView is a point-in-time copy of account state, safe to hand
// to projections, publishers, and report writers.
type AccountView struct {
	Client    uint16       `json:"client"`
	Available money.Amount `json:"available"`
	Held      money.Amount `json:"held"`
	Total     money.Amount `json:"total"`
	Locked    bool         `json:"locked"`
}

// Ledger maps client ids to account state. Process-scoped, mutated
// only by the engine, read by the engine and the output boundary.
type Ledger struct {
	accounts map[uint16]*Account
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[uint16]*Account),
	}
}

// GetOrCreate returns the account for client, inserting a zeroed one
// if the client has never been seen. Never fails.
func (l *Ledger) GetOrCreate(client uint16) *Account {
	if acct, ok := l.accounts[client]; ok {
		return acct
	}
	acct := &Account{Client: client}
	l.accounts[client] = acct
	return acct
}

// Get returns the account for client, or nil if it does not exist.
// Used by dispute-family records, which must not create accounts.
func (l *Ledger) Get(client uint16) *Account {
	return l.accounts[client]
}

// Clients returns all known client ids in ascending order.
func (l *Ledger) Clients() []uint16 {
	clients := make([]uint16, 0, len(l.accounts))
	for client := range l.accounts {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })
	return clients
}

// Len returns the number of accounts.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Digest returns a SHA-256 over the canonical ledger bytes. Two runs
// over the same input stream must produce identical digests.
func (l *Ledger) Digest() [32]byte {
	clients := l.Clients()
	buf := make([]byte, 0, len(clients)*19)

	for _, client := range clients {
		acct := l.accounts[client]
		buf = append(buf, byte(client>>8), byte(client))
		buf = appendInt64LE(buf, int64(acct.Available))
		buf = appendInt64LE(buf, int64(acct.Held))
		if acct.Locked {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}

	return sha256.Sum256(buf)
}

func appendInt64LE(buf []byte, v int64) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
		byte(v>>32),
		byte(v>>40),
		byte(v>>48),
		byte(v>>56),
	)
}
