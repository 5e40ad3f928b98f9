package ledger

import "TxnEngine/internal/money"

// DisputeState tracks where a deposit sits in the dispute lifecycle.
type DisputeState int32

const (
	// StateNormal: not under dispute. A resolved entry returns here and
	// is eligible for dispute again.
	StateNormal DisputeState = iota
	StateDisputed
	StateChargedBack
)

func (s DisputeState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDisputed:
		return "disputed"
	case StateChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// HistoryEntry caches a posted deposit: the owning client, the original
// amount, and the current dispute state. Entries are never deleted.
type HistoryEntry struct {
	Client uint16
	Amount money.Amount
	State  DisputeState
}

// History is the append-only index of posted deposits by tx id.
// Withdrawals are not recorded: disputes always resolve against a
// prior deposit amount. State transitions here are unconditional
// writes; the guard logic lives in the engine's rule table.
type History struct {
	entries map[uint32]*HistoryEntry
}

func NewHistory() *History {
	return &History{
		entries: make(map[uint32]*HistoryEntry),
	}
}

// RecordDeposit inserts or overwrites the entry for tx (last write
// wins). Always succeeds.
func (h *History) RecordDeposit(tx uint32, client uint16, amount money.Amount) {
	h.entries[tx] = &HistoryEntry{
		Client: client,
		Amount: amount,
		State:  StateNormal,
	}
}

// Lookup returns the entry for tx, or nil if tx was never deposited.
func (h *History) Lookup(tx uint32) *HistoryEntry {
	return h.entries[tx]
}

// MarkDisputed moves the entry for tx under dispute.
func (h *History) MarkDisputed(tx uint32) {
	if entry := h.entries[tx]; entry != nil {
		entry.State = StateDisputed
	}
}

// MarkResolved returns the entry for tx to the normal state.
func (h *History) MarkResolved(tx uint32) {
	if entry := h.entries[tx]; entry != nil {
		entry.State = StateNormal
	}
}

// MarkChargedBack finalizes the dispute for tx.
func (h *History) MarkChargedBack(tx uint32) {
	if entry := h.entries[tx]; entry != nil {
		entry.State = StateChargedBack
	}
}

// Len returns the number of cached deposits.
func (h *History) Len() int {
	return len(h.entries)
}
