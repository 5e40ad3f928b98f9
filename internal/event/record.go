package event

import (
	"strings"

	"TxnEngine/internal/money"
)

// Kind discriminates transaction record types.
type Kind int32

const (
	KindUnknown Kind = iota
	KindDeposit
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// HasAmount reports whether records of this kind carry their own amount.
// Dispute-family kinds reference a prior deposit instead.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ParseKind maps a wire name to a Kind. Names are matched
// case-insensitively with surrounding whitespace ignored.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return KindDeposit, true
	case "withdrawal":
		return KindWithdrawal, true
	case "dispute":
		return KindDispute, true
	case "resolve":
		return KindResolve, true
	case "chargeback":
		return KindChargeback, true
	default:
		return KindUnknown, false
	}
}

// Record is one immutable input event. Tx identifies the record itself
// for deposits and withdrawals, and references a prior deposit for
// dispute-family kinds. Amount is zero for kinds that carry none.
type Record struct {
	Kind   Kind
	Client uint16
	Tx     uint32
	Amount money.Amount
}
