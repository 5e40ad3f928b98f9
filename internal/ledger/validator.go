package ledger

import (
	"fmt"

	"TxnEngine/internal/money"
)

// InvariantValidator checks account invariants after each applied
// record. With clamping arithmetic and the engine's precondition
// guards these checks can only fail on a programming error.
type InvariantValidator struct {
	ledger *Ledger
}

func NewInvariantValidator(l *Ledger) *InvariantValidator {
	return &InvariantValidator{ledger: l}
}

// ValidateAccount verifies available >= 0, held >= 0, and
// total == available + held for one client.
func (v *InvariantValidator) ValidateAccount(client uint16) error {
	acct := v.ledger.Get(client)
	if acct == nil {
		return nil
	}

	if acct.Available < money.Zero {
		return fmt.Errorf("client %d has negative available balance: %s", client, acct.Available)
	}
	if acct.Held < money.Zero {
		return fmt.Errorf("client %d has negative held balance: %s", client, acct.Held)
	}
	if acct.Total() != acct.Available.Add(acct.Held) {
		return fmt.Errorf("client %d total diverged from available + held", client)
	}

	return nil
}

// ValidateAll runs ValidateAccount over every known client.
func (v *InvariantValidator) ValidateAll() error {
	for _, client := range v.ledger.Clients() {
		if err := v.ValidateAccount(client); err != nil {
			return err
		}
	}
	return nil
}
