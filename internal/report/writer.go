package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"TxnEngine/internal/ledger"
)

// WriteAccounts renders the final ledger as CSV: one row per client
// that appeared, amounts fixed to 4 decimal places, total derived as
// available + held. Rows are sorted by client id so batch output is
// reproducible byte for byte.
func WriteAccounts(w io.Writer, l *ledger.Ledger) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, client := range l.Clients() {
		acct := l.Get(client)
		row := []string{
			strconv.FormatUint(uint64(client), 10),
			acct.Available.String(),
			acct.Held.String(),
			acct.Total().String(),
			strconv.FormatBool(acct.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
