package core

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"TxnEngine/internal/event"
	"TxnEngine/internal/ledger"
	"TxnEngine/internal/observability"
)

// Ignore reasons, used as metric labels and debug log fields. A record
// that fails any precondition is dropped silently; the stream is never
// aborted by a stale or adversarial reference.
const (
	ReasonAccountLocked     = "account_locked"
	ReasonUnknownAccount    = "unknown_account"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonUnknownTx         = "unknown_tx"
	ReasonClientMismatch    = "client_mismatch"
	ReasonAlreadyDisputed   = "already_disputed"
	ReasonNotDisputed       = "not_disputed"
	ReasonUnknownKind       = "unknown_kind"
)

// Outcome reports what Apply did with a record.
type Outcome struct {
	Applied bool
	Reason  string // set when Applied is false
}

// AccountUpdate describes one account's state after an applied record.
type AccountUpdate struct {
	Record  event.Record       `json:"record"`
	Account ledger.AccountView `json:"account"`
}

// Engine is the single-threaded transaction processor. It owns the
// ledger and the deposit history for the duration of one run; nothing
// else writes to them. Records must be fed strictly in stream order.
type Engine struct {
	ledger    *ledger.Ledger
	history   *ledger.History
	validator *ledger.InvariantValidator
	metrics   *observability.Metrics
	log       zerolog.Logger

	// projectionChan uses a blocking send so the read side never
	// misses an update. publishChan drops on full: outbound
	// notifications are best-effort.
	projectionChan chan<- AccountUpdate
	publishChan    chan<- AccountUpdate

	applied int64
	ignored int64
}

// NewEngine creates an engine with fresh state. metrics and both
// channels may be nil; batch mode runs without a read side.
func NewEngine(log zerolog.Logger, metrics *observability.Metrics, projectionChan, publishChan chan<- AccountUpdate) *Engine {
	l := ledger.New()
	return &Engine{
		ledger:         l,
		history:        ledger.NewHistory(),
		validator:      ledger.NewInvariantValidator(l),
		metrics:        metrics,
		log:            log,
		projectionChan: projectionChan,
		publishChan:    publishChan,
	}
}

// Ledger exposes the final account state for the output boundary.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// History exposes the deposit index; read-only outside the engine.
func (e *Engine) History() *ledger.History {
	return e.history
}

// Applied returns the number of records that mutated state.
func (e *Engine) Applied() int64 {
	return e.applied
}

// Ignored returns the number of records dropped by a precondition.
func (e *Engine) Ignored() int64 {
	return e.ignored
}

// Apply processes one record. Business-rule violations never surface
// as errors: the record becomes a no-op and the outcome carries the
// reason. Apply never fails and never stops the stream.
func (e *Engine) Apply(rec event.Record) Outcome {
	start := time.Now()
	kind := rec.Kind.String()

	var out Outcome
	switch rec.Kind {
	case event.KindDeposit:
		out = e.applyDeposit(rec)
	case event.KindWithdrawal:
		out = e.applyWithdrawal(rec)
	case event.KindDispute:
		out = e.applyDispute(rec)
	case event.KindResolve:
		out = e.applyResolve(rec)
	case event.KindChargeback:
		out = e.applyChargeback(rec)
	default:
		out = Outcome{Reason: ReasonUnknownKind}
	}

	if out.Applied {
		if err := e.validator.ValidateAccount(rec.Client); err != nil {
			panic(fmt.Sprintf("FATAL: invariant violated after %s tx=%d: %v", kind, rec.Tx, err))
		}

		e.applied++
		e.emit(rec)

		e.log.Debug().
			Str("kind", kind).
			Uint16("client", rec.Client).
			Uint32("tx", rec.Tx).
			Msg("record applied")
	} else {
		e.ignored++

		e.log.Debug().
			Str("kind", kind).
			Uint16("client", rec.Client).
			Uint32("tx", rec.Tx).
			Str("reason", out.Reason).
			Msg("record ignored")
	}

	if e.metrics != nil {
		if out.Applied {
			e.metrics.RecordsApplied.WithLabelValues(kind).Inc()
		} else {
			e.metrics.RecordsIgnored.WithLabelValues(kind, out.Reason).Inc()
		}
		e.metrics.ApplyDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		e.metrics.AccountsOpen.Set(float64(e.ledger.Len()))
		e.metrics.HistoryEntries.Set(float64(e.history.Len()))
	}

	return out
}

// applyDeposit credits available funds and indexes the deposit for
// later dispute-family lookups. The account is created on first
// reference.
func (e *Engine) applyDeposit(rec event.Record) Outcome {
	acct := e.ledger.GetOrCreate(rec.Client)
	if acct.Locked {
		return Outcome{Reason: ReasonAccountLocked}
	}

	acct.Available = acct.Available.Add(rec.Amount)
	e.history.RecordDeposit(rec.Tx, rec.Client, rec.Amount)

	return Outcome{Applied: true}
}

// applyWithdrawal debits available funds. A withdrawal exceeding the
// available balance is a business no-op, not a failure; the zeroed
// account created on first reference still appears in the output.
func (e *Engine) applyWithdrawal(rec event.Record) Outcome {
	acct := e.ledger.GetOrCreate(rec.Client)
	if acct.Locked {
		return Outcome{Reason: ReasonAccountLocked}
	}
	if acct.Available.Cmp(rec.Amount) < 0 {
		return Outcome{Reason: ReasonInsufficientFunds}
	}

	acct.Available = acct.Available.Sub(rec.Amount)

	return Outcome{Applied: true}
}

// applyDispute moves the referenced deposit's amount from available to
// held. Disputes never create accounts: a reference to an unknown
// client, an unknown tx, a foreign tx, or an already-disputed tx is
// ignored.
func (e *Engine) applyDispute(rec event.Record) Outcome {
	acct := e.ledger.Get(rec.Client)
	if acct == nil {
		return Outcome{Reason: ReasonUnknownAccount}
	}
	if acct.Locked {
		return Outcome{Reason: ReasonAccountLocked}
	}

	entry := e.history.Lookup(rec.Tx)
	if entry == nil {
		return Outcome{Reason: ReasonUnknownTx}
	}
	if entry.Client != rec.Client {
		return Outcome{Reason: ReasonClientMismatch}
	}
	if entry.State != ledger.StateNormal {
		return Outcome{Reason: ReasonAlreadyDisputed}
	}

	acct.Available = acct.Available.Sub(entry.Amount)
	acct.Held = acct.Held.Add(entry.Amount)
	e.history.MarkDisputed(rec.Tx)

	return Outcome{Applied: true}
}

// applyResolve releases held funds back to available and returns the
// entry to the normal state, leaving it eligible for dispute again.
func (e *Engine) applyResolve(rec event.Record) Outcome {
	acct := e.ledger.Get(rec.Client)
	if acct == nil {
		return Outcome{Reason: ReasonUnknownAccount}
	}
	if acct.Locked {
		return Outcome{Reason: ReasonAccountLocked}
	}

	entry := e.history.Lookup(rec.Tx)
	if entry == nil {
		return Outcome{Reason: ReasonUnknownTx}
	}
	if entry.Client != rec.Client {
		return Outcome{Reason: ReasonClientMismatch}
	}
	if entry.State != ledger.StateDisputed {
		return Outcome{Reason: ReasonNotDisputed}
	}

	acct.Held = acct.Held.Sub(entry.Amount)
	acct.Available = acct.Available.Add(entry.Amount)
	e.history.MarkResolved(rec.Tx)

	return Outcome{Applied: true}
}

// applyChargeback withdraws the held funds and freezes the account.
// The lock is monotonic: every later record for this client is ignored.
func (e *Engine) applyChargeback(rec event.Record) Outcome {
	acct := e.ledger.Get(rec.Client)
	if acct == nil {
		return Outcome{Reason: ReasonUnknownAccount}
	}
	if acct.Locked {
		return Outcome{Reason: ReasonAccountLocked}
	}

	entry := e.history.Lookup(rec.Tx)
	if entry == nil {
		return Outcome{Reason: ReasonUnknownTx}
	}
	if entry.Client != rec.Client {
		return Outcome{Reason: ReasonClientMismatch}
	}
	if entry.State != ledger.StateDisputed {
		return Outcome{Reason: ReasonNotDisputed}
	}

	acct.Held = acct.Held.Sub(entry.Amount)
	acct.Locked = true
	e.history.MarkChargedBack(rec.Tx)

	if e.metrics != nil {
		e.metrics.AccountsLocked.Inc()
	}

	return Outcome{Applied: true}
}

// emit hands the mutated account to the read side. The projection send
// blocks so queries stay consistent with the core; the publish send
// drops on full because outbound notifications are best-effort.
func (e *Engine) emit(rec event.Record) {
	if e.projectionChan == nil && e.publishChan == nil {
		return
	}

	acct := e.ledger.Get(rec.Client)
	if acct == nil {
		return
	}

	update := AccountUpdate{Record: rec, Account: acct.View()}

	if e.projectionChan != nil {
		e.projectionChan <- update
	}

	if e.publishChan != nil {
		select {
		case e.publishChan <- update:
		default:
			if e.metrics != nil {
				e.metrics.PublishDrops.Inc()
			}
		}
	}
}
