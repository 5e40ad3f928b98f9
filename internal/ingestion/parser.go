package ingestion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TxnEngine/internal/event"
	"TxnEngine/internal/money"
)

// RawRecord is the parsed-but-untyped message from NATS, ready to be
// validated and converted into a core record.
type RawRecord struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	AckFunc   func() // Call to ACK the message after processing
	NakFunc   func() // Call to NAK on failure (will be redelivered)
}

// recordJSON is the wire format on txn.records.>. Field names match
// the batch CSV columns; record_id is an optional upstream UUID used
// for redelivery deduplication.
type recordJSON struct {
	RecordID string `json:"record_id,omitempty"`
	Type     string `json:"type"`
	Client   uint16 `json:"client"`
	Tx       uint32 `json:"tx"`
	Amount   string `json:"amount,omitempty"`
}

// ParseRawRecord converts a RawRecord into a core record plus its
// idempotency key. A message without a record_id gets a fresh UUID,
// which means it is never deduplicated — safe, since dedup exists only
// to absorb JetStream redeliveries of keyed messages.
func ParseRawRecord(raw RawRecord) (event.Record, string, error) {
	var j recordJSON
	if err := json.Unmarshal(raw.Data, &j); err != nil {
		return event.Record{}, "", fmt.Errorf("parse record: %w", err)
	}

	key := j.RecordID
	if key == "" {
		key = uuid.New().String()
	} else if _, err := uuid.Parse(key); err != nil {
		return event.Record{}, "", fmt.Errorf("parse record_id: %w", err)
	}

	kind, ok := event.ParseKind(j.Type)
	if !ok {
		return event.Record{}, "", fmt.Errorf("unknown transaction type: %q", j.Type)
	}

	rec := event.Record{
		Kind:   kind,
		Client: j.Client,
		Tx:     j.Tx,
	}

	if kind.HasAmount() {
		if j.Amount == "" {
			return event.Record{}, "", fmt.Errorf("%s is missing an amount", kind)
		}
		amount, err := money.Parse(j.Amount)
		if err != nil {
			return event.Record{}, "", err
		}
		rec.Amount = amount
	}

	return rec, key, nil
}
