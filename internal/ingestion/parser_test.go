package ingestion_test

import (
	"testing"

	"github.com/google/uuid"

	"TxnEngine/internal/event"
	"TxnEngine/internal/ingestion"
	"TxnEngine/internal/money"
)

func rawRecord(data string) ingestion.RawRecord {
	return ingestion.RawRecord{
		Subject: "txn.records.test",
		Data:    []byte(data),
	}
}

func TestParseRawRecord_Deposit(t *testing.T) {
	raw := rawRecord(`{"record_id":"b3f1c1d2-9a7e-4f7b-8c3d-1e2f3a4b5c6d","type":"deposit","client":1,"tx":42,"amount":"5.0"}`)

	rec, key, err := ingestion.ParseRawRecord(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if key != "b3f1c1d2-9a7e-4f7b-8c3d-1e2f3a4b5c6d" {
		t.Errorf("key: got %q", key)
	}
	if rec.Kind != event.KindDeposit || rec.Client != 1 || rec.Tx != 42 {
		t.Errorf("record: %+v", rec)
	}
	if rec.Amount != money.MustParse("5.0") {
		t.Errorf("amount: got %s, want 5.0000", rec.Amount)
	}
}

func TestParseRawRecord_DisputeWithoutAmount(t *testing.T) {
	raw := rawRecord(`{"type":"dispute","client":1,"tx":42}`)

	rec, _, err := ingestion.ParseRawRecord(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.Kind != event.KindDispute || rec.Amount != money.Zero {
		t.Errorf("record: %+v", rec)
	}
}

func TestParseRawRecord_MissingRecordIDGetsFreshKey(t *testing.T) {
	raw := rawRecord(`{"type":"deposit","client":1,"tx":1,"amount":"1.0"}`)

	_, key1, err := ingestion.ParseRawRecord(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := uuid.Parse(key1); err != nil {
		t.Errorf("generated key should be a valid UUID: %q", key1)
	}

	_, key2, _ := ingestion.ParseRawRecord(raw)
	if key1 == key2 {
		t.Error("generated keys must be unique per message")
	}
}

func TestParseRawRecord_Errors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"bad record_id", `{"record_id":"not-a-uuid","type":"deposit","client":1,"tx":1,"amount":"1.0"}`},
		{"unknown type", `{"type":"transfer","client":1,"tx":1,"amount":"1.0"}`},
		{"deposit without amount", `{"type":"deposit","client":1,"tx":1}`},
		{"withdrawal without amount", `{"type":"withdrawal","client":1,"tx":1}`},
		{"negative amount", `{"type":"deposit","client":1,"tx":1,"amount":"-1.0"}`},
		{"too many decimals", `{"type":"deposit","client":1,"tx":1,"amount":"1.00001"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ingestion.ParseRawRecord(rawRecord(tc.data)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}
