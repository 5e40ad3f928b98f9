package report_test

import (
	"bytes"
	"testing"

	"TxnEngine/internal/ledger"
	"TxnEngine/internal/money"
	"TxnEngine/internal/report"
)

func TestWriteAccounts(t *testing.T) {
	l := ledger.New()

	a := l.GetOrCreate(2)
	a.Available = money.MustParse("1.5")

	b := l.GetOrCreate(1)
	b.Available = money.MustParse("2.0")
	b.Held = money.MustParse("3.0")
	b.Locked = true

	var buf bytes.Buffer
	if err := report.WriteAccounts(&buf, l); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "client,available,held,total,locked\n" +
		"1,2.0000,3.0000,5.0000,true\n" +
		"2,1.5000,0.0000,1.5000,false\n"
	if buf.String() != want {
		t.Errorf("output mismatch:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteAccounts_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteAccounts(&buf, ledger.New()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "client,available,held,total,locked\n" {
		t.Errorf("empty ledger should produce header only, got:\n%s", buf.String())
	}
}
