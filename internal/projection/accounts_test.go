package projection_test

import (
	"testing"

	"TxnEngine/internal/core"
	"TxnEngine/internal/event"
	"TxnEngine/internal/ledger"
	"TxnEngine/internal/money"
	"TxnEngine/internal/projection"
)

func update(client uint16, tx uint32, available string) core.AccountUpdate {
	return core.AccountUpdate{
		Record: event.Record{Kind: event.KindDeposit, Client: client, Tx: tx},
		Account: ledger.AccountView{
			Client:    client,
			Available: money.MustParse(available),
			Total:     money.MustParse(available),
		},
	}
}

func TestAccountProjection(t *testing.T) {
	p := projection.NewAccountProjection()
	ch := make(chan core.AccountUpdate)

	done := make(chan struct{})
	go func() {
		p.Run(ch)
		close(done)
	}()

	ch <- update(2, 1, "1.0")
	ch <- update(1, 2, "5.0")
	ch <- update(2, 3, "7.5")
	close(ch)
	<-done

	if p.Applied() != 3 {
		t.Errorf("applied: got %d, want 3", p.Applied())
	}

	view, ok := p.Get(2)
	if !ok {
		t.Fatal("client 2 should be projected")
	}
	if view.Available != money.MustParse("7.5") {
		t.Errorf("client 2 available: got %s, want 7.5000 (latest update wins)", view.Available)
	}

	if _, ok := p.Get(99); ok {
		t.Error("unseen client should not be projected")
	}

	views := p.List()
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if views[0].Client != 1 || views[1].Client != 2 {
		t.Errorf("views should be sorted by client: %+v", views)
	}
}
