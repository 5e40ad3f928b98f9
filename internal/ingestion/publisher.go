package ingestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"TxnEngine/internal/core"
)

// AccountPublisher pushes account updates to NATS for downstream
// consumers. Subjects follow the pattern txn.accounts.updated.{client}.
// Publishing is best-effort: a failed publish is logged and dropped,
// never fed back into the core.
type AccountPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan core.AccountUpdate
	log       zerolog.Logger
}

func NewAccountPublisher(js jetstream.JetStream, inputChan <-chan core.AccountUpdate, log zerolog.Logger) *AccountPublisher {
	return &AccountPublisher{
		js:        js,
		inputChan: inputChan,
		log:       log,
	}
}

// Run drains the input channel until it is closed.
func (ap *AccountPublisher) Run(ctx context.Context) {
	for update := range ap.inputChan {
		if err := ap.publish(ctx, update); err != nil {
			ap.log.Warn().
				Err(err).
				Uint16("client", update.Account.Client).
				Msg("account update publish failed")
		}
	}
}

func (ap *AccountPublisher) publish(ctx context.Context, update core.AccountUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	subject := fmt.Sprintf("txn.accounts.updated.%d", update.Account.Client)
	_, err = ap.js.Publish(ctx, subject, data)
	return err
}

// EnsureAccountStream creates the outbound account update stream.
func EnsureAccountStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              "TXN_ACCOUNTS",
		Subjects:          []string{"txn.accounts.updated.>"},
		Storage:           jetstream.FileStorage,
		MaxMsgsPerSubject: 1, // only the latest state per client matters
	})
	if err != nil {
		return fmt.Errorf("create account stream: %w", err)
	}
	return nil
}
