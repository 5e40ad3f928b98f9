package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"TxnEngine/internal/event"
	"TxnEngine/internal/money"
)

// CSVReader streams transaction records from a delimited input in file
// order. The reader owns structural validation: a missing field, an
// unparsable amount, or an unknown kind is an error here, so the core
// only ever sees well-formed records.
//
// Expected header: type, client, tx, amount. Column order is free,
// kind names are case-insensitive, and whitespace around fields is
// ignored. The amount column is empty (or absent) for dispute-family
// rows.
type CSVReader struct {
	r    *csv.Reader
	line int

	typeCol   int
	clientCol int
	txCol     int
	amountCol int // -1 when the input has no amount column
}

func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Dispute-family rows may omit the trailing amount field entirely.
	cr.FieldsPerRecord = -1

	return &CSVReader{
		r:         cr,
		typeCol:   -1,
		clientCol: -1,
		txCol:     -1,
		amountCol: -1,
	}
}

// Next returns the next record in stream order, or io.EOF at end of
// input. Any other error is structural and should abort the run.
func (cr *CSVReader) Next() (event.Record, error) {
	if cr.line == 0 {
		if err := cr.readHeader(); err != nil {
			return event.Record{}, err
		}
	}

	row, err := cr.r.Read()
	if err != nil {
		if err == io.EOF {
			return event.Record{}, io.EOF
		}
		return event.Record{}, fmt.Errorf("line %d: %w", cr.line+1, err)
	}
	cr.line++

	return cr.parseRow(row)
}

func (cr *CSVReader) readHeader() error {
	header, err := cr.r.Read()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("read header: %w", err)
	}
	cr.line = 1

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cr.typeCol = i
		case "client":
			cr.clientCol = i
		case "tx":
			cr.txCol = i
		case "amount":
			cr.amountCol = i
		}
	}

	if cr.typeCol < 0 || cr.clientCol < 0 || cr.txCol < 0 {
		return fmt.Errorf("header missing required columns (type, client, tx): %v", header)
	}
	return nil
}

func (cr *CSVReader) parseRow(row []string) (event.Record, error) {
	field := func(col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	kind, ok := event.ParseKind(field(cr.typeCol))
	if !ok {
		return event.Record{}, fmt.Errorf("line %d: unknown transaction type %q", cr.line, field(cr.typeCol))
	}

	client, err := strconv.ParseUint(field(cr.clientCol), 10, 16)
	if err != nil {
		return event.Record{}, fmt.Errorf("line %d: invalid client id %q", cr.line, field(cr.clientCol))
	}

	tx, err := strconv.ParseUint(field(cr.txCol), 10, 32)
	if err != nil {
		return event.Record{}, fmt.Errorf("line %d: invalid tx id %q", cr.line, field(cr.txCol))
	}

	rec := event.Record{
		Kind:   kind,
		Client: uint16(client),
		Tx:     uint32(tx),
	}

	if kind.HasAmount() {
		raw := field(cr.amountCol)
		if raw == "" {
			return event.Record{}, fmt.Errorf("line %d: %s is missing an amount", cr.line, kind)
		}
		amount, err := money.Parse(raw)
		if err != nil {
			return event.Record{}, fmt.Errorf("line %d: %w", cr.line, err)
		}
		rec.Amount = amount
	}
	// Dispute-family rows reference a prior tx; any amount field is ignored.

	return rec, nil
}
