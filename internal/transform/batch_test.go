package transform

import (
	"testing"
	"time"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// TestBatchTransform_EmptyInput: transform([]) == [] without error.
func TestBatchTransform_EmptyInput(t *testing.T) {
	t.Parallel()

	b := NewBatch()
	if got := b.Transform(nil); len(got) != 0 {
		t.Fatalf("Transform(nil) = %v, want empty", got)
	}
	if got := b.Transform([]records.Record{}); len(got) != 0 {
		t.Fatalf("Transform(empty) = %v, want empty", got)
	}
}

// TestBatchTransform_OrderPreserved: output[i] corresponds to input[i].
func TestBatchTransform_OrderPreserved(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"id": "a", "Produto": "Mouse"},
		{"id": "b", "Produto": "Teclado"},
		{"id": "c", "Produto": "Monitor"},
	}
	out := NewBatch().Transform(in)
	if len(out) != len(in) {
		t.Fatalf("got %d records, want %d", len(out), len(in))
	}
	for i, want := range []string{"a", "b", "c"} {
		if out[i][ColProductID] != want {
			t.Errorf("out[%d].product_id = %v, want %q", i, out[i][ColProductID], want)
		}
	}
}

// TestBatchTransform_DoesNotMutateInput: the caller-supplied batch must be
// byte-for-byte untouched after transformation.
func TestBatchTransform_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"id": "x", "Produto": " Mouse ", "Preço": "49.9"},
	}
	NewBatch().Transform(in)

	if in[0]["Produto"] != " Mouse " {
		t.Errorf("input product mutated: %v", in[0]["Produto"])
	}
	if in[0]["Preço"] != "49.9" {
		t.Errorf("input price mutated: %v", in[0]["Preço"])
	}
	if _, ok := in[0][ColPriceCents]; ok {
		t.Errorf("canonical key leaked into caller-owned record")
	}
}

// TestBatchTransform_SharedTimestamp: one capture time for the whole batch,
// not per-record wall clock.
func TestBatchTransform_SharedTimestamp(t *testing.T) {
	t.Parallel()

	b := NewBatch()
	fixed := time.Date(2024, 6, 1, 3, 4, 5, 0, time.UTC)
	calls := 0
	b.now = func() time.Time {
		calls++
		return fixed.Add(time.Duration(calls) * time.Second)
	}

	out := b.Transform([]records.Record{{"id": "1"}, {"id": "2"}, {"id": "3"}})
	if calls != 1 {
		t.Fatalf("clock read %d times, want once per batch", calls)
	}
	want := fixed.Add(time.Second)
	for i, r := range out {
		if ts := r[ColETLLoadTimestamp].(time.Time); !ts.Equal(want) {
			t.Errorf("record %d timestamp = %v, want shared %v", i, ts, want)
		}
	}
}

// TestBatchTransform_BadRecordDoesNotAffectOthers mirrors the staging
// scenario: three valid records plus one malformed date produce four records,
// with only the malformed one carrying a nil purchase_date.
func TestBatchTransform_BadRecordDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"id": "1", "Data da Compra": "01/01/2024"},
		{"id": "2", "Data da Compra": "02/01/2024"},
		{"id": "3", "Data da Compra": "31/02/2024"}, // no such day
		{"id": "4", "Data da Compra": "04/01/2024"},
	}
	out := NewBatch().Transform(in)
	if len(out) != 4 {
		t.Fatalf("got %d records, want 4", len(out))
	}
	if out[2][ColPurchaseDate] != nil {
		t.Errorf("malformed date should be nil, got %v", out[2][ColPurchaseDate])
	}
	for _, i := range []int{0, 1, 3} {
		if _, ok := out[i][ColPurchaseDate].(time.Time); !ok {
			t.Errorf("record %d lost its valid date: %v", i, out[i][ColPurchaseDate])
		}
	}
}
