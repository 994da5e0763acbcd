package rawstore

import (
	"context"
	"testing"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

func TestFingerprintStableAcrossKeyOrder(t *testing.T) {
	t.Parallel()

	a := []records.Record{{"Produto": "Mouse", "Preço": 49.9, "Vendedor": "Ana"}}
	b := []records.Record{{"Vendedor": "Ana", "Preço": 49.9, "Produto": "Mouse"}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint differs for identical content with different key order")
	}
}

func TestFingerprintSensitiveToContent(t *testing.T) {
	t.Parallel()

	base := []records.Record{{"Produto": "Mouse", "Preço": 49.9}}
	changed := []records.Record{{"Produto": "Mouse", "Preço": 50.0}}

	if Fingerprint(base) == Fingerprint(changed) {
		t.Error("fingerprint identical despite different content")
	}
}

func TestFingerprintSensitiveToRecordBoundaries(t *testing.T) {
	t.Parallel()

	one := []records.Record{{"a": "1"}, {"b": "2"}}
	other := []records.Record{{"a": "1", "b": "2"}}

	if Fingerprint(one) == Fingerprint(other) {
		t.Error("fingerprint identical despite different record boundaries")
	}
}

func TestFingerprintEmptyBatch(t *testing.T) {
	t.Parallel()

	if Fingerprint(nil) != Fingerprint([]records.Record{}) {
		t.Error("nil and empty batches should fingerprint identically")
	}
}

func TestConnectValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty uri", Config{Database: "etl", Collection: "raw"}},
		{"empty database", Config{URI: "mongodb://localhost:27017", Collection: "raw"}},
		{"empty collection", Config{URI: "mongodb://localhost:27017", Database: "etl"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Connect(context.Background(), tc.cfg); err == nil {
				t.Error("Connect() error = nil, want validation failure")
			}
		})
	}
}
