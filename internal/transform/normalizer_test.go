package transform

import (
	"testing"
	"time"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

var testLoadTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// TestNormalize_FullScenario walks the reference record through the whole
// chain: empty id, padded product name, decimal price, noisy shipping string,
// and a day/month/year purchase date.
func TestNormalize_FullScenario(t *testing.T) {
	t.Parallel()

	raw := records.Record{
		"id":             "",
		"Produto":        " Mouse ",
		"Preço":          "49.9",
		"Frete":          "R$ 7,50 frete",
		"Data da Compra": "05/03/2024",
	}

	got := NewNormalizer().Normalize(raw, testLoadTime)

	if got[ColProductID] != nil {
		t.Errorf("product_id = %v, want nil for empty source id", got[ColProductID])
	}
	if got[ColProductName] != "mouse" {
		t.Errorf("product_name = %v, want %q", got[ColProductName], "mouse")
	}
	if got[ColPriceCents] != int64(4990) {
		t.Errorf("price_cents = %v, want 4990", got[ColPriceCents])
	}
	// "R$ 7,50 frete" has the numeric run "7" before the comma.
	if got[ColShippingCostCents] != int64(700) {
		t.Errorf("shipping_cost_cents = %v, want 700", got[ColShippingCostCents])
	}
	wantDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if d, ok := got[ColPurchaseDate].(time.Time); !ok || !d.Equal(wantDate) {
		t.Errorf("purchase_date = %v, want %v", got[ColPurchaseDate], wantDate)
	}

	// Unset fields take their sentinel defaults.
	if got[ColCategoryName] != "outros" {
		t.Errorf("category_name = %v, want default %q", got[ColCategoryName], "outros")
	}
	if got[ColSellerName] != "vendedor desconhecido" {
		t.Errorf("seller_name = %v, want default", got[ColSellerName])
	}
	if got[ColPurchaseLocationCode] != "n/a" {
		t.Errorf("purchase_location_code = %v, want default", got[ColPurchaseLocationCode])
	}
	if got[ColPaymentType] != "não especificado" {
		t.Errorf("payment_type = %v, want default", got[ColPaymentType])
	}
	for _, nullable := range []string{ColPurchaseRating, ColInstallmentsQuantity, ColLatitude, ColLongitude} {
		if got[nullable] != nil {
			t.Errorf("%s = %v, want nil default", nullable, got[nullable])
		}
	}
	if ts, ok := got[ColETLLoadTimestamp].(time.Time); !ok || !ts.Equal(testLoadTime) {
		t.Errorf("etl_load_timestamp = %v, want batch time %v", got[ColETLLoadTimestamp], testLoadTime)
	}
}

// TestNormalize_AllKeysAlwaysPresent asserts the fourteen-key invariant for a
// worst-case record where every source field is missing or malformed.
func TestNormalize_AllKeysAlwaysPresent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  records.Record
	}{
		{"empty_record", records.Record{}},
		{"all_malformed", records.Record{
			"id":                     "",
			"Preço":                  "caro",
			"Frete":                  "grátis",
			"Data da Compra":         "ontem",
			"Avaliação da compra":    "boa",
			"Quantidade de parcelas": "muitas",
			"lat":                    "norte",
			"lon":                    "oeste",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewNormalizer().Normalize(tc.raw, testLoadTime)
			if len(got) != len(Columns) {
				t.Fatalf("canonical record has %d keys, want %d: %v", len(got), len(Columns), got)
			}
			for _, c := range Columns {
				if _, ok := got[c]; !ok {
					t.Errorf("missing canonical key %q", c)
				}
			}
			for _, numeric := range []string{ColPriceCents, ColShippingCostCents, ColPurchaseDate, ColPurchaseRating, ColInstallmentsQuantity, ColLatitude, ColLongitude} {
				if got[numeric] != nil {
					t.Errorf("%s = %v, want nil for malformed input", numeric, got[numeric])
				}
			}
		})
	}
}

// TestNormalize_IdentifierHandling: absent/empty ids map to nil, everything
// else is stringified.
func TestNormalize_IdentifierHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   any
		want any
	}{
		{"missing", nil, nil},
		{"empty_string", "", nil},
		{"plain_string", "abc-1", "abc-1"},
		{"numeric_id", 42, "42"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := records.Record{}
			if tc.id != nil {
				raw["id"] = tc.id
			}
			got := NewNormalizer().Normalize(raw, testLoadTime)
			if got[ColProductID] != tc.want {
				t.Fatalf("product_id = %v, want %v", got[ColProductID], tc.want)
			}
		})
	}
}

// TestNormalize_TextFields checks lower-casing, trimming, and stringification
// of the five text fields, including accented Portuguese input.
func TestNormalize_TextFields(t *testing.T) {
	t.Parallel()

	raw := records.Record{
		"Produto":              "  GELADEIRA FROST FREE  ",
		"Categoria do Produto": "Eletrodomésticos",
		"Vendedor":             "LOJA OFICIAL",
		"Local da compra":      " SP ",
		"Tipo de pagamento":    "CARTÃO DE CRÉDITO",
	}
	got := NewNormalizer().Normalize(raw, testLoadTime)

	want := map[string]string{
		ColProductName:          "geladeira frost free",
		ColCategoryName:         "eletrodomésticos",
		ColSellerName:           "loja oficial",
		ColPurchaseLocationCode: "sp",
		ColPaymentType:          "cartão de crédito",
	}
	for field, w := range want {
		if got[field] != w {
			t.Errorf("%s = %q, want %q", field, got[field], w)
		}
	}

	// Non-string text values are stringified before normalization.
	got = NewNormalizer().Normalize(records.Record{"Local da compra": 11}, testLoadTime)
	if got[ColPurchaseLocationCode] != "11" {
		t.Errorf("stringified location = %v, want %q", got[ColPurchaseLocationCode], "11")
	}
}

// TestNormalize_GeoAndRating covers the float and integer coercion wiring.
func TestNormalize_GeoAndRating(t *testing.T) {
	t.Parallel()

	raw := records.Record{
		"lat":                    "-23.55",
		"lon":                    -46.63,
		"Avaliação da compra":    "4",
		"Quantidade de parcelas": 3,
	}
	got := NewNormalizer().Normalize(raw, testLoadTime)

	if got[ColLatitude] != -23.55 {
		t.Errorf("latitude = %v, want -23.55", got[ColLatitude])
	}
	if got[ColLongitude] != -46.63 {
		t.Errorf("longitude = %v, want -46.63", got[ColLongitude])
	}
	if got[ColPurchaseRating] != int64(4) {
		t.Errorf("purchase_rating = %v, want 4", got[ColPurchaseRating])
	}
	if got[ColInstallmentsQuantity] != int64(3) {
		t.Errorf("installments_quantity = %v, want 3", got[ColInstallmentsQuantity])
	}
}

// TestNormalize_IntermediateKeysNeverLeak asserts that renamed raw keys are
// consumed by coercion and absent from the canonical record.
func TestNormalize_IntermediateKeysNeverLeak(t *testing.T) {
	t.Parallel()

	raw := records.Record{
		"Preço":          "10.0",
		"Frete":          "2.5",
		"Data da Compra": "01/01/2024",
		"lat":            "1.0",
		"lon":            "2.0",
	}
	got := NewNormalizer().Normalize(raw, testLoadTime)
	for _, k := range []string{keyRawPrice, keyRawShipping, keyRawPurchaseDate, keyRawRating, keyRawInstallments, keyRawLatitude, keyRawLongitude} {
		if _, ok := got[k]; ok {
			t.Errorf("intermediate key %q leaked into canonical record", k)
		}
	}
}
