// Package transform reshapes raw sale records pulled from the upstream API
// into the canonical staging layout. The normalizer never fails a record:
// malformed values degrade to NULL or a named sentinel default and are logged,
// so one bad record can never halt a batch.
package transform

import "github.com/esscova/ecommerce-data-pipeline/pkg/records"

// Canonical field names. Every normalized record carries exactly these
// fourteen keys; absent or invalid source data becomes an explicit nil or a
// sentinel default, never a missing key.
const (
	ColProductID            = "product_id"
	ColProductName          = "product_name"
	ColCategoryName         = "category_name"
	ColPriceCents           = "price_cents"
	ColShippingCostCents    = "shipping_cost_cents"
	ColPurchaseDate         = "purchase_date"
	ColSellerName           = "seller_name"
	ColPurchaseLocationCode = "purchase_location_code"
	ColPurchaseRating       = "purchase_rating"
	ColPaymentType          = "payment_type"
	ColInstallmentsQuantity = "installments_quantity"
	ColLatitude             = "latitude"
	ColLongitude            = "longitude"
	ColETLLoadTimestamp     = "etl_load_timestamp"
)

// Columns is the canonical column order used for the staging insert. The
// loader receives its column list from configuration; this is the default.
var Columns = []string{
	ColProductID, ColProductName, ColCategoryName, ColPriceCents,
	ColShippingCostCents, ColPurchaseDate, ColSellerName,
	ColPurchaseLocationCode, ColPurchaseRating, ColPaymentType,
	ColInstallmentsQuantity, ColLatitude, ColLongitude, ColETLLoadTimestamp,
}

// Intermediate keys produced by the rename step and consumed by the coercion
// steps. They never survive into a canonical record.
const (
	keyRawPrice        = "price_original"
	keyRawShipping     = "shipping_cost_original"
	keyRawPurchaseDate = "purchase_date_original"
	keyRawRating       = "purchase_rating_original"
	keyRawInstallments = "installments_quantity_original"
	keyRawLatitude     = "latitude_original"
	keyRawLongitude    = "longitude_original"
)

// fieldMap maps the upstream API's human-language labels onto canonical or
// intermediate key names. Unknown source fields are dropped.
var fieldMap = map[string]string{
	"Produto":                ColProductName,
	"Categoria do Produto":   ColCategoryName,
	"Preço":                  keyRawPrice,
	"Frete":                  keyRawShipping,
	"Data da Compra":         keyRawPurchaseDate,
	"Vendedor":               ColSellerName,
	"Local da compra":        ColPurchaseLocationCode,
	"Avaliação da compra":    keyRawRating,
	"Tipo de pagamento":      ColPaymentType,
	"Quantidade de parcelas": keyRawInstallments,
	"lat":                    keyRawLatitude,
	"lon":                    keyRawLongitude,
}

// textFields are lower-cased and trimmed during normalization.
var textFields = []string{
	ColProductName, ColCategoryName, ColSellerName,
	ColPurchaseLocationCode, ColPaymentType,
}

// textDefaults are the sentinel values substituted for text fields still nil
// after all parsing attempts. Numeric, date, and geo fields keep nil as their
// default.
var textDefaults = map[string]string{
	ColProductName:          "nome indisponível",
	ColCategoryName:         "outros",
	ColSellerName:           "vendedor desconhecido",
	ColPurchaseLocationCode: "n/a",
	ColPaymentType:          "não especificado",
}

// NewCanonical returns a record pre-populated with nil for every canonical
// key, so the defaults pass only ever fills gaps and never invents keys.
func NewCanonical() records.Record {
	out := make(records.Record, len(Columns))
	for _, c := range Columns {
		out[c] = nil
	}
	return out
}
