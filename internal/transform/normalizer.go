package transform

import (
	"log"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// Normalizer turns one raw sale record into one canonical record. It is
// stateless apart from a reusable lower-caser; the batch-wide load timestamp
// is supplied by the caller so every record of a run carries the same value.
//
// Step order matters: numeric and date fields are parsed from renamed
// intermediate keys, the defaults pass runs over already-coerced values, and
// the timestamp is stamped last so it can never be defaulted away.
type Normalizer struct {
	lower cases.Caser
}

// NewNormalizer builds a Normalizer with a pt-BR lower-caser, matching the
// upstream catalog's locale.
func NewNormalizer() *Normalizer {
	return &Normalizer{lower: cases.Lower(language.BrazilianPortuguese)}
}

// Normalize maps a raw record to the canonical fourteen-key layout. It never
// returns an error: every malformed field degrades to nil (or a sentinel
// default) with a logged warning.
func (n *Normalizer) Normalize(raw records.Record, loadedAt time.Time) records.Record {
	out := n.rename(raw)
	n.normalizeText(out)
	n.coerceNumerics(out)
	n.coerceDate(out)
	applyDefaults(out)
	out[ColETLLoadTimestamp] = loadedAt.UTC()
	return out
}

// rename selects the known source labels into canonical or intermediate keys
// and resolves the identifier: absent or empty id becomes nil, anything else
// is stringified.
func (n *Normalizer) rename(raw records.Record) records.Record {
	out := NewCanonical()

	if s, ok := asString(raw["id"]); ok && s != "" {
		out[ColProductID] = s
	}
	for src, dst := range fieldMap {
		if v, ok := raw[src]; ok && v != nil {
			out[dst] = v
		}
	}
	return out
}

// normalizeText lower-cases and trims the five text fields. Non-string values
// are stringified first; a value that cannot be rendered is left as-is with a
// warning.
func (n *Normalizer) normalizeText(rec records.Record) {
	for _, field := range textFields {
		v := rec[field]
		if v == nil {
			continue
		}
		s, ok := asString(v)
		if !ok {
			log.Printf("transform: warning: could not normalize field %q for product %v, value kept as-is", field, identify(rec))
			continue
		}
		rec[field] = strings.TrimSpace(n.lower.String(s))
	}
}

// coerceNumerics converts the intermediate price/shipping/rating/installments
// and geo keys into their typed canonical fields, degrading to nil on parse
// failure.
func (n *Normalizer) coerceNumerics(rec records.Record) {
	id := identify(rec)

	if v := take(rec, keyRawPrice); v != nil {
		if c, ok := Cents(v); ok {
			rec[ColPriceCents] = c
		} else {
			log.Printf("transform: warning: invalid price %v for product %v, set to null", v, id)
		}
	}
	if v := take(rec, keyRawShipping); v != nil {
		if c, ok := ShippingCents(v); ok {
			rec[ColShippingCostCents] = c
		} else {
			log.Printf("transform: warning: invalid shipping cost %v for product %v, set to null", v, id)
		}
	}
	if v := take(rec, keyRawRating); v != nil {
		if i, ok := Integer(v); ok {
			rec[ColPurchaseRating] = i
		} else {
			log.Printf("transform: warning: invalid purchase rating %v for product %v, set to null", v, id)
		}
	}
	if v := take(rec, keyRawInstallments); v != nil {
		if i, ok := Integer(v); ok {
			rec[ColInstallmentsQuantity] = i
		} else {
			log.Printf("transform: warning: invalid installments quantity %v for product %v, set to null", v, id)
		}
	}
	if v := take(rec, keyRawLatitude); v != nil {
		if f, ok := Float(v); ok {
			rec[ColLatitude] = f
		} else {
			log.Printf("transform: warning: invalid latitude %v for product %v, set to null", v, id)
		}
	}
	if v := take(rec, keyRawLongitude); v != nil {
		if f, ok := Float(v); ok {
			rec[ColLongitude] = f
		} else {
			log.Printf("transform: warning: invalid longitude %v for product %v, set to null", v, id)
		}
	}
}

// coerceDate parses the intermediate purchase-date string against the fixed
// day/month/year layout.
func (n *Normalizer) coerceDate(rec records.Record) {
	v := take(rec, keyRawPurchaseDate)
	if v == nil {
		return
	}
	if t, ok := Date(v); ok {
		rec[ColPurchaseDate] = t
	} else {
		log.Printf("transform: warning: could not parse purchase date %v for product %v, set to null", v, identify(rec))
	}
}

// applyDefaults substitutes the named sentinel for any text field still nil.
// Numeric, date, and geo fields keep nil.
func applyDefaults(rec records.Record) {
	for field, def := range textDefaults {
		if rec[field] == nil {
			rec[field] = def
		}
	}
}

// take removes and returns an intermediate key so it never leaks into the
// canonical record.
func take(rec records.Record, key string) any {
	v := rec[key]
	delete(rec, key)
	return v
}

// identify picks the best available label for warning lines.
func identify(rec records.Record) any {
	if v := rec[ColProductID]; v != nil {
		return v
	}
	if v := rec[ColProductName]; v != nil {
		return v
	}
	return "unknown"
}
