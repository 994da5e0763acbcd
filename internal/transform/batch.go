package transform

import (
	"log"
	"time"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// Batch applies the normalizer across a full extraction batch. Input order is
// preserved: output[i] always corresponds to input[i]. The caller's records
// are never mutated; the batch is defensively copied first.
type Batch struct {
	normalizer *Normalizer

	// now is an injection seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewBatch builds a batch transformer around a fresh Normalizer.
func NewBatch() *Batch {
	return &Batch{normalizer: NewNormalizer(), now: time.Now}
}

// Transform normalizes every record of the batch. An empty batch returns an
// empty slice without error. The ETL load timestamp is captured once per call,
// so all records of one run share a single UTC value.
func (b *Batch) Transform(raw []records.Record) []records.Record {
	if len(raw) == 0 {
		log.Printf("transform: no raw records to transform")
		return []records.Record{}
	}

	log.Printf("transform: starting transformation of %d raw records", len(raw))
	loadedAt := b.now().UTC()

	work := records.CloneBatch(raw)
	out := make([]records.Record, 0, len(work))
	for _, r := range work {
		out = append(out, b.normalizer.Normalize(r, loadedAt))
	}

	log.Printf("transform: transformation finished, %d records processed", len(out))
	return out
}
