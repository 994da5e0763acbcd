// Package pipeline orchestrates one end-to-end run: extract, buffer the raw
// batch, transform it to canonical records, then provision, load and populate
// the staging database. Stages run strictly in sequence; the first failure
// aborts the run.
//
// The Runner depends only on small interfaces, so tests drive it with fakes
// and the real implementations (extract, rawstore, transform, schema) plug in
// at startup.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/esscova/ecommerce-data-pipeline/internal/metrics"
	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// Extractor pulls one raw batch from the source API.
type Extractor interface {
	FetchBatch(ctx context.Context) ([]records.Record, error)
}

// RawBuffer holds the raw batch between extraction and transformation.
type RawBuffer interface {
	InsertBatch(ctx context.Context, batch []records.Record) error
	FetchAll(ctx context.Context) ([]records.Record, error)
	Clear(ctx context.Context) (int64, error)
}

// Transformer turns a raw batch into canonical records.
type Transformer interface {
	Transform(batch []records.Record) []records.Record
}

// ScriptRunner applies a set of SQL scripts inside a transaction.
type ScriptRunner interface {
	Apply(ctx context.Context, tx storage.Tx) error
}

// Runner wires the stages of one pipeline run.
type Runner struct {
	Extractor   Extractor
	Raw         RawBuffer
	Transformer Transformer

	Storage storage.Config
	Table   string
	Columns []string

	Provisioner ScriptRunner
	Populator   ScriptRunner

	// SkipExtract reruns the downstream stages from the buffered raw batch.
	SkipExtract bool
}

// Run executes the pipeline once. Every stage is timed and recorded; any
// stage error aborts the run and is returned wrapped with the stage name.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log.Printf("pipeline: run %s starting", runID)
	start := time.Now()

	if !r.SkipExtract {
		var batch []records.Record
		err := r.stage("extract", func() error {
			var err error
			batch, err = r.Extractor.FetchBatch(ctx)
			return err
		})
		if err != nil {
			return err
		}
		metrics.RecordRows("extracted", int64(len(batch)))

		err = r.stage("raw_load", func() error {
			if _, err := r.Raw.Clear(ctx); err != nil {
				return err
			}
			return r.Raw.InsertBatch(ctx, batch)
		})
		if err != nil {
			return err
		}
	} else {
		log.Printf("pipeline: run %s skipping extraction, reusing buffered batch", runID)
	}

	var raw []records.Record
	err := r.stage("raw_fetch", func() error {
		var err error
		raw, err = r.Raw.FetchAll(ctx)
		return err
	})
	if err != nil {
		return err
	}
	metrics.RecordRows("buffered", int64(len(raw)))

	var canonical []records.Record
	err = r.stage("transform", func() error {
		canonical = r.Transformer.Transform(raw)
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordRows("transformed", int64(len(canonical)))

	err = r.stage("provision", func() error {
		return storage.Transact(ctx, r.Storage, func(tx storage.Tx, d storage.Dialect) error {
			return r.Provisioner.Apply(ctx, tx)
		})
	})
	if err != nil {
		return err
	}

	var loaded int64
	err = r.stage("staging_load", func() error {
		return storage.Transact(ctx, r.Storage, func(tx storage.Tx, d storage.Dialect) error {
			l := storage.NewLoader(d)
			if err := l.Truncate(ctx, tx, r.Table); err != nil {
				return err
			}
			var err error
			loaded, err = l.BulkLoad(ctx, tx, r.Table, canonical, r.Columns)
			return err
		})
	})
	if err != nil {
		return err
	}
	metrics.RecordRows("loaded", loaded)

	err = r.stage("populate", func() error {
		return storage.Transact(ctx, r.Storage, func(tx storage.Tx, d storage.Dialect) error {
			return r.Populator.Apply(ctx, tx)
		})
	})
	if err != nil {
		return err
	}

	log.Printf("pipeline: run %s finished in %s, %d records staged", runID, time.Since(start).Round(time.Millisecond), loaded)
	return nil
}

// stage times fn, records its outcome and wraps its error with the stage name.
func (r *Runner) stage(name string, fn func() error) error {
	log.Printf("pipeline: stage %s starting", name)
	start := time.Now()
	err := fn()
	metrics.RecordStage(name, err, time.Since(start))
	if err != nil {
		log.Printf("pipeline: stage %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
		return fmt.Errorf("pipeline: %s: %w", name, err)
	}
	log.Printf("pipeline: stage %s done in %s", name, time.Since(start).Round(time.Millisecond))
	return nil
}
