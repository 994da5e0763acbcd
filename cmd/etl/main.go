// Command etl runs the e-commerce sales pipeline once: extract the raw batch
// from the source API, buffer it in MongoDB, transform it to canonical
// records, and reload the relational staging area and warehouse tables.
//
// Configuration comes from flags with environment fallbacks (see -help); a
// .env file in the working directory is honored.
package main

import (
	"context"
	"log"
	"os"

	"github.com/esscova/ecommerce-data-pipeline/internal/config"
	"github.com/esscova/ecommerce-data-pipeline/internal/extract"
	"github.com/esscova/ecommerce-data-pipeline/internal/metrics"
	"github.com/esscova/ecommerce-data-pipeline/internal/metrics/datadog"
	"github.com/esscova/ecommerce-data-pipeline/internal/metrics/prompush"
	"github.com/esscova/ecommerce-data-pipeline/internal/pipeline"
	"github.com/esscova/ecommerce-data-pipeline/internal/rawstore"
	"github.com/esscova/ecommerce-data-pipeline/internal/schema"
	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
	"github.com/esscova/ecommerce-data-pipeline/internal/transform"

	// Staging backends register themselves.
	_ "github.com/esscova/ecommerce-data-pipeline/internal/storage/mssql"
	_ "github.com/esscova/ecommerce-data-pipeline/internal/storage/mysql"
	_ "github.com/esscova/ecommerce-data-pipeline/internal/storage/postgres"
	_ "github.com/esscova/ecommerce-data-pipeline/internal/storage/sqlite"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	issues := cfg.Validate()
	for _, iss := range issues {
		log.Printf("config: %s", iss.Error())
	}
	if len(config.Errors(issues)) > 0 {
		log.Printf("config: refusing to run with configuration errors")
		return 2
	}

	if err := setupMetrics(cfg); err != nil {
		log.Printf("metrics: %v", err)
		return 2
	}
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: warning: flush failed: %v", err)
		}
	}()

	ctx := context.Background()

	raw, err := rawstore.Connect(ctx, rawstore.Config{
		URI:        cfg.MongoURI,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoCollection,
	})
	if err != nil {
		log.Printf("pipeline: %v", err)
		return 1
	}
	defer func() {
		if err := raw.Close(ctx); err != nil {
			log.Printf("rawstore: warning: %v", err)
		}
	}()

	runner := &pipeline.Runner{
		Extractor:   extract.New(extract.Config{URL: cfg.APIURL, Timeout: cfg.APITimeout}),
		Raw:         raw,
		Transformer: transform.NewBatch(),
		Storage:     storage.Config{Kind: cfg.StorageKind, DSN: cfg.ResolveDSN()},
		Table:       cfg.StagingTable,
		Columns:     cfg.StagingColumns,
		Provisioner: schema.NewProvisioner(cfg.SchemaDir),
		Populator:   schema.NewPopulator(cfg.PopulateDir),
		SkipExtract: cfg.SkipExtract,
	}

	if err := runner.Run(ctx); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}

// setupMetrics installs the configured metrics backend; "none" keeps the
// default no-op.
func setupMetrics(cfg *config.Config) error {
	switch cfg.MetricsBackend {
	case "prometheus":
		b, err := prompush.NewBackend(cfg.MetricsJob, cfg.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: cfg.DogstatsdAddr})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	}
	return nil
}
