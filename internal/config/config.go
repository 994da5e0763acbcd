// Package config centralizes pipeline configuration. All tunables are sourced
// from command-line flags with environment-variable fallbacks, optionally
// seeded from a .env file (12-factor friendly). Flags are defined first so
// `-help` shows every knob and its default.
//
// Typical usage:
//
//	cfg := config.Load() // reads .env, os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-api_url=http://x"})
package config

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/esscova/ecommerce-data-pipeline/internal/transform"
)

// Config holds all process configuration. Fields are plain values, so the
// struct can be copied freely once constructed.
type Config struct {
	// Source API.
	APIURL     string        // Endpoint serving the raw sales records.
	APITimeout time.Duration // HTTP client timeout for the extraction GET.

	// Raw document buffer.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Staging database. DSN wins when set; for postgres it can also be built
	// from the discrete parts below.
	StorageKind string // "postgres", "sqlite", "mssql" or "mysql".
	DSN         string
	DBHost      string
	DBPort      string
	DBName      string
	DBUser      string
	DBPassword  string

	// Staging target.
	StagingTable   string
	StagingColumns []string

	// SQL asset directories.
	SchemaDir   string
	PopulateDir string

	// Stage toggles.
	SkipExtract bool // Rerun transform/load from the buffered raw batch.

	// Metrics.
	MetricsBackend string // "none", "prometheus" or "datadog".
	PushgatewayURL string
	MetricsJob     string
	DogstatsdAddr  string
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to
// an environment-variable fallback via getenv, then parsing args. Environment
// values seed the defaults; explicit CLI flags override them.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	durEnvOr := func(k string, d time.Duration) time.Duration {
		if v := getenv(k); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				return parsed
			}
		}
		return d
	}
	boolEnvOr := func(k string, d bool) bool {
		switch strings.ToLower(getenv(k)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return d
	}

	// Source API
	fs.StringVar(&cfg.APIURL, "api_url", getenv("API_URL"), "Endpoint serving raw sales records")
	fs.DurationVar(&cfg.APITimeout, "api_timeout", durEnvOr("API_TIMEOUT", 30*time.Second), "HTTP timeout for extraction")

	// Raw buffer
	fs.StringVar(&cfg.MongoURI, "mongo_uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	fs.StringVar(&cfg.MongoDatabase, "mongo_db", envOr("MONGO_DB", "ecommerce"), "MongoDB database for the raw buffer")
	fs.StringVar(&cfg.MongoCollection, "mongo_collection", envOr("MONGO_COLLECTION", "vendas_raw"), "MongoDB collection for the raw buffer")

	// Staging database
	fs.StringVar(&cfg.StorageKind, "storage", envOr("STORAGE_KIND", "postgres"), "Staging backend: 'postgres', 'sqlite', 'mssql' or 'mysql'")
	fs.StringVar(&cfg.DSN, "dsn", getenv("DB_DSN"), "Full DSN (required for mssql/mysql/sqlite; optional for postgres)")
	fs.StringVar(&cfg.DBHost, "db_host", envOr("DB_HOST", "localhost"), "DB host (postgres convenience)")
	fs.StringVar(&cfg.DBPort, "db_port", envOr("DB_PORT", "5432"), "DB port (postgres convenience)")
	fs.StringVar(&cfg.DBName, "db_name", getenv("DB_NAME"), "DB name (postgres convenience)")
	fs.StringVar(&cfg.DBUser, "db_user", getenv("DB_USER"), "DB user (postgres convenience)")
	fs.StringVar(&cfg.DBPassword, "db_password", getenv("DB_PASSWORD"), "DB password (postgres convenience)")

	// Staging target
	fs.StringVar(&cfg.StagingTable, "staging_table", envOr("STAGING_TABLE", "staging_vendas"), "Staging table name")
	var columns string
	fs.StringVar(&columns, "staging_columns", getenv("STAGING_COLUMNS"), "Comma-separated staging column order (default: canonical order)")

	// SQL assets
	fs.StringVar(&cfg.SchemaDir, "schema_dir", envOr("SCHEMA_DIR", "sql/schema"), "Directory of schema DDL scripts")
	fs.StringVar(&cfg.PopulateDir, "populate_dir", envOr("POPULATE_DIR", "sql/populate"), "Directory of warehouse populate scripts")

	// Stage toggles
	fs.BoolVar(&cfg.SkipExtract, "skip_extract", boolEnvOr("SKIP_EXTRACT", false), "Skip extraction and reuse the buffered raw batch")

	// Metrics
	fs.StringVar(&cfg.MetricsBackend, "metrics", envOr("METRICS_BACKEND", "none"), "Metrics backend: 'none', 'prometheus' or 'datadog'")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", getenv("PUSHGATEWAY_URL"), "Prometheus Pushgateway base URL")
	fs.StringVar(&cfg.MetricsJob, "metrics_job", envOr("METRICS_JOB", "ecommerce-etl"), "Pushgateway job name")
	fs.StringVar(&cfg.DogstatsdAddr, "dogstatsd_addr", envOr("DOGSTATSD_ADDR", "127.0.0.1:8125"), "DogStatsD agent address")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)

	if columns == "" {
		cfg.StagingColumns = append([]string(nil), transform.Columns...)
	} else {
		for _, c := range strings.Split(columns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.StagingColumns = append(cfg.StagingColumns, c)
			}
		}
	}
	return cfg
}

// Load is the production entry point: it seeds the environment from .env when
// present, then parses flag.CommandLine against os.Args.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("config: .env loaded")
	}
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// ResolveDSN returns the staging DSN, building a postgres URL from the
// discrete parts when no full DSN was supplied.
func (c *Config) ResolveDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.StorageKind != "postgres" || c.DBName == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%s", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}
