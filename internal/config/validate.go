package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// configuration (e.g. "storage.kind"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as an error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors filters issues down to the blocking ones.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}

var knownStorageKinds = map[string]struct{}{
	"postgres": {},
	"sqlite":   {},
	"mssql":    {},
	"mysql":    {},
}

var knownMetricsBackends = map[string]struct{}{
	"none":       {},
	"prometheus": {},
	"datadog":    {},
}

// Validate performs static validation of the Config without mutating it.
// Callers decide whether warnings are fatal.
func (c *Config) Validate() []Issue {
	var issues []Issue

	if !c.SkipExtract && strings.TrimSpace(c.APIURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api_url",
			Message:  "api_url must not be empty unless extraction is skipped",
		})
	}

	if strings.TrimSpace(c.MongoURI) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mongo_uri",
			Message:  "mongo_uri must not be empty",
		})
	}
	if strings.TrimSpace(c.MongoDatabase) == "" || strings.TrimSpace(c.MongoCollection) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mongo_db",
			Message:  "mongo_db and mongo_collection must not be empty",
		})
	}

	if _, ok := knownStorageKinds[c.StorageKind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", c.StorageKind),
		})
	}
	if c.ResolveDSN() == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dsn",
			Message:  "no DSN available: set -dsn, or -db_name/-db_user for postgres",
		})
	}

	if strings.TrimSpace(c.StagingTable) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "staging_table",
			Message:  "staging_table must not be empty",
		})
	}
	if len(c.StagingColumns) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "staging_columns",
			Message:  "staging_columns must not be empty",
		})
	}

	if _, ok := knownMetricsBackends[c.MetricsBackend]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be dropped", c.MetricsBackend),
		})
	}
	if c.MetricsBackend == "prometheus" && strings.TrimSpace(c.PushgatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "pushgateway_url",
			Message:  "prometheus metrics require pushgateway_url",
		})
	}

	return issues
}
