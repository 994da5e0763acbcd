// Package extract fetches raw sales records from the source REST API.
//
// The extractor is deliberately plain: one GET per run, a hard client timeout,
// and no retries. The pipeline runs on a schedule, so a failed extraction
// simply fails the run and the next run tries again.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// Config configures the extractor. A zero Timeout defaults to 30s. Transport
// is injectable so tests can serve canned payloads without a listener.
type Config struct {
	URL       string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Extractor pulls one batch of raw records per call.
type Extractor struct {
	url    string
	client *http.Client
}

// New constructs an Extractor from cfg, applying defaults for zero values.
func New(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Extractor{
		url: cfg.URL,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
	}
}

// FetchBatch GETs the configured endpoint and decodes the JSON payload into a
// batch of raw records. A top-level array yields one record per element; a
// single top-level object is wrapped into a one-element batch; anything else
// is an error. Numbers decode as json.Number so the transform stage controls
// all numeric conversion.
func (e *Extractor) FetchBatch(ctx context.Context) ([]records.Record, error) {
	if e.url == "" {
		return nil, fmt.Errorf("extract: url must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: GET %s: %w", e.url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract: GET %s: unexpected status %d", e.url, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("extract: decode response: %w", err)
	}

	return toBatch(payload)
}

// toBatch normalizes the decoded payload shape into []records.Record.
func toBatch(payload any) ([]records.Record, error) {
	switch v := payload.(type) {
	case []any:
		batch := make([]records.Record, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("extract: element %d is %T, want a JSON object", i, item)
			}
			batch = append(batch, records.Record(obj))
		}
		return batch, nil
	case map[string]any:
		return []records.Record{records.Record(v)}, nil
	default:
		return nil, fmt.Errorf("extract: payload is %T, want a JSON array or object", payload)
	}
}
