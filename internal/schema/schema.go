// Package schema executes the SQL assets of the pipeline: declarative schema
// scripts that provision the staging and dimensional tables, and the fixed
// populate sequence that fills the warehouse from staging. Both run inside a
// transaction owned by the caller, so a failing script never leaves a
// half-provisioned database behind.
package schema

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
)

// PopulateScripts is the ordered warehouse-populate sequence. Dimensions load
// before the fact table because fato_vendas resolves its surrogate keys
// against them.
var PopulateScripts = []string{
	"01_populate_dim_tempo.sql",
	"02_populate_dim_local.sql",
	"03_populate_dim_vendedor.sql",
	"04_populate_dim_produto.sql",
	"05_populate_dim_pagamento.sql",
	"06_populate_fato_vendas.sql",
}

// Provisioner applies every *.sql script found in a directory, in lexical
// order. Script names are expected to carry a numeric prefix that encodes
// their dependency order.
type Provisioner struct {
	dir string
}

// NewProvisioner returns a Provisioner reading scripts from dir.
func NewProvisioner(dir string) *Provisioner {
	return &Provisioner{dir: dir}
}

// Apply runs all scripts through tx. A missing directory or an empty one is a
// logged no-op; a failing script stops the sequence and returns its error so
// the enclosing transaction rolls back.
func (p *Provisioner) Apply(ctx context.Context, tx storage.Tx) error {
	paths, err := filepath.Glob(filepath.Join(p.dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("schema: scan %q: %w", p.dir, err)
	}
	if len(paths) == 0 {
		log.Printf("schema: warning: no schema scripts found in %q, skipping provisioning", p.dir)
		return nil
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := runScript(ctx, tx, path); err != nil {
			return err
		}
	}
	log.Printf("schema: %d schema scripts applied from %q", len(paths), p.dir)
	return nil
}

// Populator runs the fixed warehouse-populate sequence from a directory.
type Populator struct {
	dir string
}

// NewPopulator returns a Populator reading scripts from dir.
func NewPopulator(dir string) *Populator {
	return &Populator{dir: dir}
}

// Apply runs the populate scripts in their fixed order through tx. A missing
// directory is a logged no-op; a missing individual script is logged and
// skipped; a failing script stops the sequence and returns its error.
func (p *Populator) Apply(ctx context.Context, tx storage.Tx) error {
	if _, err := os.Stat(p.dir); err != nil {
		log.Printf("schema: warning: populate directory %q unavailable (%v), skipping", p.dir, err)
		return nil
	}

	ran := 0
	for _, name := range PopulateScripts {
		path := filepath.Join(p.dir, name)
		if _, err := os.Stat(path); err != nil {
			log.Printf("schema: warning: populate script %q not found, skipping", name)
			continue
		}
		if err := runScript(ctx, tx, path); err != nil {
			return err
		}
		ran++
	}
	log.Printf("schema: %d populate scripts executed from %q", ran, p.dir)
	return nil
}

// runScript reads one script and executes its statements in order. Scripts are
// split on semicolons; the pipeline's assets keep semicolons out of string
// literals, which keeps the split trivial.
func runScript(ctx context.Context, tx storage.Tx, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("schema: read %q: %w", filepath.Base(path), err)
	}

	log.Printf("schema: executing %q", filepath.Base(path))
	for _, stmt := range splitStatements(string(body)) {
		if err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema: script %q: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// splitStatements breaks a script into individual statements, dropping
// whitespace-only fragments and full-line comments.
func splitStatements(script string) []string {
	var out []string
	for _, raw := range strings.Split(script, ";") {
		stmt := stripLineComments(raw)
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(stmt))
	}
	return out
}

func stripLineComments(stmt string) string {
	lines := strings.Split(stmt, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
