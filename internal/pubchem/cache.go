package pubchem

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

//go:embed schema.sql
var schemaSQL string

// Cache is a persistent lookup cache keyed by (kind, query). The remote
// database is rate limited and compound data is effectively immutable, so
// re-resolving an identifier the sheet has seen before should not spend a
// slot at the gate.
// Uses SQLite with WAL mode for concurrent read access.
type Cache struct {
	db *sql.DB
}

// OpenCache creates or opens the cache database at the given path.
// Applies required pragmas and the schema automatically; safe to call on an
// existing cache file.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to cache database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY on concurrent lookups.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached compound for a query, and whether one was present.
func (c *Cache) Get(ctx context.Context, kind sheet.Kind, query string) (*Compound, bool, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT cid, name, cas, smiles, inchi, inchikey, molecular_weight, density, source_url
		FROM compounds WHERE kind = ? AND query = ?`,
		string(kind), query,
	)

	var comp Compound
	var density sql.NullFloat64
	err := row.Scan(
		&comp.CID, &comp.Name, &comp.CAS, &comp.SMILES, &comp.InChI,
		&comp.InChIKey, &comp.MolecularWeight, &density, &comp.SourceURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	if density.Valid {
		comp.Density = sheet.Number(density.Float64)
	} else {
		comp.Density = sheet.NA
	}
	return &comp, true, nil
}

// Put stores a resolved compound. Existing entries for the same query are
// replaced (compound records do change upstream, just rarely).
func (c *Cache) Put(ctx context.Context, kind sheet.Kind, query string, comp *Compound) error {
	var density sql.NullFloat64
	if n, ok := sheet.AsNumber(comp.Density); ok {
		density = sql.NullFloat64{Float64: n, Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO compounds
			(kind, query, cid, name, cas, smiles, inchi, inchikey, molecular_weight, density, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, query) DO UPDATE SET
			cid = excluded.cid,
			name = excluded.name,
			cas = excluded.cas,
			smiles = excluded.smiles,
			inchi = excluded.inchi,
			inchikey = excluded.inchikey,
			molecular_weight = excluded.molecular_weight,
			density = excluded.density,
			source_url = excluded.source_url,
			fetched_at = datetime('now')`,
		string(kind), query, comp.CID, comp.Name, comp.CAS, comp.SMILES,
		comp.InChI, comp.InChIKey, comp.MolecularWeight, density, comp.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
