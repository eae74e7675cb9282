// Package indexdb resolves type metadata from a precomputed SQLite index.
//
// The index is the natural provider for compiled-only surfaces whose
// metadata was extracted out-of-band; `lambdalens index` builds one from a
// source archive.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/lambdalens/internal/metadata"
)

const createTypesTable = `
CREATE TABLE IF NOT EXISTS types (
	name         TEXT PRIMARY KEY,
	is_interface INTEGER NOT NULL DEFAULT 0
)`

const createMethodsTable = `
CREATE TABLE IF NOT EXISTS methods (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	type_name    TEXT NOT NULL REFERENCES types(name),
	name         TEXT NOT NULL,
	params       TEXT NOT NULL DEFAULT '',
	return_type  TEXT NOT NULL DEFAULT '',
	is_default   INTEGER NOT NULL DEFAULT 0,
	is_static    INTEGER NOT NULL DEFAULT 0,
	is_synthetic INTEGER NOT NULL DEFAULT 0
)`

const createMethodsTypeIndex = `
CREATE INDEX IF NOT EXISTS idx_methods_type_name ON methods(type_name)`

// Provider resolves types from a SQLite index database.
type Provider struct {
	db *sql.DB
}

// Open opens (or creates) an index database at the given path.
func Open(path string) (*Provider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database %s: %w", path, err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Provider{db: db}, nil
}

// Close closes the underlying database.
func (p *Provider) Close() error {
	return p.db.Close()
}

func createSchema(db *sql.DB) error {
	for _, ddl := range []string{createTypesTable, createMethodsTable, createMethodsTypeIndex} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create index schema: %w", err)
		}
	}
	return nil
}

// Resolve loads a type record from the index. Unknown types return
// metadata.ErrNotFound.
func (p *Provider) Resolve(ctx context.Context, qualifiedName string) (*metadata.TypeRecord, error) {
	var isInterface bool
	err := sq.Select("is_interface").
		From("types").
		Where(sq.Eq{"name": qualifiedName}).
		RunWith(p.db).
		QueryRowContext(ctx).
		Scan(&isInterface)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", metadata.ErrNotFound, qualifiedName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query type %s: %w", qualifiedName, err)
	}

	rec := &metadata.TypeRecord{
		QualifiedName: qualifiedName,
		IsInterface:   isInterface,
	}

	rows, err := sq.Select("name", "params", "return_type", "is_default", "is_static", "is_synthetic").
		From("methods").
		Where(sq.Eq{"type_name": qualifiedName}).
		OrderBy("id").
		RunWith(p.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query methods of %s: %w", qualifiedName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m metadata.Method
		var params string
		if err := rows.Scan(&m.Name, &params, &m.Return, &m.IsDefault, &m.IsStatic, &m.IsSynthetic); err != nil {
			return nil, fmt.Errorf("failed to scan method row: %w", err)
		}
		m.Params = splitParams(params)
		rec.Methods = append(rec.Methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read methods of %s: %w", qualifiedName, err)
	}

	return rec, nil
}

// WriteType stores one type record, replacing any previous rows for it.
func (p *Provider) WriteType(ctx context.Context, rec *metadata.TypeRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete("methods").Where(sq.Eq{"type_name": rec.QualifiedName}).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear methods of %s: %w", rec.QualifiedName, err)
	}
	if _, err := sq.Delete("types").Where(sq.Eq{"name": rec.QualifiedName}).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear type %s: %w", rec.QualifiedName, err)
	}

	if _, err := sq.Insert("types").
		Columns("name", "is_interface").
		Values(rec.QualifiedName, rec.IsInterface).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert type %s: %w", rec.QualifiedName, err)
	}

	for _, m := range rec.Methods {
		if _, err := sq.Insert("methods").
			Columns("type_name", "name", "params", "return_type", "is_default", "is_static", "is_synthetic").
			Values(rec.QualifiedName, m.Name, joinParams(m.Params), m.Return, m.IsDefault, m.IsStatic, m.IsSynthetic).
			RunWith(tx).
			ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert method %s.%s: %w", rec.QualifiedName, m.Name, err)
		}
	}

	return tx.Commit()
}

// TypeNames returns every type name in the index, for enumeration when the
// index itself is the candidate surface.
func (p *Provider) TypeNames(ctx context.Context) ([]string, error) {
	rows, err := sq.Select("name").From("types").OrderBy("name").RunWith(p.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan type name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Parameter lists are stored comma-joined, the same unescaped delimited
// format the baseline file uses. Type tokens never contain commas once
// generics are erased.

func joinParams(params []string) string {
	return strings.Join(params, ",")
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
