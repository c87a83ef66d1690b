// Package productstore persists scraped catalog records in sqlite. A
// push replaces the whole (source, category, subcategory) slice rather
// than merging into it, so the store always reflects the latest scrape
// of each category.
package productstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"

	"medisearch-backend/lib/catalog"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (or creates) a sqlite database at the given path and
// applies the schema.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	if _, err := database.Exec(Schema); err != nil {
		database.Close()
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type PushRequest struct {
	Time        time.Time
	Source      catalog.SourceID
	Category    string
	Subcategory string
	Products    []catalog.Product
}

// Push replaces the stored slice for the request's source and category
// with the given products. Products without a local id cannot be keyed
// and are skipped with a warning.
func (s Store) Push(ctx context.Context, req PushRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM products WHERE source = ? AND category = ? AND subcategory = ?`,
		string(req.Source), req.Category, req.Subcategory,
	)
	if err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO products
			(source, category, subcategory, local_id, scraped_at, record)
			VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, product := range req.Products {
		if product.LocalID == "" {
			slog.WarnContext(ctx, "skipping product without local id",
				"source", req.Source, "name", product.Name)
			continue
		}
		record, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("encode product %q: %w", product.LocalID, err)
		}
		_, err = insert.ExecContext(ctx,
			string(req.Source), req.Category, req.Subcategory,
			product.LocalID, req.Time.Unix(), string(record),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Pull returns every stored product of one source and category, all
// subcategories included.
func (s Store) Pull(ctx context.Context, source catalog.SourceID, category string) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM products WHERE source = ? AND category = ?
			ORDER BY subcategory, local_id`,
		string(source), category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}

		var product catalog.Product
		if err := json.Unmarshal([]byte(record), &product); err != nil {
			slog.WarnContext(ctx, "failed to decode stored product", "err", err)
			continue
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
