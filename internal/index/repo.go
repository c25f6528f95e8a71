package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/models"
)

const componentColumns = `lcsc_id, name, title, manufacturer, datasheet, package,
	has_symbol, has_footprint, model_formats, checksum, updated_at`

var sortOrders = map[string]string{
	"":        "updated_at DESC",
	"updated": "updated_at DESC",
	"id":      "lcsc_id ASC",
	"name":    "name ASC",
}

// UpsertComponent inserts or replaces a component row and its FTS entry within a transaction.
func (db *DB) UpsertComponent(ctx context.Context, c models.ComponentSummary) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	formats := c.ModelFormats
	if formats == nil {
		formats = []string{}
	}
	formatsJSON, _ := json.Marshal(formats)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO components (`+componentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lcsc_id) DO UPDATE SET
			name          = excluded.name,
			title         = excluded.title,
			manufacturer  = excluded.manufacturer,
			datasheet     = excluded.datasheet,
			package       = excluded.package,
			has_symbol    = excluded.has_symbol,
			has_footprint = excluded.has_footprint,
			model_formats = excluded.model_formats,
			checksum      = excluded.checksum,
			updated_at    = excluded.updated_at
	`, c.ID, c.Name, c.Title, c.Manufacturer, c.Datasheet, c.Package,
		c.HasSymbol, c.HasFootprint, string(formatsJSON), c.Checksum, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert component: %w", err)
	}

	if err := ftsUpsert(ctx, tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteComponent removes a component and its FTS entry. Deleting an
// unknown id is not an error.
func (db *DB) DeleteComponent(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(ctx, tx, id)
	if _, err := tx.ExecContext(ctx, `DELETE FROM components WHERE lcsc_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete component: %w", err)
	}
	return tx.Commit()
}

// GetComponent returns the row for id or apperr.ErrNotFound.
func (db *DB) GetComponent(ctx context.Context, id string) (*models.ComponentSummary, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+componentColumns+` FROM components WHERE lcsc_id = ?`, id)
	c, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: component %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get component: %w", err)
	}
	return c, nil
}

// ListComponents returns a page of components and the total row count.
// sort is one of "updated" (default), "id" or "name".
func (db *DB) ListComponents(ctx context.Context, limit, offset int, sort string) ([]models.ComponentSummary, int, error) {
	order, ok := sortOrders[sort]
	if !ok {
		return nil, 0, fmt.Errorf("index: unknown sort %q: %w", sort, apperr.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM components`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count components: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+componentColumns+` FROM components ORDER BY `+order+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list components: %w", err)
	}
	defer rows.Close()

	out, err := scanComponents(rows)
	return out, total, err
}

// AllIDs returns every catalogued component id.
func (db *DB) AllIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT lcsc_id FROM components`)
	if err != nil {
		return nil, fmt.Errorf("index: all ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComponent(s scanner) (*models.ComponentSummary, error) {
	var (
		c       models.ComponentSummary
		formats string
	)
	err := s.Scan(&c.ID, &c.Name, &c.Title, &c.Manufacturer, &c.Datasheet, &c.Package,
		&c.HasSymbol, &c.HasFootprint, &formats, &c.Checksum, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(formats), &c.ModelFormats); err != nil {
		return nil, fmt.Errorf("index: model formats of %s: %w", c.ID, err)
	}
	return &c, nil
}

func scanComponents(rows *sql.Rows) ([]models.ComponentSummary, error) {
	var out []models.ComponentSummary
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
