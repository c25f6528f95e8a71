//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/lcsc2kicad/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS components_fts USING fts5(
			lcsc_id UNINDEXED,
			name,
			title,
			manufacturer,
			package,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, c models.ComponentSummary) error {
	_, _ = tx.ExecContext(ctx, `DELETE FROM components_fts WHERE lcsc_id = ?`, c.ID)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO components_fts (lcsc_id, name, title, manufacturer, package) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Title, c.Manufacturer, c.Package)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, tx *sql.Tx, id string) {
	_, _ = tx.ExecContext(ctx, `DELETE FROM components_fts WHERE lcsc_id = ?`, id)
}

// Search performs an FTS5 full-text search ranked by relevance.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]models.ComponentSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.lcsc_id, c.name, c.title, c.manufacturer, c.datasheet, c.package,
		       c.has_symbol, c.has_footprint, c.model_formats, c.checksum, c.updated_at
		FROM components_fts f
		JOIN components c ON c.lcsc_id = f.lcsc_id
		WHERE components_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanComponents(rows)
}
