//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/lcsc2kicad/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the components table.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _ models.ComponentSummary) error { return nil }

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(ctx context.Context, query string, limit int) ([]models.ComponentSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+componentColumns+`
		FROM components
		WHERE lcsc_id LIKE ? OR name LIKE ? OR title LIKE ? OR manufacturer LIKE ? OR package LIKE ?
		ORDER BY lcsc_id
		LIMIT ?
	`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanComponents(rows)
}
