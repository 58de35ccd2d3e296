package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresProvider reads the catalog from the cards table.
type PostgresProvider struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresProvider creates a SQL-backed catalog provider.
func NewPostgresProvider(db *sql.DB, log *slog.Logger) *PostgresProvider {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresProvider{db: db, log: log}
}

// List returns every card ordered by position.
func (p *PostgresProvider) List(ctx context.Context) ([]Entry, error) {
	const query = `
		SELECT id, name, icon_ref, color_class, COALESCE(image_url, '')
		FROM cards
		ORDER BY position
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		p.log.Error("failed to query catalog", slog.Any("error", err))
		return nil, fmt.Errorf("select cards: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.IconRef, &e.ColorClass, &e.ImageURL); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return entries, nil
}
