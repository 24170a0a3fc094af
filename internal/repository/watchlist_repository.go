package repository

import (
	"context"
	"database/sql"
)

type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

func (r *WatchlistRepository) SymbolsByEmail(ctx context.Context, email string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT symbol
		FROM watchlist_item
		WHERE user_email = $1
		ORDER BY symbol ASC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}
