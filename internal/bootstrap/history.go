package bootstrap

import (
	"cursedcompass-backend/internal/components/sqliteutil"
	"cursedcompass-backend/internal/history"
	"cursedcompass-backend/internal/history/db"
	"database/sql"
	"fmt"
)

// OpenHistory opens the history database, the caller owns the returned *sql.DB.
func OpenHistory(cfg Config) (history.Store, *sql.DB, error) {
	database, err := sqliteutil.OpenDB(cfg.History, db.Schema)
	if err != nil {
		return history.Store{}, nil, fmt.Errorf("open history database: %w", err)
	}
	return history.NewStore(database), database, nil
}
