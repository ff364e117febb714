package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migrationsSQL creates the snapshot schema. Statements are separated by ";"
// and must be idempotent.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	saved_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS statements (
	document_key TEXT NOT NULL,
	position     INTEGER NOT NULL,
	subject      TEXT NOT NULL,
	predicate    TEXT NOT NULL,
	object_kind  INTEGER NOT NULL,
	object_value TEXT NOT NULL,
	PRIMARY KEY (document_key, position)
);

CREATE INDEX IF NOT EXISTS idx_statements_predicate ON statements (document_key, predicate);
`

// InitDB runs migrations on the given DB connection.
func InitDB(ctx context.Context, db *sql.DB) error {
	for _, statement := range strings.Split(migrationsSQL, ";") {
		statement = strings.TrimSpace(statement)
		if statement == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to migrate snapshot schema: %w", err)
		}
	}
	return nil
}
