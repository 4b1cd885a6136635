package repository

// Schema DDL for the SQL page store. Timestamps are unix nanoseconds so that
// ordering and tie-breaks behave the same on PostgreSQL and SQLite.
const (
	createPages = `CREATE TABLE IF NOT EXISTS pages (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    is_trashed BOOLEAN NOT NULL DEFAULT FALSE,
    trashed_at BIGINT,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`

	createPagesActiveIndex  = `CREATE INDEX IF NOT EXISTS pages_owner_active_idx ON pages (owner_id, is_trashed, updated_at)`
	createPagesTrashedIndex = `CREATE INDEX IF NOT EXISTS pages_owner_trashed_idx ON pages (owner_id, is_trashed, trashed_at)`
)

var schemaStatements = []string{createPages, createPagesActiveIndex, createPagesTrashedIndex}
