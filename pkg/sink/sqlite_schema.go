package sink

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the line store. recorded_at is Unix nanoseconds so both
// drivers store and compare it identically.
const Schema = `
CREATE TABLE IF NOT EXISTS lines (
    id TEXT PRIMARY KEY,
    recorded_at INTEGER NOT NULL,
    severity TEXT NOT NULL,
    line TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_recorded_at ON lines(recorded_at);
CREATE INDEX IF NOT EXISTS idx_lines_severity ON lines(severity);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertLine = `INSERT INTO lines (id, recorded_at, severity, line) VALUES (?, ?, ?, ?)`

const deleteBefore = `DELETE FROM lines WHERE recorded_at < ?`

// deleteAllButNewest keeps the newest N lines; rowid breaks timestamp ties.
const deleteAllButNewest = `
DELETE FROM lines WHERE rowid NOT IN (
    SELECT rowid FROM lines ORDER BY recorded_at DESC, rowid DESC LIMIT ?
)`
