package journal

// schemaSQL defines the SQLite schema for the journal database.
// Tables:
//   - snippets: every snippet submitted to the executor and its result
//   - sources: header files loaded into the declaration tree, by content hash
const schemaSQL = `
CREATE TABLE IF NOT EXISTS snippets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session TEXT NOT NULL,
    code TEXT NOT NULL,
    result TEXT NOT NULL,
    executed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sources (
    file_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    loaded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snippets_session ON snippets(session);
`

// initSchema creates the database tables and indexes if they don't exist.
func (j *Journal) initSchema() error {
	_, err := j.db.Exec(schemaSQL)
	return err
}
