// Package journal provides a SQLite-backed record of the code snippets the
// object factory submits for execution and of the header files a session
// loaded. The journal is stored in .clsinfo/journal.db.
package journal

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// FileName is the database file inside the config directory.
const FileName = "journal.db"

// Journal manages the journal database. Each opened Journal is one session;
// every snippet it records carries the session ID.
type Journal struct {
	db      *sql.DB
	dbPath  string
	session string
}

// Open opens or creates the journal database in dir. It initializes the
// schema if the database is new.
func Open(dir string) (*Journal, error) {
	return OpenPath(filepath.Join(dir, FileName))
}

// OpenPath opens or creates the journal database at an explicit path.
func OpenPath(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	// WAL lets the serve command and a CLI invocation share the file.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &Journal{db: db, dbPath: dbPath, session: uuid.NewString()}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// Session returns the ID stamped on snippets recorded through this handle.
func (j *Journal) Session() string {
	return j.session
}

// Clear removes all snippets and source entries.
func (j *Journal) Clear() error {
	_, err := j.db.Exec("DELETE FROM snippets; DELETE FROM sources;")
	if err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	return nil
}

// Stats summarizes the journal contents.
type Stats struct {
	SnippetCount int64
	SessionCount int64
	SourceCount  int64
}

// GetStats returns statistics about the journal contents.
func (j *Journal) GetStats() (*Stats, error) {
	var stats Stats

	err := j.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT session) FROM snippets").
		Scan(&stats.SnippetCount, &stats.SessionCount)
	if err != nil {
		return nil, fmt.Errorf("count snippets: %w", err)
	}

	err = j.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&stats.SourceCount)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}

	return &stats, nil
}
