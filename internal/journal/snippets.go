package journal

import (
	"fmt"
	"time"
)

// Entry is one recorded snippet.
type Entry struct {
	ID         int64
	Session    string
	Code       string
	Result     string
	ExecutedAt time.Time
}

// Record appends a snippet and its result under the current session.
func (j *Journal) Record(code, result string) error {
	_, err := j.db.Exec(`
		INSERT INTO snippets (session, code, result, executed_at)
		VALUES (?, ?, ?, ?)`,
		j.session, code, result, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record snippet: %w", err)
	}
	return nil
}

// Recent returns up to limit snippets, newest first. A limit of zero or
// less returns all of them.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	query := `SELECT id, session, code, result, executed_at FROM snippets ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return j.query(query, args...)
}

// SessionEntries returns the snippets of one session in execution order.
func (j *Journal) SessionEntries(session string) ([]Entry, error) {
	return j.query(`
		SELECT id, session, code, result, executed_at FROM snippets
		WHERE session = ? ORDER BY id`, session)
}

func (j *Journal) query(query string, args ...any) ([]Entry, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snippets: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var executedAt string
		if err := rows.Scan(&e.ID, &e.Session, &e.Code, &e.Result, &executedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.ExecutedAt, _ = time.Parse(time.RFC3339Nano, executedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}
