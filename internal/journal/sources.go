package journal

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// SourceEntry holds the load state of one header file.
type SourceEntry struct {
	FilePath    string
	ContentHash string
	LoadedAt    time.Time
}

// HashContent returns the hex SHA-256 of a file's content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SetSourceLoaded records that a file was loaded with the given hash.
func (j *Journal) SetSourceLoaded(path, hash string) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO sources (file_path, content_hash, loaded_at)
		VALUES (?, ?, ?)`,
		path, hash, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set source loaded %s: %w", path, err)
	}
	return nil
}

// GetSourceHash retrieves the last recorded hash for a file.
// Returns sql.ErrNoRows if the file was never loaded.
func (j *Journal) GetSourceHash(path string) (string, error) {
	var hash string
	err := j.db.QueryRow("SELECT content_hash FROM sources WHERE file_path = ?", path).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("get source hash %s: %w", path, err)
	}
	return hash, nil
}

// IsSourceChanged reports whether a file's content differs from the last
// load. Files never loaded count as changed.
func (j *Journal) IsSourceChanged(path, newHash string) (bool, error) {
	oldHash, err := j.GetSourceHash(path)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return oldHash != newHash, nil
}

// Sources returns every recorded source, ordered by path.
func (j *Journal) Sources() ([]SourceEntry, error) {
	rows, err := j.db.Query(`
		SELECT file_path, content_hash, loaded_at FROM sources ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var entries []SourceEntry
	for rows.Next() {
		var e SourceEntry
		var loadedAt string
		if err := rows.Scan(&e.FilePath, &e.ContentHash, &loadedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.LoadedAt, _ = time.Parse(time.RFC3339, loadedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// PruneSources removes entries for files not in validPaths.
func (j *Journal) PruneSources(validPaths map[string]bool) (int, error) {
	entries, err := j.Sources()
	if err != nil {
		return 0, err
	}
	var pruned int
	for _, e := range entries {
		if validPaths[e.FilePath] {
			continue
		}
		if _, err := j.db.Exec("DELETE FROM sources WHERE file_path = ?", e.FilePath); err != nil {
			return pruned, fmt.Errorf("delete source %s: %w", e.FilePath, err)
		}
		pruned++
	}
	return pruned, nil
}
