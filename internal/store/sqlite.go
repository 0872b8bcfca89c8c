package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS leaderboards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			category TEXT NOT NULL,
			device_id TEXT NOT NULL DEFAULT 'unknown',
			country TEXT NOT NULL DEFAULT 'Unknown',
			submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboards_category_score ON leaderboards(category, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboards_player ON leaderboards(player_name)`,
		`CREATE TABLE IF NOT EXISTS cloud_saves (
			device_id TEXT PRIMARY KEY,
			save_data TEXT NOT NULL,
			saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_accessed DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SubmitScore inserts a score row. Multiple entries per player per category
// are allowed; ranking always reflects the player's best.
func (s *SQLiteDB) SubmitScore(sub *Submission) (*SubmitResult, error) {
	deviceID := sub.DeviceID
	if deviceID == "" {
		deviceID = "unknown"
	}
	country := sub.Country
	if country == "" {
		country = "Unknown"
	}

	_, err := s.db.Exec(
		`INSERT INTO leaderboards (player_name, score, category, device_id, country, submitted_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		sub.PlayerName, sub.Score, sub.Category, deviceID, country,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert score: %w", err)
	}

	var rank int64
	err = s.db.QueryRow(
		`SELECT rank FROM (
			SELECT player_name, score,
			       RANK() OVER (ORDER BY score DESC) AS rank
			FROM leaderboards
			WHERE category = ?
		)
		WHERE player_name = ?
		ORDER BY score DESC
		LIMIT 1`,
		sub.Category, sub.PlayerName,
	).Scan(&rank)
	if err != nil {
		return nil, fmt.Errorf("failed to rank score: %w", err)
	}

	return &SubmitResult{Rank: rank, Score: sub.Score}, nil
}

// TopScores returns the top rows for a category. When playerName is set and
// that player falls outside the limit, their best row is appended so clients
// can always show the requester's standing.
func (s *SQLiteDB) TopScores(category string, limit int, playerName string) ([]ScoreRow, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		WITH ranked AS (
			SELECT player_name, score, country, device_id, submitted_at,
			       RANK() OVER (ORDER BY score DESC) AS rank
			FROM leaderboards
			WHERE category = ?
			ORDER BY score DESC
			LIMIT ?
		)
		SELECT player_name, score, country, device_id, submitted_at, rank FROM ranked`
	args := []any{category, limit}

	// The requester branch is wrapped in its own subselect so its ORDER BY
	// and LIMIT bind to the branch, not the whole compound.
	if playerName != "" {
		query += `
		UNION ALL
		SELECT * FROM (
			SELECT player_name, score, country, device_id, submitted_at, rank FROM (
				SELECT player_name, score, country, device_id, submitted_at,
				       RANK() OVER (ORDER BY score DESC) AS rank
				FROM leaderboards
				WHERE category = ?
			)
			WHERE player_name = ?
			AND player_name NOT IN (SELECT player_name FROM ranked)
			ORDER BY score DESC
			LIMIT 1
		)`
		args = append(args, category, playerName)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		var submittedAt time.Time
		if err := rows.Scan(&r.PlayerName, &r.Score, &r.Country, &r.DeviceID, &submittedAt, &r.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		r.SubmittedAt = submittedAt.Format(time.RFC3339)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return out, nil
}

// PlayerStats returns the player's best score, submission count, and rank per
// category, plus service-wide aggregates.
func (s *SQLiteDB) PlayerStats(playerName string) ([]PlayerCategoryStats, *OverallStats, error) {
	rows, err := s.db.Query(
		`WITH player_scores AS (
			SELECT category,
			       MAX(score) AS best_score,
			       COUNT(*) AS submissions,
			       MAX(submitted_at) AS last_submission
			FROM leaderboards
			WHERE player_name = ?
			GROUP BY category
		),
		ranks AS (
			SELECT category, player_name,
			       RANK() OVER (PARTITION BY category ORDER BY score DESC) AS rank
			FROM leaderboards
		)
		SELECT ps.category, ps.best_score, ps.submissions, ps.last_submission,
		       MIN(r.rank) AS rank
		FROM player_scores ps
		LEFT JOIN ranks r ON r.category = ps.category AND r.player_name = ?
		GROUP BY ps.category
		ORDER BY ps.category`,
		playerName, playerName,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query player stats: %w", err)
	}
	defer rows.Close()

	var stats []PlayerCategoryStats
	for rows.Next() {
		var st PlayerCategoryStats
		var lastSubmission sql.NullString
		if err := rows.Scan(&st.Category, &st.BestScore, &st.Submissions, &lastSubmission, &st.Rank); err != nil {
			return nil, nil, fmt.Errorf("failed to scan player stats: %w", err)
		}
		if lastSubmission.Valid {
			st.LastSubmission = formatTimestamp(lastSubmission.String)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate player stats: %w", err)
	}

	var overall OverallStats
	var last sql.NullString
	err = s.db.QueryRow(
		`SELECT COUNT(DISTINCT player_name), COUNT(*), MAX(submitted_at) FROM leaderboards`,
	).Scan(&overall.TotalPlayers, &overall.TotalSubmissions, &last)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query overall stats: %w", err)
	}
	if last.Valid {
		overall.LastGlobalSubmission = formatTimestamp(last.String)
	}
	return stats, &overall, nil
}

// formatTimestamp normalizes a timestamp read back from sqlite to RFC3339.
// Aggregates like MAX(submitted_at) lose the column's DATETIME declaration
// and come back as the raw TEXT the driver stored.
func formatTimestamp(raw string) string {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}

// PutSave upserts the device's cloud save.
func (s *SQLiteDB) PutSave(deviceID string, saveData []byte) (string, error) {
	var savedAt time.Time
	err := s.db.QueryRow(
		`INSERT INTO cloud_saves (device_id, save_data, saved_at, last_accessed)
		 VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT(device_id) DO UPDATE SET
			save_data = excluded.save_data,
			saved_at = CURRENT_TIMESTAMP,
			last_accessed = CURRENT_TIMESTAMP
		 RETURNING saved_at`,
		deviceID, string(saveData),
	).Scan(&savedAt)
	if err != nil {
		return "", fmt.Errorf("failed to upsert save: %w", err)
	}
	return savedAt.UTC().Format(time.RFC3339), nil
}

// GetSave returns the device's save and touches last_accessed. A device with
// no save returns (nil, nil).
func (s *SQLiteDB) GetSave(deviceID string) (*SaveRow, error) {
	var row SaveRow
	var data string
	var savedAt, lastAccessed time.Time
	err := s.db.QueryRow(
		`SELECT device_id, save_data, saved_at, last_accessed
		 FROM cloud_saves WHERE device_id = ?`,
		deviceID,
	).Scan(&row.DeviceID, &data, &savedAt, &lastAccessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get save: %w", err)
	}

	if _, err := s.db.Exec(
		`UPDATE cloud_saves SET last_accessed = CURRENT_TIMESTAMP WHERE device_id = ?`,
		deviceID,
	); err != nil {
		return nil, fmt.Errorf("failed to touch save: %w", err)
	}

	row.SaveData = []byte(data)
	row.SavedAt = savedAt.UTC().Format(time.RFC3339)
	row.LastAccessed = lastAccessed.UTC().Format(time.RFC3339)
	return &row, nil
}

// DeleteSave removes the device's save. Deleting a device with no save is a
// no-op.
func (s *SQLiteDB) DeleteSave(deviceID string) error {
	if _, err := s.db.Exec(`DELETE FROM cloud_saves WHERE device_id = ?`, deviceID); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
