// Package store is the service-side database layer backing the leaderboard
// and cloud-save endpoints.
package store

// DB is the storage interface consumed by the API server.
type DB interface {
	Close() error
	Migrate() error

	SubmitScore(sub *Submission) (*SubmitResult, error)
	TopScores(category string, limit int, playerName string) ([]ScoreRow, error)
	PlayerStats(playerName string) ([]PlayerCategoryStats, *OverallStats, error)

	PutSave(deviceID string, saveData []byte) (savedAt string, err error)
	GetSave(deviceID string) (*SaveRow, error)
	DeleteSave(deviceID string) error
}

// Submission is one incoming score row.
type Submission struct {
	PlayerName string `json:"playerName"`
	Score      int64  `json:"score"`
	Category   string `json:"category"`
	DeviceID   string `json:"deviceId"`
	Country    string `json:"country"`
}

// SubmitResult is the accepted row plus the player's resulting rank on that
// board.
type SubmitResult struct {
	Rank  int64 `json:"rank"`
	Score int64 `json:"score"`
}

// ScoreRow is one ranked leaderboard row.
type ScoreRow struct {
	PlayerName  string `json:"player_name"`
	Score       int64  `json:"score"`
	Country     string `json:"country"`
	DeviceID    string `json:"device_id"`
	SubmittedAt string `json:"submitted_at"`
	Rank        int64  `json:"rank"`
}

// PlayerCategoryStats is a player's standing on one board.
type PlayerCategoryStats struct {
	Category       string `json:"category"`
	BestScore      int64  `json:"best_score"`
	Submissions    int64  `json:"submissions"`
	LastSubmission string `json:"last_submission"`
	Rank           int64  `json:"rank"`
}

// OverallStats aggregates across all boards.
type OverallStats struct {
	TotalPlayers         int64  `json:"total_players"`
	TotalSubmissions     int64  `json:"total_submissions"`
	LastGlobalSubmission string `json:"last_global_submission"`
}

// SaveRow is one stored cloud save.
type SaveRow struct {
	DeviceID     string `json:"deviceId"`
	SaveData     []byte `json:"saveData"`
	SavedAt      string `json:"savedAt"`
	LastAccessed string `json:"lastAccessed"`
}
