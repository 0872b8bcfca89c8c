// Package leaderboard is the client for the ranking service. Each scoring
// category is an independent board; the client submits per-category scores,
// fetches ranked pages, and keeps a local cache so boards still render
// offline.
package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/game"
)

// Entry is one leaderboard row as the service returns it.
type Entry struct {
	PlayerName  string `json:"player_name"`
	Score       int64  `json:"score"`
	Country     string `json:"country,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
	SubmittedAt string `json:"submitted_at,omitempty"`
	Rank        int64  `json:"rank"`
}

// Identity is the submitting player.
type Identity struct {
	PlayerName string
	DeviceID   string
	Country    string
}

// Page is one fetched board. Stale means the entries came from the local
// cache after a network failure, never from a fresh fetch.
type Page struct {
	Category  game.Category
	Entries   []Entry
	Stale     bool
	FetchedAt time.Time
}

// Cache stores fetched pages for offline display. *localstore.Store
// implements it.
type Cache interface {
	PutCachedLeaderboard(category string, data []byte) error
	GetCachedLeaderboard(category string) ([]byte, time.Time, error)
}

// BoardStore persists the offline backup boards. *localstore.Store
// implements it.
type BoardStore interface {
	PutLocalBoard(category string, data []byte) error
	GetLocalBoard(category string) ([]byte, error)
}

// Config holds configuration for the leaderboard client.
type Config struct {
	// BaseURL is the service root. Required.
	BaseURL string

	// Cache receives every successfully fetched page and serves fallbacks on
	// network failure. Optional; without it a failed fetch is just an error.
	Cache Cache

	// Local receives every submitted score as an offline backup board,
	// whether or not the service accepted it. Optional.
	Local BoardStore

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with 15s timeout.
	HTTPClient *http.Client
}

// Client talks to the leaderboard service.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a leaderboard client with the given configuration.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

type submitRequest struct {
	PlayerName string `json:"playerName"`
	Score      int64  `json:"score"`
	Category   string `json:"category"`
	DeviceID   string `json:"deviceId,omitempty"`
	Country    string `json:"country,omitempty"`
}

type submitResponse struct {
	Success bool  `json:"success"`
	Rank    int64 `json:"rank"`
	Score   int64 `json:"score"`
}

// Submit posts one score and returns the player's rank on that board.
func (c *Client) Submit(ctx context.Context, category game.Category, score int64, id Identity) (int64, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("leaderboard: unknown category %q", category)
	}
	if id.PlayerName == "" {
		return 0, fmt.Errorf("leaderboard: player name is required")
	}

	body, err := json.Marshal(submitRequest{
		PlayerName: id.PlayerName,
		Score:      score,
		Category:   string(category),
		DeviceID:   id.DeviceID,
		Country:    id.Country,
	})
	if err != nil {
		return 0, fmt.Errorf("leaderboard: marshal submit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.config.BaseURL, "/")+"/submit", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("leaderboard: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.roundTrip(req)
	if err != nil {
		return 0, err
	}
	var resp submitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("leaderboard: decode submit response: %w", err)
	}
	if !resp.Success {
		return 0, fmt.Errorf("leaderboard: submit rejected")
	}
	return resp.Rank, nil
}

// Report summarizes a SubmitAll run.
type Report struct {
	Submitted    int
	BestRank     int64
	BestCategory game.Category
	Failed       []game.Category
}

// SubmitAll submits every positive category score and keeps going past
// individual failures. The report carries the player's best rank across the
// boards that accepted.
func (c *Client) SubmitAll(ctx context.Context, scores map[game.Category]int64, id Identity) Report {
	report := Report{BestRank: 0}
	for _, category := range game.Categories {
		score, ok := scores[category]
		if !ok || score <= 0 {
			continue
		}
		c.recordLocal(category, score, id)
		rank, err := c.Submit(ctx, category, score, id)
		if err != nil {
			report.Failed = append(report.Failed, category)
			continue
		}
		report.Submitted++
		if rank > 0 && (report.BestRank == 0 || rank < report.BestRank) {
			report.BestRank = rank
			report.BestCategory = category
		}
	}
	return report
}

// recordLocal writes the score onto the category's backup board. Backup
// failures never interrupt a submission run.
func (c *Client) recordLocal(category game.Category, score int64, id Identity) {
	if c.config.Local == nil {
		return
	}
	var board []LocalEntry
	if raw, err := c.config.Local.GetLocalBoard(string(category)); err == nil && raw != nil {
		if err := json.Unmarshal(raw, &board); err != nil {
			board = nil
		}
	}
	boards := LocalBoards{string(category): board}
	boards.Add(string(category), LocalEntry{
		Name:     id.PlayerName,
		Score:    score,
		Date:     time.Now().UTC().Format(time.RFC3339),
		Category: string(category),
	})
	data, err := json.Marshal(boards.Top(string(category)))
	if err != nil {
		return
	}
	c.config.Local.PutLocalBoard(string(category), data)
}

// Summary renders the report as a player-facing message. Top-three and
// top-ten placements get their own lines.
func (r Report) Summary() string {
	if r.Submitted == 0 {
		if len(r.Failed) > 0 {
			return "Score submission failed"
		}
		return "No scores to submit"
	}
	switch {
	case r.BestRank > 0 && r.BestRank <= 3:
		return fmt.Sprintf("Amazing! Rank #%d in %s!", r.BestRank, game.CategoryNames[r.BestCategory])
	case r.BestRank > 0 && r.BestRank <= 10:
		return fmt.Sprintf("Top 10! Rank #%d in %s", r.BestRank, game.CategoryNames[r.BestCategory])
	case r.BestRank > 0:
		return fmt.Sprintf("Scores submitted, best rank #%d", r.BestRank)
	}
	return "Scores submitted"
}

type fetchResponse struct {
	Success     bool    `json:"success"`
	Category    string  `json:"category"`
	Leaderboard []Entry `json:"leaderboard"`
}

// FetchTop returns the top entries for a category, deduplicated by player
// name (first occurrence kept) and truncated to limit. When requestingPlayer
// is set the service appends that player's own row even if it ranks outside
// the limit, and dedup preserves it. On network failure the last cached page
// is returned marked stale; with no cache the error is surfaced.
func (c *Client) FetchTop(ctx context.Context, category game.Category, limit int, requestingPlayer string) (Page, error) {
	if !category.Valid() {
		return Page{}, fmt.Errorf("leaderboard: unknown category %q", category)
	}
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("category", string(category))
	q.Set("limit", strconv.Itoa(limit))
	if requestingPlayer != "" {
		q.Set("playerName", requestingPlayer)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.config.BaseURL, "/")+"/leaderboard?"+q.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("leaderboard: create request: %w", err)
	}

	raw, err := c.roundTrip(req)
	if err != nil {
		return c.cachedPage(category, err)
	}
	var resp fetchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return c.cachedPage(category, fmt.Errorf("leaderboard: decode fetch response: %w", err))
	}
	if !resp.Success {
		return c.cachedPage(category, fmt.Errorf("leaderboard: fetch rejected"))
	}

	entries := dedupe(resp.Leaderboard, limit, requestingPlayer)
	now := time.Now()
	if c.config.Cache != nil {
		if cached, err := json.Marshal(entries); err == nil {
			_ = c.config.Cache.PutCachedLeaderboard(string(category), cached)
		}
	}
	return Page{Category: category, Entries: entries, FetchedAt: now}, nil
}

func (c *Client) cachedPage(category game.Category, cause error) (Page, error) {
	if c.config.Cache == nil {
		return Page{}, cause
	}
	raw, fetchedAt, err := c.config.Cache.GetCachedLeaderboard(string(category))
	if err != nil || raw == nil {
		return Page{}, cause
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Page{}, cause
	}
	return Page{Category: category, Entries: entries, Stale: true, FetchedAt: fetchedAt}, nil
}

// dedupe keeps the first occurrence per player. The board arrives ranked
// best-first, so first occurrence is the player's best row. The requesting
// player's appended row survives truncation.
func dedupe(entries []Entry, limit int, requestingPlayer string) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, limit)
	var requester *Entry
	for i := range entries {
		e := entries[i]
		if seen[e.PlayerName] {
			continue
		}
		seen[e.PlayerName] = true
		if len(out) < limit {
			out = append(out, e)
		} else if e.PlayerName == requestingPlayer && requester == nil {
			requester = &e
		}
	}
	if requester != nil {
		out = append(out, *requester)
	}
	return out
}

// CategoryStats is one row of a player's per-category standing.
type CategoryStats struct {
	Category       string `json:"category"`
	BestScore      int64  `json:"best_score"`
	Submissions    int64  `json:"submissions"`
	LastSubmission string `json:"last_submission"`
	Rank           int64  `json:"rank"`
}

// OverallStats aggregates the whole service.
type OverallStats struct {
	TotalPlayers         int64  `json:"total_players"`
	TotalSubmissions     int64  `json:"total_submissions"`
	LastGlobalSubmission string `json:"last_global_submission"`
}

type statsResponse struct {
	Success bool            `json:"success"`
	Stats   []CategoryStats `json:"stats"`
	Overall OverallStats    `json:"overall"`
}

// PlayerStats fetches a player's best score, submission count, and rank per
// category, plus service-wide totals.
func (c *Client) PlayerStats(ctx context.Context, playerName string) ([]CategoryStats, OverallStats, error) {
	if playerName == "" {
		return nil, OverallStats{}, fmt.Errorf("leaderboard: player name is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.config.BaseURL, "/")+"/player-stats?playerName="+url.QueryEscape(playerName), nil)
	if err != nil {
		return nil, OverallStats{}, fmt.Errorf("leaderboard: create request: %w", err)
	}

	raw, err := c.roundTrip(req)
	if err != nil {
		return nil, OverallStats{}, err
	}
	var resp statsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, OverallStats{}, fmt.Errorf("leaderboard: decode stats response: %w", err)
	}
	if !resp.Success {
		return nil, OverallStats{}, fmt.Errorf("leaderboard: stats rejected")
	}
	return resp.Stats, resp.Overall, nil
}

func (c *Client) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("leaderboard: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
