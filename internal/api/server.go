// Package api serves the leaderboard and cloud-save HTTP endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/element-fusion/element-fusion-go/internal/game"
	"github.com/element-fusion/element-fusion-go/internal/store"
)

// maxSaveBytes caps an uploaded save document.
const maxSaveBytes = 1 << 20

// Server handles HTTP requests.
type Server struct {
	db        store.DB
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server.
func NewServer(db store.DB) *Server {
	return &Server{
		db:        db,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(s.corsMiddleware)

	r.Post("/submit", s.handleSubmit)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/player-stats", s.handlePlayerStats)

	r.Post("/save", s.handlePutSave)
	r.Get("/save", s.handleGetSave)
	r.Delete("/save", s.handleDeleteSave)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, reason string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   reason,
	})
}

type submitRequest struct {
	PlayerName string `json:"playerName"`
	Score      *int64 `json:"score"`
	Category   string `json:"category"`
	DeviceID   string `json:"deviceId"`
	Country    string `json:"country"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.PlayerName == "" || req.Score == nil || req.Category == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !game.Category(req.Category).Valid() {
		s.writeError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	result, err := s.db.SubmitScore(&store.Submission{
		PlayerName: req.PlayerName,
		Score:      *req.Score,
		Category:   req.Category,
		DeviceID:   req.DeviceID,
		Country:    req.Country,
	})
	if err != nil {
		s.logger.Printf("submit score: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to submit score")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"rank":    result.Rank,
		"score":   result.Score,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = string(game.CategoryTotalScore)
	}
	if !game.Category(category).Valid() {
		s.writeError(w, http.StatusBadRequest, "Unknown category")
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	playerName := r.URL.Query().Get("playerName")

	rows, err := s.db.TopScores(category, limit, playerName)
	if err != nil {
		s.logger.Printf("fetch leaderboard: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	if rows == nil {
		rows = []store.ScoreRow{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"category":    category,
		"leaderboard": rows,
	})
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	playerName := r.URL.Query().Get("playerName")
	if playerName == "" {
		s.writeError(w, http.StatusBadRequest, "Missing playerName parameter")
		return
	}

	stats, overall, err := s.db.PlayerStats(playerName)
	if err != nil {
		s.logger.Printf("fetch player stats: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch player stats")
		return
	}
	if stats == nil {
		stats = []store.PlayerCategoryStats{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
		"overall": overall,
	})
}

type putSaveRequest struct {
	DeviceID   string          `json:"deviceId"`
	SaveData   json.RawMessage `json:"saveData"`
	PlayerName string          `json:"playerName"`
	Version    string          `json:"version"`
}

func (s *Server) handlePutSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSaveBytes)

	var req putSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Save data too large (max 1MB)")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.DeviceID == "" || len(req.SaveData) == 0 || string(req.SaveData) == "null" {
		s.writeError(w, http.StatusBadRequest, "Device ID and save data are required")
		return
	}

	// saveData must be a JSON object, not a scalar or array.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(req.SaveData, &probe); err != nil {
		s.writeError(w, http.StatusBadRequest, "Save data must be a valid JSON object")
		return
	}

	savedAt, err := s.db.PutSave(req.DeviceID, req.SaveData)
	if err != nil {
		s.logger.Printf("put save: %v", err)
		s.writeError(w, http.StatusServiceUnavailable, "Database connection error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Save successful",
		"savedAt":  savedAt,
		"deviceId": req.DeviceID,
	})
}

func (s *Server) handleGetSave(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		s.writeError(w, http.StatusBadRequest, "Device ID is required")
		return
	}

	row, err := s.db.GetSave(deviceID)
	if err != nil {
		s.logger.Printf("get save: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load save data")
		return
	}

	// No save is an ordinary answer, not an error.
	var saveData json.RawMessage
	var lastSaved any
	if row != nil {
		saveData = row.SaveData
		lastSaved = row.SavedAt
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"saveData":  saveData,
		"lastSaved": lastSaved,
	})
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		s.writeError(w, http.StatusBadRequest, "Device ID is required")
		return
	}

	if err := s.db.DeleteSave(deviceID); err != nil {
		s.logger.Printf("delete save: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to delete save data")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Save data deleted",
	})
}
