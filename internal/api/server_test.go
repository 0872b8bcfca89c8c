package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/element-fusion/element-fusion-go/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	srv := httptest.NewServer(NewServer(db).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return doc
}

func TestSubmitAndLeaderboard(t *testing.T) {
	srv := newTestServer(t)

	for i, sub := range []map[string]any{
		{"playerName": "Ada", "score": 900, "category": "totalScore", "deviceId": "d1", "country": "GB"},
		{"playerName": "Grace", "score": 800, "category": "totalScore", "deviceId": "d2", "country": "US"},
		{"playerName": "Marie", "score": 700, "category": "totalScore", "deviceId": "d3", "country": "FR"},
	} {
		resp, doc := postJSON(t, srv.URL+"/submit", sub)
		if resp.StatusCode != 200 || doc["success"] != true {
			t.Fatalf("submit %d: status %d body %v", i, resp.StatusCode, doc)
		}
		if doc["rank"] != float64(i+1) {
			t.Errorf("submit %d rank = %v", i, doc["rank"])
		}
	}

	resp, doc := getJSON(t, srv.URL+"/leaderboard?category=totalScore&limit=2&playerName=Marie")
	if resp.StatusCode != 200 || doc["success"] != true {
		t.Fatalf("leaderboard: status %d body %v", resp.StatusCode, doc)
	}
	board, ok := doc["leaderboard"].([]any)
	if !ok || len(board) != 3 {
		t.Fatalf("leaderboard = %v, want top 2 plus requester", doc["leaderboard"])
	}
	last := board[2].(map[string]any)
	if last["player_name"] != "Marie" || last["rank"] != float64(3) {
		t.Errorf("requester row = %v", last)
	}
}

func TestSubmitValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, doc := postJSON(t, srv.URL+"/submit", map[string]any{"playerName": "Ada"})
	if resp.StatusCode != 400 || doc["error"] != "Missing required fields" {
		t.Errorf("missing fields: status %d body %v", resp.StatusCode, doc)
	}

	// Zero is a value, not a missing field.
	resp, _ = postJSON(t, srv.URL+"/submit", map[string]any{
		"playerName": "Ada", "score": 0, "category": "totalScore",
	})
	if resp.StatusCode != 200 {
		t.Errorf("score 0 rejected with %d", resp.StatusCode)
	}

	resp, doc = postJSON(t, srv.URL+"/submit", map[string]any{
		"playerName": "Ada", "score": 1, "category": "bogus",
	})
	if resp.StatusCode != 400 || doc["error"] != "Unknown category" {
		t.Errorf("bad category: status %d body %v", resp.StatusCode, doc)
	}
}

func TestPlayerStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/submit", map[string]any{
		"playerName": "Marie", "score": 700, "category": "totalScore",
	})
	postJSON(t, srv.URL+"/submit", map[string]any{
		"playerName": "Marie", "score": 12, "category": "elementsFound",
	})

	resp, doc := getJSON(t, srv.URL+"/player-stats?playerName=Marie")
	if resp.StatusCode != 200 || doc["success"] != true {
		t.Fatalf("player-stats: status %d body %v", resp.StatusCode, doc)
	}
	stats, ok := doc["stats"].([]any)
	if !ok || len(stats) != 2 {
		t.Errorf("stats = %v", doc["stats"])
	}

	resp, doc = getJSON(t, srv.URL+"/player-stats")
	if resp.StatusCode != 400 || doc["error"] != "Missing playerName parameter" {
		t.Errorf("missing name: status %d body %v", resp.StatusCode, doc)
	}
}

func TestSaveLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Loading before any save succeeds with a null saveData.
	resp, doc := getJSON(t, srv.URL+"/save?deviceId=device_abc")
	if resp.StatusCode != 200 || doc["success"] != true {
		t.Fatalf("get empty: status %d body %v", resp.StatusCode, doc)
	}
	if doc["saveData"] != nil {
		t.Errorf("saveData = %v, want null", doc["saveData"])
	}

	resp, doc = postJSON(t, srv.URL+"/save", map[string]any{
		"deviceId":   "device_abc",
		"saveData":   map[string]any{"version": "1.0", "timestamp": 1},
		"playerName": "Marie",
		"version":    "1.0",
	})
	if resp.StatusCode != 200 || doc["success"] != true {
		t.Fatalf("put: status %d body %v", resp.StatusCode, doc)
	}
	if doc["savedAt"] == nil || doc["deviceId"] != "device_abc" {
		t.Errorf("put response = %v", doc)
	}

	resp, doc = getJSON(t, srv.URL+"/save?deviceId=device_abc")
	if resp.StatusCode != 200 {
		t.Fatalf("get: status %d", resp.StatusCode)
	}
	saved, ok := doc["saveData"].(map[string]any)
	if !ok || saved["version"] != "1.0" {
		t.Errorf("saveData = %v", doc["saveData"])
	}
	if doc["lastSaved"] == nil {
		t.Error("lastSaved missing")
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/save?deviceId=device_abc", nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delDoc := decodeBody(t, delResp)
	if delResp.StatusCode != 200 || delDoc["success"] != true {
		t.Fatalf("delete: status %d body %v", delResp.StatusCode, delDoc)
	}

	_, doc = getJSON(t, srv.URL+"/save?deviceId=device_abc")
	if doc["saveData"] != nil {
		t.Errorf("save survived delete: %v", doc["saveData"])
	}
}

func TestSaveValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, doc := postJSON(t, srv.URL+"/save", map[string]any{
		"saveData": map[string]any{"version": "1.0"},
	})
	if resp.StatusCode != 400 || doc["error"] != "Device ID and save data are required" {
		t.Errorf("missing device: status %d body %v", resp.StatusCode, doc)
	}

	resp, doc = postJSON(t, srv.URL+"/save", map[string]any{
		"deviceId": "device_abc",
		"saveData": "not an object",
	})
	if resp.StatusCode != 400 || doc["error"] != "Save data must be a valid JSON object" {
		t.Errorf("scalar saveData: status %d body %v", resp.StatusCode, doc)
	}

	resp, doc = getJSON(t, srv.URL+"/save")
	if resp.StatusCode != 400 || doc["error"] != "Device ID is required" {
		t.Errorf("get without device: status %d body %v", resp.StatusCode, doc)
	}
}

func TestSaveTooLarge(t *testing.T) {
	srv := newTestServer(t)

	padding := strings.Repeat("x", maxSaveBytes)
	body := fmt.Sprintf(`{"deviceId":"device_abc","saveData":{"version":"1.0","padding":"%s"}}`, padding)
	resp, err := http.Post(srv.URL+"/save", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	doc := decodeBody(t, resp)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
	if doc["error"] != "Save data too large (max 1MB)" {
		t.Errorf("error = %v", doc["error"])
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("health = %d", resp.StatusCode)
	}
}
