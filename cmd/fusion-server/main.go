// fusion-server hosts the leaderboard and cloud-save endpoints backed by
// SQLite.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/api"
	"github.com/element-fusion/element-fusion-go/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	addr := os.Getenv("FUSION_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dbPath := os.Getenv("FUSION_DB")
	if dbPath == "" {
		dbPath = "fusion.db"
	}

	db, err := store.NewSQLiteDB(dbPath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewServer(db).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s (db %s)", addr, dbPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
