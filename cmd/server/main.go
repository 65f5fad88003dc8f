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

	"dayslot/internal/api"
	"dayslot/internal/db"
	"dayslot/pkg/board"
	"dayslot/pkg/feed"
	"dayslot/pkg/pill"
	"dayslot/pkg/slot"
	"dayslot/pkg/task"
)

func main() {
	ctx := context.Background()

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	store := task.NewPgStore(pool)
	if err := store.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure tasks table: %v", err)
	}

	cal := slot.NewDay()
	changes := feed.New()
	b := board.New(cal, store, changes)
	pills := pill.NewTrack(cal, changes)

	// hydrate once, before any mutation can arrive
	if err := b.Load(ctx); err != nil {
		log.Fatalf("load tasks: %v", err)
	}

	server := api.New(b, pills, changes)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: server}
	go func() {
		log.Printf("dayslot listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// stop accepting requests and let in-flight ones finish before the
	// board shuts its writer down
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// drain queued persistence writes before exiting
	b.Close()
	log.Printf("dayslot stopped")
}
