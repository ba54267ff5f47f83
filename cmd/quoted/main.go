package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vsinha/quoting/pkg/application/services"
	"github.com/vsinha/quoting/pkg/domain/repositories"
	"github.com/vsinha/quoting/pkg/infrastructure/config"
	"github.com/vsinha/quoting/pkg/infrastructure/events"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/postgres"
	quotehttp "github.com/vsinha/quoting/pkg/interfaces/http"
)

const (
	eventsPerQuote = 50
	eventsRetained = 10000
)

type quoteStore interface {
	repositories.QuoteRepository
	repositories.QuoteWriter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open quote store: %v", err)
	}
	defer closeStore()

	eventStore := events.NewBoundedEventStore(eventsPerQuote, eventsRetained)
	if err := eventStore.Subscribe([]string{events.EffectsRecomputedEvent}, events.NewRecomputeLogger(log.Default())); err != nil {
		log.Fatalf("subscribe recompute logger: %v", err)
	}

	svc := services.NewQuoteService(store, eventStore)
	warmUp(ctx, svc, store)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      quotehttp.NewRouter(svc, store, cfg.RequestTimeout),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting server on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// openStore picks PostgreSQL when DATABASE_URL is set, otherwise it serves the
// CSV scenario from memory
func openStore(ctx context.Context, cfg config.Config) (quoteStore, func(), error) {
	if cfg.UsesDatabase() {
		repo, err := postgres.Open(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
		if err != nil {
			return nil, nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		log.Printf("serving quotes from PostgreSQL")
		return repo, repo.Close, nil
	}

	snapshots, err := csv.NewLoader().LoadScenario(cfg.ScenarioDir)
	if err != nil {
		return nil, nil, err
	}
	repo := memory.NewQuoteRepository(len(snapshots))
	for _, snapshot := range snapshots {
		if err := repo.SaveSnapshot(ctx, snapshot); err != nil {
			return nil, nil, err
		}
	}
	log.Printf("serving %d quotes from scenario %s", len(snapshots), cfg.ScenarioDir)
	return repo, func() {}, nil
}

// warmUp recomputes every stored quote; a quote that fails stays unloaded and
// is retried on first request
func warmUp(ctx context.Context, svc *services.QuoteService, repo repositories.QuoteRepository) {
	ids, err := repo.ListQuoteIDs(ctx)
	if err != nil {
		log.Printf("list quotes: %v", err)
		return
	}
	for _, id := range ids {
		if _, err := svc.Load(ctx, id); err != nil {
			log.Printf("quote %s not loaded: %v", id, err)
		}
	}
}
