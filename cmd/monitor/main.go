package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/collector"
	"github.com/navillusj/ASX-Share-Monitor/internal/config"
	"github.com/navillusj/ASX-Share-Monitor/internal/monitor"
	"github.com/navillusj/ASX-Share-Monitor/internal/recorder"
	"github.com/navillusj/ASX-Share-Monitor/internal/store"
	"github.com/navillusj/ASX-Share-Monitor/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] ASX Share Monitor starting...")
	start := time.Now()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher and collector
	fetcher := collector.NewYahooFetcher(cfg.Provider.BaseURL, cfg.Provider.Proxy, cfg.Provider.RateLimit)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher)

	// Init stores
	symStore, err := store.NewSymbolStore(cfg.Storage.SymbolsFile)
	if err != nil {
		log.Fatalf("[FATAL] init symbol store: %v", err)
	}
	setStore := store.NewSettingsStore(cfg.Storage.SettingsFile)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coord := monitor.New(col, symStore, setStore, rec, monitor.Options{
		Workers:      cfg.Monitor.Workers,
		RefreshEvery: cfg.Monitor.RefreshInterval.Std(),
	})

	// The first fetch is held back briefly so the process settles before
	// hitting the provider.
	if wait := cfg.Monitor.MinFetchWait.Std(); wait > 0 {
		time.Sleep(wait)
	}
	if err := coord.Start(ctx); err != nil {
		log.Fatalf("[FATAL] start coordinator: %v", err)
	}
	defer coord.Stop()

	// Hold the "starting" phase until the first batch merges, bounded so a
	// dead provider cannot stall startup forever.
	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := coord.WaitFirstBatch(waitCtx); err != nil {
		log.Printf("[WARN] first fetch batch not ready yet: %v", err)
	}
	waitCancel()
	if rem := cfg.Monitor.MinStartupWait.Std() - time.Since(start); rem > 0 {
		time.Sleep(rem)
	}
	log.Printf("[INFO] monitoring %d symbols every %s", len(coord.Symbols()), cfg.Monitor.RefreshInterval.Std())

	srv := web.NewServer(cfg.Server.ListenAddr, coord)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] ASX Share Monitor is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	cancel()
	if err := symStore.Save(); err != nil {
		log.Printf("[WARN] saving symbols: %v", err)
	}
	log.Println("[INFO] ASX Share Monitor stopped")
}
