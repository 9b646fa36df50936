package main

import (
	"context"
	"os"

	"pricerecommender/config"
	"pricerecommender/httpapi"
	"pricerecommender/matching"
	"pricerecommender/mlmodel"
	"pricerecommender/orchestrator"
	"pricerecommender/reqcache"
	"pricerecommender/scraper/marketplace"
	"pricerecommender/storage"
	"pricerecommender/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Price Recommendation System starting ===")
	logger.Info("Config — backend: %s | cache_ttl: %s | max_listings: %d | max_internal_matches: %d",
		cfg.DataBackend, cfg.CacheTTL, cfg.MaxListings, cfg.MaxInternalMatches)

	dataSource, err := openDataSource(cfg, logger)
	if err != nil {
		logger.Error("Failed to open internal data source: %v", err)
		os.Exit(1)
	}
	defer dataSource.Close()

	records, err := dataSource.LoadAll()
	if err != nil {
		logger.Error("Failed to load internal records: %v", err)
		os.Exit(1)
	}
	logger.Info("Loaded %d internal record(s) from %s backend", len(records), cfg.DataBackend)

	engine := matching.New(records, cfg.MaxInternalMatches)

	session := marketplace.New(marketplace.Config{
		MaxListings: cfg.MaxListings,
		Timeout:     cfg.ScrapeTimeout,
		DelayMin:    cfg.ScrapeDelayMin,
		DelayMax:    cfg.ScrapeDelayMax,
		Headless:    cfg.Headless,
	}, logger)

	if err := session.Start(context.Background()); err != nil {
		logger.Error("Failed to start scrape session: %v", err)
		os.Exit(1)
	}
	defer session.Stop()

	vocab, err := mlmodel.LoadVocab(cfg.VocabPath)
	if err != nil {
		logger.Warn("Feature vocabulary unavailable, falling back to unknown-bucket categoricals and zero-filled numerics: %v", err)
	}

	adapter, err := mlmodel.Load(cfg.ModelPath, cfg.VocabPath)
	if err != nil {
		logger.Warn("ML model unavailable, recommendations will fall back to market/internal blending: %v", err)
	}

	cache := reqcache.New(cfg.CacheTTL)
	orch := orchestrator.New(engine, session, adapter, vocab, cache, logger)

	server := httpapi.New(orch, cache)

	logger.Info("Listening on :%s", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		logger.Error("HTTP server exited: %v", err)
		os.Exit(1)
	}
}

func openDataSource(cfg *config.Config, logger *utils.Logger) (storage.DataSource, error) {
	if cfg.DataBackend == "postgres" {
		return storage.NewPostgresSource(cfg.DSN(), logger)
	}
	return storage.NewCSVSource(cfg.InternalDataPath)
}
