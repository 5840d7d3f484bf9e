package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter/internal/config"
	"github.com/jonathan/cover-letter/internal/db"
	"github.com/jonathan/cover-letter/internal/fetch"
	"github.com/jonathan/cover-letter/internal/llm"
	"github.com/jonathan/cover-letter/internal/narrative"
	"github.com/jonathan/cover-letter/internal/parsing"
	"github.com/jonathan/cover-letter/internal/pipeline"
)

// app holds the wired pipeline and the resources it must release.
type app struct {
	pipeline *pipeline.Pipeline
	gateway  *llm.Gateway
	database *db.DB
	logger   zerolog.Logger
}

// newApp wires the retriever, AI gateway, extractor, narrator and optional store from cfg.
// Step headlines go to out.
func newApp(ctx context.Context, cfg config.Config, out io.Writer, logger zerolog.Logger) (*app, error) {
	retriever := fetch.NewRetriever(nil, &fetch.RetrieverOptions{
		MaxRetries:     cfg.MaxRetries,
		SettleDelay:    cfg.SettleDelay(),
		BodyTimeout:    cfg.BodyTimeout(),
		HostingDomains: cfg.HostingDomains,
	}, logger)

	gateway, err := llm.NewGateway(cfg.APIKeys, llm.NewClientFactory(llm.ConfigForModel(cfg.Model)), llm.GatewayOptions{
		Retries: cfg.AIRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &app{gateway: gateway, logger: logger}
	deps := pipeline.Deps{
		Retriever: retriever,
		Extractor: parsing.NewExtractor(gateway, parsing.ExtractorOptions{}, logger),
		Narrator:  narrative.NewGenerator(gateway, logger),
	}

	// Database is optional; runs proceed without persistence when it is unreachable
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to database, continuing without persistence")
		} else if err := database.EnsureSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to prepare database schema, continuing without persistence")
			database.Close()
		} else {
			a.database = database
			deps.Store = database
		}
	}

	a.pipeline = pipeline.NewWithOutput(deps, out, logger)
	return a, nil
}

func (a *app) Close() {
	if err := a.gateway.Close(); err != nil {
		a.logger.Debug().Err(err).Msg("Failed to close AI clients")
	}
	if a.database != nil {
		a.database.Close()
	}
}
