package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paperdeck/paperdeck/internal/config"
	db "github.com/paperdeck/paperdeck/internal/core/database"
	"github.com/paperdeck/paperdeck/internal/core/extraction"
	"github.com/paperdeck/paperdeck/internal/core/llm"
	"github.com/paperdeck/paperdeck/internal/core/objectstore"
	"github.com/paperdeck/paperdeck/internal/core/vectorstore"
	"github.com/paperdeck/paperdeck/internal/services/analyzer"
	"github.com/paperdeck/paperdeck/internal/services/chat"
	"github.com/paperdeck/paperdeck/internal/services/documents"
)

// App owns every long-lived component: clients, services and the HTTP server.
type App struct {
	DBClient *db.DatabaseClient
	Analyzer *analyzer.Analyzer
	Server   *Server

	closers []func() error
}

// NewApp builds and wires the whole application from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(initCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	log.Info().Msg("database initialized and ready")

	objClient, err := objectstore.NewS3Client(initCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init: %w", err)
	}
	log.Info().Msg("object storage initialized and ready")

	embedder, err := llm.NewGeminiEmbedder(initCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("embedder init: %w", err)
	}

	chatModel, err := llm.NewGeminiChat(initCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("chat model init: %w", err)
	}

	visionModel, err := llm.NewGeminiVision(initCtx, cfg.AIAPIKey, cfg.VisionModel)
	if err != nil {
		return nil, fmt.Errorf("vision model init: %w", err)
	}

	store := vectorstore.NewPgStore(dbClient.SQL())

	transcriber := extraction.NewTranscriber(
		objClient, visionModel, cfg.BucketName,
		time.Duration(cfg.SignedURLTTL)*time.Second,
	)

	analyzerSvc := analyzer.New(
		dbClient, objClient, store, embedder, transcriber,
		cfg.BucketName, cfg.Namespace, 64,
	)
	docSvc := documents.New(dbClient, objClient, store, cfg.BucketName, cfg.Namespace)
	chatSvc := chat.New(dbClient, store, embedder, chatModel, cfg.Namespace)

	server := NewServer(cfg, dbClient, docSvc, chatSvc, analyzerSvc)

	return &App{
		DBClient: dbClient,
		Analyzer: analyzerSvc,
		Server:   server,
		closers: []func() error{
			embedder.Close,
			chatModel.Close,
			visionModel.Close,
			dbClient.Close,
		},
	}, nil
}

func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}
