// Package app wires the clause adapters and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/clause/internal/adapters/driven/ai"
	"github.com/custodia-labs/clause/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clause/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clause/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clause/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/clause/internal/adapters/driving/cli"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/core/services"
	"github.com/custodia-labs/clause/internal/logger"
	"github.com/custodia-labs/clause/internal/normalisers"
	"github.com/custodia-labs/clause/internal/normalisers/markdown"
	"github.com/custodia-labs/clause/internal/normalisers/plaintext"
	"github.com/custodia-labs/clause/internal/normalisers/yamldoc"
	"github.com/custodia-labs/clause/internal/postprocessors"
)

var _ cli.Bootstrapper = (*Bootstrap)(nil)

// Bootstrap builds the configuration layer and the answering pipeline for the CLI.
type Bootstrap struct {
	home string

	// createEmbedder and createLLMPool are replaced in tests.
	createEmbedder func(ctx context.Context, s *domain.EmbeddingSettings) (driven.EmbeddingService, error)
	createLLMPool  func(s *domain.LLMSettings, size int) ([]driven.LLMService, error)
}

// New creates a bootstrapper using the real provider factories.
func New() *Bootstrap {
	return &Bootstrap{
		createEmbedder: ai.CreateAndValidateEmbeddingService,
		createLLMPool:  ai.CreateLLMPool,
	}
}

// Settings opens config.toml under home (default ~/.clause) and loads the
// effective configuration. An invalid configuration is reported through
// Settings.ConfigErr so it can still be inspected and fixed.
func (b *Bootstrap) Settings(home string) (*cli.Settings, error) {
	if home == "" {
		dir, err := file.DefaultHomeDir()
		if err != nil {
			return nil, err
		}
		home = dir
	}
	b.home = home

	store, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg, cfgErr := services.LoadConfig(store)
	if cfgErr != nil {
		logger.Debug("config %s is invalid: %v", store.Path(), cfgErr)
	}

	return &cli.Settings{
		Store:       store,
		Config:      cfg,
		ConfigErr:   cfgErr,
		PromptDir:   filepath.Join(home, "prompts"),
		PromptNames: file.Names(),
		Validator:   ai.NewConfigValidator(),
		CheckValue:  candidateCheck(store),
	}, nil
}

// Services wires storage, providers and services from valid settings.
// Every resource opened so far is released if a later step fails.
func (b *Bootstrap) Services(ctx context.Context, settings *cli.Settings) (svc *cli.Services, err error) {
	if settings.ConfigErr != nil {
		return nil, settings.ConfigErr
	}
	cfg := settings.Config
	logger.Section("Bootstrap")

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	store, err := sqlite.NewStore(filepath.Join(b.home, "data"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	closers = append(closers, store.Close)
	logger.Debug("store: %s", store.Path())

	docs := store.DocumentStore()

	index, err := openVectorIndex(ctx, cfg.Vector, store, docs)
	if err != nil {
		return nil, err
	}
	closers = append(closers, index.Close)

	embedder, err := b.createEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		// history and document commands still work without embeddings
		logger.Error("%v", err)
		embedder = nil
	}
	if embedder != nil {
		closers = append(closers, embedder.Close)
	}

	handles, err := b.createLLMPool(&cfg.LLM, cfg.Generation.PoolSize)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrLLMUnavailable):
		logger.Warn("%v", err)
		handles = nil
	default:
		return nil, err
	}
	pool := services.NewGeneratorPool(handles, services.NewRateLimiter(cfg.Generation.RequestsPerMinute))
	closers = append(closers, pool.Close)
	logger.Debug("generator pool: %d handle(s)", pool.Size())

	prompts, err := file.NewPromptStore(settings.PromptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	pipeline, err := postprocessors.NewIngestPipeline(cfg.Ingest)
	if err != nil {
		return nil, fmt.Errorf("build ingest pipeline: %w", err)
	}
	registry := normalisers.NewRegistry(plaintext.New(), markdown.New(), yamldoc.New())

	retriever := services.NewRetriever(embedder, index, docs, cfg.Retrieval.TopK)
	answer := services.NewAnswerService(
		cfg,
		retriever,
		services.NewAssembler(cfg, prompts),
		services.NewValidator(cfg.Validator.ConfidencePolicy),
		pool,
	)
	answer.SetOutcomeStore(store.OutcomeStore())

	return &cli.Services{
		Answer:   answer,
		Ingest:   services.NewIngestService(registry, pipeline, embedder, docs, index, normalisers.MIMETypeForPath),
		History:  services.NewHistoryService(store.OutcomeStore()),
		Document: services.NewDocumentService(docs, index),
		Close:    closeAll,
	}, nil
}

// openVectorIndex selects the configured backend. The in-process index is
// rebuilt from the embeddings kept alongside the chunks.
func openVectorIndex(
	ctx context.Context,
	cfg domain.VectorSettings,
	store *sqlite.Store,
	docs driven.DocumentStore,
) (driven.VectorIndex, error) {
	switch cfg.Backend {
	case domain.VectorBackendSQLite:
		return store.VectorIndex(), nil
	case domain.VectorBackendMemory:
		index := memory.NewVectorIndex()
		n, err := warmIndex(ctx, index, docs)
		if err != nil {
			return nil, fmt.Errorf("load vectors: %w", err)
		}
		logger.Debug("vector index: loaded %d vectors into memory", n)
		return index, nil
	case domain.VectorBackendQdrant:
		index, err := qdrant.New(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("vector index: qdrant %s/%s", cfg.QdrantURL, cfg.QdrantCollection)
		return index, nil
	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidConfig, cfg.Backend)
	}
}

// warmIndex adds every stored chunk embedding to index and returns the count.
func warmIndex(ctx context.Context, index driven.VectorIndex, docs driven.DocumentStore) (int, error) {
	documents, err := docs.ListDocuments(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range documents {
		chunks, err := docs.GetChunks(ctx, documents[i].ID)
		if err != nil {
			return n, err
		}
		for j := range chunks {
			if len(chunks[j].Embedding) == 0 {
				continue
			}
			if err := index.Add(ctx, chunks[j].ID, chunks[j].Embedding); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// candidateCheck validates a prospective config change against an in-memory
// copy of store before anything is written to disk.
func candidateCheck(store driven.ConfigStore) func(key string, value any) error {
	return func(key string, value any) error {
		values := make(map[string]any)
		for _, k := range store.Keys() {
			if v, ok := store.Get(k); ok {
				values[k] = v
			}
		}
		values[key] = value

		_, err := services.LoadConfig(memory.NewConfigStore(values))
		return err
	}
}
