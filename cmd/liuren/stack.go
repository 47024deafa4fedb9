package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"liuren/internal/algorithm"
	"liuren/internal/config"
	"liuren/internal/conversation"
	"liuren/internal/embedding"
	"liuren/internal/explain"
	"liuren/internal/knowledge"
	"liuren/internal/perception"
	"liuren/internal/pipeline"
	"liuren/internal/retrieval"
	"liuren/internal/store"
)

// stack is the fully wired application, built once per command invocation.
type stack struct {
	cfg         config.Config
	base        *knowledge.Base
	db          *store.DB
	records     *store.RecordStore
	coordinator *pipeline.Coordinator
}

// buildStack loads config and wires every collaborator. The LLM client is
// optional: without an API key the conversation layer cannot extract slots,
// so commands that need it should tell the user, but chart/history/seed work
// regardless.
func buildStack(ctx context.Context) (*stack, error) {
	cfg, err := config.LoadFromWorkspace(workspace)
	if err != nil {
		return nil, err
	}

	base, err := knowledge.StaticLoader{}.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	dbPath := cfg.Store.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(workspace, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	adapter, err := algorithm.NewLiurenAdapter(base)
	if err != nil {
		db.Close()
		return nil, err
	}
	registry := algorithm.NewRegistry()
	if err := registry.Register(adapter); err != nil {
		db.Close()
		return nil, err
	}

	var client perception.LLMClient
	if cfg.LLM.APIKey != "" {
		client = perception.NewChatClientWithConfig(perception.ChatConfig{
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			Timeout:  cfg.LLM.Timeout(),
			JSONMode: true,
		})
	}

	var extractor perception.Extractor
	if client != nil {
		extractor, err = perception.NewLLMExtractor(client)
		if err != nil {
			db.Close()
			return nil, err
		}
	} else {
		extractor = unavailableExtractor{}
	}
	conv, err := conversation.NewEngine(extractor)
	if err != nil {
		db.Close()
		return nil, err
	}

	var engine embedding.Engine = embedding.NoopEngine{}
	if cfg.Embedding.APIKey != "" {
		genaiEngine, err := embedding.NewGenAIEngine(cfg.Embedding.APIKey, cfg.Embedding.Model)
		if err != nil {
			logger.Warn("embedding engine unavailable", zap.Error(err))
		} else {
			engine = genaiEngine
		}
	}
	searcher, err := retrieval.NewSQLiteSearcher(db, engine)
	if err != nil {
		db.Close()
		return nil, err
	}

	var generator explain.Generator = explain.TemplateGenerator{}
	if client != nil {
		generator, err = explain.NewLLMGenerator(client)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	records := store.NewRecordStore(db)
	coordinator, err := pipeline.New(conv, registry, searcher,
		store.NewProfileStore(db), generator, records,
		pipeline.Options{
			ComputeTimeout:    cfg.Pipeline.ComputeTimeout(),
			EnrichTimeout:     cfg.Pipeline.EnrichTimeout(),
			MaxComputeWorkers: int64(cfg.Pipeline.MaxComputeWorkers),
			RetrievalTopK:     cfg.Pipeline.RetrievalTopK,
		})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &stack{
		cfg:         cfg,
		base:        base,
		db:          db,
		records:     records,
		coordinator: coordinator,
	}, nil
}

// Close releases the stack's resources.
func (s *stack) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// unavailableExtractor stands in when no LLM is configured. Every extraction
// fails, which the conversation layer turns into a rephrase reply; the chat
// commands surface a clearer hint before that happens.
type unavailableExtractor struct{}

func (unavailableExtractor) Extract(ctx context.Context, text string, history []perception.Turn, known map[string]string, hints perception.Hints) (*perception.Hypothesis, error) {
	return nil, fmt.Errorf("no LLM configured: set LIUREN_LLM_API_KEY or llm.api_key in config")
}
