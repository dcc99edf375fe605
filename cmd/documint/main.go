package main

import (
	"fmt"
	"os"

	"github.com/documint-labs/documint/internal/adapters/driven/config/file"
	"github.com/documint-labs/documint/internal/adapters/driven/embedding/ollama"
	"github.com/documint-labs/documint/internal/adapters/driven/embedding/openai"
	"github.com/documint-labs/documint/internal/adapters/driven/extract/layoutjson"
	"github.com/documint-labs/documint/internal/adapters/driven/storage/sqlite"
	"github.com/documint-labs/documint/internal/adapters/driving/cli"
	"github.com/documint-labs/documint/internal/chunker"
	"github.com/documint-labs/documint/internal/core/ports/driven"
	"github.com/documint-labs/documint/internal/core/services"
	"github.com/documint-labs/documint/internal/logger"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	projectStore := store.ProjectStore()
	insightStore := store.InsightStore()

	embedder := buildEmbedder(configStore)

	chunkerOpts := []chunker.Option{}
	if ratio := configStore.GetFloat("chunker.heading_ratio"); ratio > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithHeadingRatio(ratio))
	}
	if minChars := configStore.GetInt("chunker.min_chunk_chars"); minChars > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithMinChunkChars(minChars))
	}

	ingestService := services.NewIngestService(
		projectStore,
		layoutjson.New(),
		chunker.New(chunkerOpts...),
		services.WithIngestWorkers(configStore.GetInt("ingest.workers")),
	)

	retrievalOpts := []services.RetrievalOption{}
	k1 := configStore.GetFloat("retrieval.bm25_k1")
	b := configStore.GetFloat("retrieval.bm25_b")
	if k1 > 0 && b > 0 {
		retrievalOpts = append(retrievalOpts, services.WithBM25Parameters(k1, b))
	}
	retrievalService := services.NewRetrievalService(
		projectStore, embedder, insightStore, retrievalOpts...)

	cli.SetVersion(Version)
	cli.SetServices(ingestService, retrievalService, projectStore, insightStore, configStore)

	return cli.Execute()
}

// buildEmbedder constructs the configured embedding provider, or nil
// for BM25-only operation.
func buildEmbedder(cfg driven.ConfigStore) driven.EmbeddingService {
	provider := cfg.GetString("embedding.provider")
	switch provider {
	case "", "none":
		return nil

	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})

	case "openai":
		apiKey := cfg.GetString("embedding.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		service, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("OpenAI embeddings disabled: %v", err)
			return nil
		}
		return service

	default:
		logger.Warn("Unknown embedding provider %q, continuing BM25-only", provider)
		return nil
	}
}
