package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docuchat/docuchat/internal/adapters/driven/auth"
	embeddingnvidia "github.com/docuchat/docuchat/internal/adapters/driven/embedding/nvidia"
	llmnvidia "github.com/docuchat/docuchat/internal/adapters/driven/llm/nvidia"
	storagemem "github.com/docuchat/docuchat/internal/adapters/driven/storage/memory"
	"github.com/docuchat/docuchat/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/docuchat/docuchat/internal/adapters/driven/vectorstore/memory"
	"github.com/docuchat/docuchat/internal/adapters/driven/vectorstore/pinecone"
	"github.com/docuchat/docuchat/internal/adapters/driving/dropdir"
	"github.com/docuchat/docuchat/internal/adapters/driving/httpapi"
	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
	"github.com/docuchat/docuchat/internal/core/services"
	"github.com/docuchat/docuchat/internal/extractors"
	"github.com/docuchat/docuchat/internal/logger"
	"github.com/docuchat/docuchat/internal/postprocessors/chunker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the docuchat HTTP server.

Configuration comes from the environment (secrets) and an optional TOML
file (tunables). With no Pinecone API key the server runs against an
in-memory vector store; with no data directory documents are tracked in
memory only.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Driven adapters.
	embedder, err := embeddingnvidia.NewEmbeddingService(embeddingnvidia.Config{
		APIKey:     cfg.NVIDIA.APIKey,
		BaseURL:    cfg.NVIDIA.BaseURL,
		Model:      cfg.NVIDIA.EmbeddingModel,
		Dimensions: cfg.NVIDIA.Dimensions,
	})
	if err != nil {
		return err
	}
	defer embedder.Close()

	llm, err := llmnvidia.NewLLMService(llmnvidia.Config{
		APIKey:  cfg.NVIDIA.APIKey,
		BaseURL: cfg.NVIDIA.BaseURL,
		Model:   cfg.NVIDIA.ChatModel,
	})
	if err != nil {
		return err
	}
	defer llm.Close()

	vectors, err := newVectorStore(cfg)
	if err != nil {
		return err
	}
	defer vectors.Close()

	if err := vectors.EnsureIndex(ctx, embedder.Dimensions(), driven.MetricCosine); err != nil {
		return fmt.Errorf("ensuring vector index: %w", err)
	}

	docs, err := newDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer docs.Close()

	verifier, err := auth.NewJWTVerifier(cfg.Server.SessionSecret)
	if err != nil {
		return err
	}

	ch := chunker.New(
		chunker.WithChunkSize(cfg.Ingestion.ChunkSize),
		chunker.WithOverlap(cfg.Ingestion.ChunkOverlap),
	)

	// Core services.
	ingest := services.NewIngestionService(docs, extractors.NewDefaultRegistry(), ch, embedder, vectors)
	chat := services.NewChatService(embedder, vectors, llm, cfg.Retrieval.TopK)

	// Driving adapters.
	server := httpapi.NewServer(httpapi.Config{
		Ingest:        ingest,
		Chat:          chat,
		Docs:          docs,
		Verifier:      verifier,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	})

	if cfg.DropDir.Path != "" {
		watcher, err := dropdir.NewWatcher(cfg.DropDir.Path, cfg.DropDir.UserID, ingest)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("dropdir watcher stopped: %v", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s (chat model %s, embedding model %s)",
			cfg.Server.ListenAddr, llm.ModelName(), embedder.ModelName())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// newVectorStore selects Pinecone when configured, the in-memory store
// otherwise.
func newVectorStore(cfg *config.Config) (driven.VectorStore, error) {
	if !cfg.UsePinecone() {
		logger.Warn("no Pinecone API key configured, using in-memory vector store")
		return vectormem.NewStore(), nil
	}
	return pinecone.NewStore(pinecone.Config{
		APIKey:    cfg.Pinecone.APIKey,
		IndexName: cfg.Pinecone.IndexName,
		Region:    cfg.Pinecone.Region,
	})
}

// newDocumentStore selects SQLite when a data directory is configured,
// the in-memory store otherwise.
func newDocumentStore(cfg *config.Config) (driven.DocumentStore, error) {
	if cfg.Storage.DataDir == "" {
		logger.Warn("no data directory configured, document records are in memory only")
		return storagemem.NewDocStore(), nil
	}
	return sqlite.NewStore(cfg.Storage.DataDir)
}
