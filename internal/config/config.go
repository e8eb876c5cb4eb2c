// Package config loads runtime configuration from an optional TOML
// file plus environment variables. Secrets come only from the
// environment; the TOML file carries tunables safe to commit.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// Default tunables.
const (
	DefaultListenAddr    = ":8080"
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 100
	DefaultTopK          = 5
	DefaultDimensions    = 1024
	DefaultMaxUploadSize = 32 << 20 // 32 MiB

	DefaultPineconeRegion = "us-east-1"
)

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Ingestion IngestionConfig `toml:"ingestion"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	NVIDIA    NVIDIAConfig    `toml:"nvidia"`
	Pinecone  PineconeConfig  `toml:"pinecone"`
	Storage   StorageConfig   `toml:"storage"`
	DropDir   DropDirConfig   `toml:"dropdir"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `toml:"listen_addr"`

	// SessionSecret signs and verifies session tokens. Environment only.
	SessionSecret string `toml:"-"`

	// MaxUploadSize caps multipart upload size in bytes.
	MaxUploadSize int64 `toml:"max_upload_size"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `toml:"-"`
}

// IngestionConfig holds chunking settings.
type IngestionConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k"`
}

// NVIDIAConfig holds settings for the NVIDIA NIM API.
type NVIDIAConfig struct {
	// APIKey authorizes calls. Environment only.
	APIKey string `toml:"-"`

	// BaseURL overrides the API endpoint for any OpenAI-compatible host.
	BaseURL string `toml:"base_url"`

	// ChatModel is the chat completion model.
	ChatModel string `toml:"chat_model"`

	// EmbeddingModel is the embedding model.
	EmbeddingModel string `toml:"embedding_model"`

	// Dimensions is the embedding vector size. Must match the index.
	Dimensions int `toml:"dimensions"`
}

// PineconeConfig holds settings for the Pinecone vector store.
// An empty API key selects the in-memory vector store instead.
type PineconeConfig struct {
	// APIKey authorizes calls. Environment only.
	APIKey string `toml:"-"`

	// IndexName is the index holding chunk vectors.
	IndexName string `toml:"index_name"`

	// Region is the serverless region for index creation.
	Region string `toml:"region"`
}

// StorageConfig holds document store settings.
type StorageConfig struct {
	// DataDir is where the SQLite database lives. Empty selects the
	// in-memory document store.
	DataDir string `toml:"data_dir"`
}

// DropDirConfig configures the optional watched ingestion directory.
type DropDirConfig struct {
	// Path is the directory to watch. Empty disables the watcher.
	Path string `toml:"path"`

	// UserID owns documents ingested from the directory.
	UserID string `toml:"user_id"`
}

// Load builds the configuration from an optional TOML file at path and
// the process environment. A .env file in the working directory is
// loaded first if present.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit environment wins anyway.
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			MaxUploadSize:   DefaultMaxUploadSize,
			ShutdownTimeout: 10 * time.Second,
		},
		Ingestion: IngestionConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultTopK,
		},
		NVIDIA: NVIDIAConfig{
			Dimensions: DefaultDimensions,
		},
		Pinecone: PineconeConfig{
			Region: DefaultPineconeRegion,
		},
	}
}

// applyEnv overlays environment variables on top of file values.
// Secrets have no file counterpart and come only from here.
func (c *Config) applyEnv() {
	setString(&c.Server.SessionSecret, "SESSION_SECRET")
	setString(&c.Server.ListenAddr, "LISTEN_ADDR")

	setString(&c.NVIDIA.APIKey, "NVIDIA_API_KEY")
	setString(&c.NVIDIA.BaseURL, "NVIDIA_BASE_URL")
	setString(&c.NVIDIA.ChatModel, "NVIDIA_CHAT_MODEL")
	setString(&c.NVIDIA.EmbeddingModel, "NVIDIA_EMBEDDING_MODEL")

	setString(&c.Pinecone.APIKey, "PINECONE_API_KEY")
	setString(&c.Pinecone.IndexName, "PINECONE_INDEX_NAME")
	setString(&c.Pinecone.Region, "PINECONE_ENVIRONMENT")

	setString(&c.Storage.DataDir, "DATA_DIR")
	setString(&c.DropDir.Path, "DROPDIR_PATH")
	setString(&c.DropDir.UserID, "DROPDIR_USER_ID")

	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ingestion.ChunkSize = n
		}
	}
	if v := os.Getenv("CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ingestion.ChunkOverlap = n
		}
	}
	if v := os.Getenv("RETRIEVAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retrieval.TopK = n
		}
	}
}

// fillDefaults backfills zero values a TOML file may have blanked.
func (c *Config) fillDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.MaxUploadSize <= 0 {
		c.Server.MaxUploadSize = DefaultMaxUploadSize
	}
	if c.Ingestion.ChunkSize <= 0 {
		c.Ingestion.ChunkSize = DefaultChunkSize
	}
	if c.Ingestion.ChunkOverlap < 0 {
		c.Ingestion.ChunkOverlap = DefaultChunkOverlap
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.NVIDIA.Dimensions <= 0 {
		c.NVIDIA.Dimensions = DefaultDimensions
	}
	if c.Pinecone.Region == "" {
		c.Pinecone.Region = DefaultPineconeRegion
	}
}

// Validate fails fast on configuration the server cannot run without.
func (c *Config) Validate() error {
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET: %w", domain.ErrNotConfigured)
	}
	if c.NVIDIA.APIKey == "" {
		return fmt.Errorf("NVIDIA_API_KEY: %w", domain.ErrNotConfigured)
	}
	if c.NVIDIA.ChatModel == "" {
		return fmt.Errorf("NVIDIA_CHAT_MODEL: %w", domain.ErrNotConfigured)
	}
	if c.Pinecone.APIKey != "" && c.Pinecone.IndexName == "" {
		return fmt.Errorf("PINECONE_INDEX_NAME: %w", domain.ErrNotConfigured)
	}
	if c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return domain.ErrInvalidChunking
	}
	if c.DropDir.Path != "" && c.DropDir.UserID == "" {
		return fmt.Errorf("DROPDIR_USER_ID: %w", domain.ErrNotConfigured)
	}
	return nil
}

// UsePinecone reports whether a remote vector store is configured.
func (c *Config) UsePinecone() bool {
	return c.Pinecone.APIKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
