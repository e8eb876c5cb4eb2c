// Package pinecone implements the vector store port against the
// Pinecone REST API: control plane for index management, data plane
// for upserts and similarity queries.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
	"github.com/docuchat/docuchat/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultControlPlaneURL = "https://api.pinecone.io"
	DefaultTimeout         = 30 * time.Second
	DefaultCloud           = "aws"

	// providerName labels errors and metrics.
	providerName = "pinecone"

	// upsertBatchSize caps records per upsert request.
	upsertBatchSize = 100

	// readyPollInterval and readyPollCap bound the wait for a newly
	// created index to become queryable.
	readyPollInterval = 2 * time.Second
	readyPollCap      = 120 * time.Second

	// maxAttempts bounds retries of transient failures.
	maxAttempts = 3
)

// Config holds configuration for the Pinecone store.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// IndexName is the index holding document chunk vectors (required).
	IndexName string

	// Region is the serverless region the index is created in, for
	// example us-east-1 (required for index creation).
	Region string

	// Cloud is the serverless cloud provider (default: aws).
	Cloud string

	// ControlPlaneURL overrides the control plane endpoint. Used in tests.
	ControlPlaneURL string

	// DataPlaneURL overrides the per-index host discovered from the
	// control plane. Used in tests.
	DataPlaneURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Store talks to a Pinecone serverless index.
type Store struct {
	client       *http.Client
	apiKey       string
	indexName    string
	region       string
	cloud        string
	controlPlane string

	// dataPlane is discovered from describe-index during EnsureIndex
	// unless overridden by config. Guarded by hostMu: Upsert and Query
	// may race to discover it when EnsureIndex saw no host.
	hostMu    sync.Mutex
	dataPlane string
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type createIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Spec      struct {
		Serverless struct {
			Cloud  string `json:"cloud"`
			Region string `json:"region"`
		} `json:"serverless"`
	} `json:"spec"`
}

type upsertRequest struct {
	Vectors []driven.VectorRecord `json:"vectors"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []driven.VectorMatch `json:"matches"`
}

// NewStore creates a Pinecone-backed vector store.
// Missing API key or index name is a configuration error.
func NewStore(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key: %w", domain.ErrNotConfigured)
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("pinecone: index name: %w", domain.ErrNotConfigured)
	}
	if cfg.ControlPlaneURL == "" {
		cfg.ControlPlaneURL = DefaultControlPlaneURL
	}
	if cfg.Cloud == "" {
		cfg.Cloud = DefaultCloud
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:       &http.Client{Timeout: cfg.Timeout},
		apiKey:       cfg.APIKey,
		indexName:    cfg.IndexName,
		region:       cfg.Region,
		cloud:        cfg.Cloud,
		controlPlane: cfg.ControlPlaneURL,
		dataPlane:    cfg.DataPlaneURL,
	}, nil
}

// EnsureIndex creates the index if missing and waits for it to report
// ready. Existing indexes are left untouched.
func (s *Store) EnsureIndex(ctx context.Context, dimension int, metric string) error {
	desc, err := s.describeIndex(ctx)
	if err == nil {
		s.adoptHost(desc)
		if desc.Status.Ready {
			return nil
		}
		return s.waitReady(ctx)
	}

	apiErr, ok := domain.AsRemoteAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusNotFound {
		return err
	}

	logger.Info("creating pinecone index %q (dimension=%d, metric=%s)", s.indexName, dimension, metric)

	createReq := createIndexRequest{
		Name:      s.indexName,
		Dimension: dimension,
		Metric:    metric,
	}
	createReq.Spec.Serverless.Cloud = s.cloud
	createReq.Spec.Serverless.Region = s.region

	var created indexDescription
	if err := s.do(ctx, http.MethodPost, s.controlPlane+"/indexes", createReq, &created); err != nil {
		// A concurrent creator may have won the race.
		if createErr, isAPIErr := domain.AsRemoteAPIError(err); isAPIErr && createErr.StatusCode == http.StatusConflict {
			return s.waitReady(ctx)
		}
		return err
	}
	s.adoptHost(created)

	return s.waitReady(ctx)
}

// Upsert writes records in batches of at most 100.
func (s *Store) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	host, err := s.host(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		req := upsertRequest{Vectors: records[start:end]}
		if err := s.doRetry(ctx, http.MethodPost, host+"/vectors/upsert", req, nil); err != nil {
			return fmt.Errorf("upsert batch starting at %d: %w", start, err)
		}
	}
	return nil
}

// Query runs a similarity search restricted by exact-match metadata
// filters, translated to Pinecone's $eq syntax.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]driven.VectorMatch, error) {
	host, err := s.host(ctx)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}
	if len(filter) > 0 {
		req.Filter = make(map[string]any, len(filter))
		for key, value := range filter {
			req.Filter[key] = map[string]string{"$eq": value}
		}
	}

	var resp queryResponse
	if err := s.doRetry(ctx, http.MethodPost, host+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return resp.Matches, nil
}

// Close releases resources.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) describeIndex(ctx context.Context) (indexDescription, error) {
	var desc indexDescription
	err := s.do(ctx, http.MethodGet, s.controlPlane+"/indexes/"+s.indexName, nil, &desc)
	return desc, err
}

// adoptHost records the data plane host reported by the control plane,
// unless a host is already set.
func (s *Store) adoptHost(desc indexDescription) {
	if desc.Host == "" {
		return
	}
	host := desc.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	s.hostMu.Lock()
	defer s.hostMu.Unlock()
	if s.dataPlane == "" {
		s.dataPlane = host
	}
}

// host returns the data plane endpoint, discovering it if needed.
func (s *Store) host(ctx context.Context) (string, error) {
	if host := s.cachedHost(); host != "" {
		return host, nil
	}
	desc, err := s.describeIndex(ctx)
	if err != nil {
		return "", fmt.Errorf("discover index host: %w", err)
	}
	s.adoptHost(desc)
	if host := s.cachedHost(); host != "" {
		return host, nil
	}
	return "", fmt.Errorf("pinecone: index %q reported no host", s.indexName)
}

func (s *Store) cachedHost() string {
	s.hostMu.Lock()
	defer s.hostMu.Unlock()
	return s.dataPlane
}

// waitReady polls describe-index until the index reports ready.
func (s *Store) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(readyPollCap)
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		desc, err := s.describeIndex(ctx)
		if err == nil {
			s.adoptHost(desc)
			if desc.Status.Ready {
				return nil
			}
			logger.Debug("pinecone index %q not ready (state=%s)", s.indexName, desc.Status.State)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("pinecone: index %q not ready after %s", s.indexName, readyPollCap)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// doRetry wraps do with bounded retries on network errors and 5xx
// responses, with exponential backoff.
func (s *Store) doRetry(ctx context.Context, method, url string, payload, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = s.do(ctx, method, url, payload, out)
		if lastErr == nil {
			return nil
		}

		if apiErr, ok := domain.AsRemoteAPIError(lastErr); ok && apiErr.StatusCode < http.StatusInternalServerError {
			return lastErr
		}
		logger.Debug("pinecone request attempt %d failed: %v", attempt+1, lastErr)
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// do executes one authenticated JSON request. Non-2xx responses become
// RemoteAPIError.
func (s *Store) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-API-Version", "2024-07")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.RemoteAPIError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
