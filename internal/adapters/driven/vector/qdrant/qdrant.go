// Package qdrant implements driven.VectorIndex against a Qdrant server's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clause/internal/adapters/driven/vector"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// DefaultTimeout bounds each REST call.
const DefaultTimeout = 15 * time.Second

// pointNamespace derives stable point IDs from chunk IDs; Qdrant only
// accepts integers and UUIDs.
var pointNamespace = uuid.MustParse("6f1c2b55-8d3e-4c0a-9a57-2c7b1f0e4d21")

// errCollectionMissing is returned when the collection does not exist yet.
var errCollectionMissing = errors.New("qdrant: collection does not exist")

// Config holds connection settings.
type Config struct {
	// URL is the server base URL, e.g. http://localhost:6333.
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is created on first Add with cosine distance.
	Collection string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a Qdrant-backed vector index.
type Index struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string

	mu    sync.Mutex
	ready bool
}

// New creates a Qdrant index. No request is made until first use.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant url is required", domain.ErrInvalidConfig)
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant collection is required", domain.ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}, nil
}

// PointID returns the Qdrant point ID used for chunkID.
func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Add upserts the vector, creating the collection on first use.
func (ix *Index) Add(ctx context.Context, chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for chunk %s", domain.ErrInvalidInput, chunkID)
	}
	if err := ix.ensureCollection(ctx, len(embedding)); err != nil {
		return err
	}

	body := map[string]any{"points": []point{{
		ID:      PointID(chunkID),
		Vector:  embedding,
		Payload: map[string]any{"chunk_id": chunkID},
	}}}
	return ix.do(ctx, http.MethodPut, ix.collectionPath("/points?wait=true"), body, nil)
}

// Delete removes a vector; a missing collection is treated as empty.
func (ix *Index) Delete(ctx context.Context, chunkID string) error {
	body := map[string]any{"points": []string{PointID(chunkID)}}
	err := ix.do(ctx, http.MethodPost, ix.collectionPath("/points/delete?wait=true"), body, nil)
	if errors.Is(err, errCollectionMissing) {
		return nil
	}
	return err
}

// Search returns the k nearest points.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := vector.CheckQuery(query, k); err != nil {
		return nil, err
	}

	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	err := ix.do(ctx, http.MethodPost, ix.collectionPath("/points/search"), req, &resp)
	if errors.Is(err, errCollectionMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		id, ok := r.Payload["chunk_id"].(string)
		if !ok || id == "" {
			continue
		}
		hits = append(hits, driven.VectorHit{ChunkID: id, Similarity: r.Score})
	}
	return hits, nil
}

// Close releases idle connections.
func (ix *Index) Close() error {
	ix.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection if the server does not have it.
func (ix *Index) ensureCollection(ctx context.Context, dims int) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.ready {
		return nil
	}

	err := ix.do(ctx, http.MethodGet, ix.collectionPath(""), nil, nil)
	if errors.Is(err, errCollectionMissing) {
		body := map[string]any{
			"vectors": map[string]any{"size": dims, "distance": "Cosine"},
		}
		err = ix.do(ctx, http.MethodPut, ix.collectionPath(""), body, nil)
	}
	if err != nil {
		return err
	}
	ix.ready = true
	return nil
}

func (ix *Index) collectionPath(suffix string) string {
	return ix.baseURL + "/collections/" + ix.collection + suffix
}

// do sends a JSON request. A 404 maps to errCollectionMissing.
func (ix *Index) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("qdrant: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("qdrant: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant %s %s: %w", domain.ErrVectorIndexUnavailable, method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errCollectionMissing
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: qdrant %s returned %d: %s",
			domain.ErrVectorIndexUnavailable, method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("qdrant: decode response: %w", err)
	}
	return nil
}
