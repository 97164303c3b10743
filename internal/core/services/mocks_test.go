package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

// stubEmbedder implements driven.EmbeddingService with a fixed vector.
type stubEmbedder struct {
	vector   []float32
	err      error
	batchErr error
	batches  [][]string
	mu       sync.Mutex
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.batches = append(s.batches, texts)
	s.mu.Unlock()
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vector) }
func (s *stubEmbedder) ModelName() string { return "stub-embed" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error { return nil }

// stubVectorIndex implements driven.VectorIndex.
type stubVectorIndex struct {
	mu        sync.Mutex
	hits      []driven.VectorHit
	searchErr error
	addErr    error
	added     map[string][]float32
	deleted   []string
	lastK     int
}

func (s *stubVectorIndex) Add(_ context.Context, chunkID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	if s.added == nil {
		s.added = make(map[string][]float32)
	}
	s.added[chunkID] = embedding
	return nil
}

func (s *stubVectorIndex) Delete(_ context.Context, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, chunkID)
	delete(s.added, chunkID)
	return nil
}

func (s *stubVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastK = k
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubVectorIndex) Close() error { return nil }

// stubDocStore implements driven.DocumentStore in memory.
type stubDocStore struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	chunks  map[string]domain.Chunk
	saveErr error
}

func newStubDocStore() *stubDocStore {
	return &stubDocStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string]domain.Chunk),
	}
}

func (s *stubDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *stubDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *stubDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (s *stubDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubDocStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *stubDocStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	for cid, c := range s.chunks {
		if c.DocumentID == id {
			delete(s.chunks, cid)
		}
	}
	return nil
}

func (s *stubDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

// scriptedLLM implements driven.LLMService. Each Chat call consumes the next
// scripted step; the last step repeats once the script runs out.
type scriptedLLM struct {
	mu       sync.Mutex
	steps    []llmStep
	calls    int
	messages [][]driven.ChatMessage
	closed   bool
	closeErr error
}

type llmStep struct {
	output string
	err    error
	// block waits for the context to end before returning its error.
	block bool
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.mu.Lock()
	step := llmStep{output: "{}"}
	if len(s.steps) > 0 {
		step = s.steps[min(s.calls, len(s.steps)-1)]
	}
	s.calls++
	s.messages = append(s.messages, messages)
	s.mu.Unlock()

	if step.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return step.output, step.err
}

func (s *scriptedLLM) ModelName() string { return "scripted" }
func (s *scriptedLLM) Ping(_ context.Context) error { return nil }

func (s *scriptedLLM) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.closeErr
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// echoLLM answers with a valid record naming the query it saw.
type echoLLM struct {
	scriptedLLM
}

func (e *echoLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if _, err := e.scriptedLLM.Chat(ctx, messages, opts); err != nil {
		return "", err
	}
	user := messages[len(messages)-1].Content
	return fmt.Sprintf(`{"decision":"approved","justification":%q,"confidence":0.5,"cited_clauses":["E1"]}`,
		firstLine(user)), nil
}

// firstLine returns the query from a prompt rendered with the default user template.
func firstLine(prompt string) string {
	lines := strings.SplitN(prompt, "\n", 3)
	if len(lines) > 1 {
		return lines[1]
	}
	return prompt
}

// stubOutcomeStore implements driven.OutcomeStore.
type stubOutcomeStore struct {
	mu      sync.Mutex
	records []domain.OutcomeRecord
	err     error
}

func (s *stubOutcomeStore) Record(_ context.Context, rec domain.OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *stubOutcomeStore) Recent(_ context.Context, limit int) ([]domain.OutcomeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OutcomeRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// stubPromptStore implements driven.PromptStore.
type stubPromptStore struct {
	prompts map[string]string
}

func (s *stubPromptStore) Load(name string) (string, error) {
	p, ok := s.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (s *stubPromptStore) Reload() {}

// stubConfigStore implements driven.ConfigStore over a map.
type stubConfigStore struct {
	data map[string]any
}

func (s *stubConfigStore) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *stubConfigStore) GetString(key string) string {
	v, _ := s.data[key].(string)
	return v
}

func (s *stubConfigStore) GetInt(key string) int {
	switch v := s.data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func (s *stubConfigStore) GetFloat(key string) float64 {
	switch v := s.data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (s *stubConfigStore) GetBool(key string) bool {
	v, _ := s.data[key].(bool)
	return v
}

func (s *stubConfigStore) GetStringSlice(_ string) []string { return nil }
func (s *stubConfigStore) Set(key string, value any) error {
	s.data[key] = value
	return nil
}
func (s *stubConfigStore) Save() error { return nil }
func (s *stubConfigStore) Load() error { return nil }
func (s *stubConfigStore) Path() string { return "memory" }

func (s *stubConfigStore) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
