package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/clause/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
	"github.com/custodia-labs/clause/internal/logger"
)

func approvedOutcome() domain.ValidationOutcome {
	amount := 1200.0
	return domain.ValidationOutcome{
		Answer: &domain.StructuredAnswer{
			Decision:      domain.DecisionApproved,
			Amount:        &amount,
			Justification: "Knee surgery is covered after the waiting period.",
			CitedClauses: []domain.CitedClause{
				{FragmentRef: "E1", RelevanceNote: "surgical procedures clause"},
			},
			Confidence: 0.9,
		},
		Attempts:      1,
		EvidenceCount: 2,
	}
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	mu       sync.Mutex
	outcome  domain.ValidationOutcome
	err      error
	queries  []string
	batches  [][]string
	outcomes map[string]domain.ValidationOutcome
}

func (m *mockAnswerService) Process(_ context.Context, query string) (domain.ValidationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.err != nil {
		return domain.ValidationOutcome{}, m.err
	}
	if o, ok := m.outcomes[query]; ok {
		return o, nil
	}
	return m.outcome, nil
}

func (m *mockAnswerService) ProcessBatch(_ context.Context, queries []string) []domain.BatchResult {
	m.mu.Lock()
	m.batches = append(m.batches, queries)
	m.mu.Unlock()

	results := make([]domain.BatchResult, len(queries))
	for i, q := range queries {
		results[i].Query = q
		if strings.HasPrefix(q, "bad") {
			results[i].Err = fmt.Errorf("%w: query too long", domain.ErrMalformedQuery)
			continue
		}
		if o, ok := m.outcomes[q]; ok {
			results[i].Outcome = o
			continue
		}
		results[i].Outcome = m.outcome
	}
	return results
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	mu    sync.Mutex
	files []string
	texts map[string]string
	mimes map[string]string
	fail  map[string]error
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*driving.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[path]; ok {
		return nil, err
	}
	if strings.HasSuffix(path, ".bin") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path)
	}
	m.files = append(m.files, path)
	return &driving.IngestResult{
		Document:   domain.Document{ID: "doc-" + path, URI: path},
		ChunkCount: 3,
	}, nil
}

func (m *mockIngestService) IngestText(
	_ context.Context, uri, mimeType string, content []byte,
) (*driving.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.texts == nil {
		m.texts = make(map[string]string)
		m.mimes = make(map[string]string)
	}
	m.texts[uri] = string(content)
	m.mimes[uri] = mimeType
	return &driving.IngestResult{Document: domain.Document{ID: "doc-" + uri, URI: uri}, ChunkCount: 1}, nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records   []domain.OutcomeRecord
	err       error
	lastLimit int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.OutcomeRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	details   map[string]*driving.DocumentDetails
	removed   []string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	d, ok := m.details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (m *mockDocumentService) Remove(_ context.Context, id string) error {
	if _, ok := m.details[id]; !ok {
		return domain.ErrNotFound
	}
	m.removed = append(m.removed, id)
	return nil
}

// mockValidator is a mock implementation of driven.AIConfigValidator.
type mockValidator struct {
	embeddingErr error
	llmErr       error
}

func (m *mockValidator) ValidateEmbedding(_ context.Context, _ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockValidator) ValidateLLM(_ context.Context, _ *domain.LLMSettings) error {
	return m.llmErr
}

// fakeBootstrapper counts wiring calls.
type fakeBootstrapper struct {
	settings      *Settings
	settingsErr   error
	services      *Services
	servicesErr   error
	settingsCalls int
	servicesCalls int
	gotHome       string
}

func (f *fakeBootstrapper) Settings(home string) (*Settings, error) {
	f.settingsCalls++
	f.gotHome = home
	return f.settings, f.settingsErr
}

func (f *fakeBootstrapper) Services(_ context.Context, _ *Settings) (*Services, error) {
	f.servicesCalls++
	return f.services, f.servicesErr
}

type cliState struct {
	bootstrapper    Bootstrapper
	configStore     driven.ConfigStore
	appConfig       domain.Config
	configErr       error
	promptDir       string
	promptNames     []string
	configValidator driven.AIConfigValidator
	checkValue      func(string, any) error
	answerService   driving.AnswerService
	ingestService   driving.IngestService
	historyService  driving.HistoryService
	documentService driving.DocumentService
	closeServices   func() error
}

func saveState() cliState {
	return cliState{
		bootstrapper:    bootstrapper,
		configStore:     configStore,
		appConfig:       appConfig,
		configErr:       configErr,
		promptDir:       promptDir,
		promptNames:     promptNames,
		configValidator: configValidator,
		checkValue:      checkValue,
		answerService:   answerService,
		ingestService:   ingestService,
		historyService:  historyService,
		documentService: documentService,
		closeServices:   closeServices,
	}
}

func restoreState(s cliState) {
	bootstrapper = s.bootstrapper
	configStore = s.configStore
	appConfig = s.appConfig
	configErr = s.configErr
	promptDir = s.promptDir
	promptNames = s.promptNames
	configValidator = s.configValidator
	checkValue = s.checkValue
	answerService = s.answerService
	ingestService = s.ingestService
	historyService = s.historyService
	documentService = s.documentService
	closeServices = s.closeServices

	askJSON = false
	historyLimit = 20
	historyJSON = false
	ingestURI = ""
	ingestMIME = "text/plain"
	ingestWatch = false
	verbose = false
	logger.SetVerbose(false)
	homeDir = ""
	rootCmd.SetIn(nil)
}

// clearState unsets every wired dependency so commands go through the bootstrapper.
func clearState() func() {
	saved := saveState()
	restoreState(cliState{})
	return func() { restoreState(saved) }
}

// setupTestServices wires mock services and returns a cleanup function.
func setupTestServices() func() {
	saved := saveState()

	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	confidence := 0.9

	bootstrapper = nil
	configStore = memory.NewConfigStore(map[string]any{
		"llm.model":   "llama3.2",
		"llm.api_key": "sk-test-1234567890",
	})
	appConfig = domain.DefaultConfig()
	configErr = nil
	promptDir = "/home/test/.clause/prompts"
	promptNames = []string{"answer_system", "answer_user"}
	configValidator = &mockValidator{}
	checkValue = func(key string, value any) error {
		if key == "selector.max_overlap_ratio" {
			if f, ok := value.(float64); ok && f > 1 {
				return fmt.Errorf("%w: selector.max_overlap_ratio must be within [0, 1]", domain.ErrInvalidConfig)
			}
		}
		return nil
	}

	answerService = &mockAnswerService{outcome: approvedOutcome()}
	ingestService = &mockIngestService{}
	historyService = &mockHistoryService{records: []domain.OutcomeRecord{
		{
			ID: "run-2", Query: "Is knee surgery covered?", Status: "answered",
			Decision: domain.DecisionApproved, Confidence: &confidence, CreatedAt: created.Add(time.Hour),
		},
		{
			ID: "run-1", Query: "Is cosmetic dentistry covered?", Status: "empty_evidence",
			FailureReason: domain.FailureEmptyEvidence, Detail: "no fragments passed selection", CreatedAt: created,
		},
	}}
	documentService = &mockDocumentService{
		documents: []domain.Document{
			{ID: "doc-1", Title: "Policy Wording", URI: "/docs/policy.md"},
			{ID: "doc-2", Title: "Schedule", URI: "/docs/schedule.txt"},
		},
		details: map[string]*driving.DocumentDetails{
			"doc-1": {
				ID: "doc-1", Title: "Policy Wording", URI: "/docs/policy.md",
				ChunkCount: 4, RuneCount: 3800, CreatedAt: created, UpdatedAt: created,
				Metadata: map[string]string{"mime_type": "text/markdown"},
			},
		},
	}
	closeServices = nil

	return func() { restoreState(saved) }
}

var errBoom = errors.New("boom")
