package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
	"github.com/custodia-labs/clause/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService sequences retrieval, evidence selection, prompt assembly,
// generation and validation for each query.
type AnswerService struct {
	cfg       domain.Config
	schema    domain.SchemaDescriptor
	retriever *Retriever
	assembler *Assembler
	validator *Validator
	pool      *GeneratorPool
	outcomes  driven.OutcomeStore // optional

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
	now   func() time.Time
}

// NewAnswerService creates the answer pipeline. cfg must already be validated.
func NewAnswerService(
	cfg domain.Config,
	retriever *Retriever,
	assembler *Assembler,
	validator *Validator,
	pool *GeneratorPool,
) *AnswerService {
	return &AnswerService{
		cfg:       cfg,
		schema:    domain.AnswerSchema(),
		retriever: retriever,
		assembler: assembler,
		validator: validator,
		pool:      pool,
		sleep:     sleepContext,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// SetOutcomeStore enables recording of every processed query.
func (s *AnswerService) SetOutcomeStore(store driven.OutcomeStore) {
	s.outcomes = store
}

// Process answers a single query.
func (s *AnswerService) Process(ctx context.Context, query string) (domain.ValidationOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.ValidationOutcome{}, err
	}
	if err := s.assembler.CheckQuery(query); err != nil {
		return domain.ValidationOutcome{}, err
	}
	query = strings.TrimSpace(query)

	logger.Section("Answer")
	logger.Debug("query: %q", query)
	defer logger.Timed("answer")()

	outcome, err := s.run(ctx, query)
	if err != nil {
		return domain.ValidationOutcome{}, err
	}

	logger.Debug("outcome: %s (attempts=%d, evidence=%d)", outcome.Status(), outcome.Attempts, outcome.EvidenceCount)
	s.record(ctx, query, outcome)
	return outcome, nil
}

func (s *AnswerService) run(ctx context.Context, query string) (domain.ValidationOutcome, error) {
	candidates, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		logger.Warn("retrieval failed: %v", err)
		return domain.Failed(domain.FailureEmptyEvidence, "", err.Error()), nil
	}

	sel := s.cfg.Selector
	evidence := SelectEvidence(candidates, sel.MaxTotalLength, sel.MinSimilarity, sel.MaxOverlapRatio)
	logger.Debug("selection: %d of %d candidates admitted, %d chars",
		evidence.Len(), len(candidates), evidence.TotalLength())
	if evidence.IsEmpty() {
		return domain.Failed(domain.FailureEmptyEvidence, "",
			fmt.Sprintf("no fragment among %d candidates passed selection", len(candidates))), nil
	}

	req, err := s.assembler.Assemble(query, evidence, s.schema)
	if err != nil {
		return domain.ValidationOutcome{}, err
	}

	raw, attempts, err := s.generate(ctx, req)
	if err != nil {
		outcome := domain.Failed(domain.FailureGeneratorError, raw, err.Error())
		outcome.Attempts = attempts
		outcome.EvidenceCount = evidence.Len()
		return outcome, nil
	}

	outcome := s.validator.Validate(raw, evidence)
	outcome.Attempts = attempts
	outcome.EvidenceCount = evidence.Len()
	return outcome, nil
}

// generate calls a pooled generator until success, a non-retryable error or
// the attempt bound. Returns the attempts made.
func (s *AnswerService) generate(ctx context.Context, req domain.GenerationRequest) (string, int, error) {
	gen := s.cfg.Generation
	messages := []driven.ChatMessage{
		{Role: "system", Content: req.System},
		{Role: "user", Content: req.Prompt},
	}
	opts := driven.ChatOptions{
		MaxTokens:   req.Params.MaxTokens,
		Temperature: req.Params.Temperature,
		JSON:        true,
	}

	var lastErr error
	attempts := 0
	for attempts < gen.MaxAttempts {
		if attempts > 0 {
			delay := backoffDelay(gen.BackoffInitial, gen.BackoffMax, attempts)
			logger.Debug("generation: retrying in %s", delay)
			if err := s.sleep(ctx, delay); err != nil {
				return "", attempts, fmt.Errorf("generation cancelled after %d attempts: %w", attempts, lastErr)
			}
		}

		throttle := backoffDelay(gen.BackoffInitial, gen.BackoffMax, attempts+1)
		raw, called, err := s.leasedAttempt(ctx, messages, opts, throttle)
		if !called {
			return "", attempts, err
		}
		attempts++
		if err == nil {
			logger.Debug("generation: attempt %d succeeded (%d bytes)", attempts, len(raw))
			return raw, attempts, nil
		}

		lastErr = err
		logger.Warn("generation attempt %d/%d failed: %v", attempts, gen.MaxAttempts, err)
		if !domain.IsRetryableGeneratorError(err) {
			return "", attempts, err
		}
	}

	return "", attempts, fmt.Errorf("generation failed after %d attempts: %w", attempts, lastErr)
}

// leasedAttempt makes one paced call on a leased handle. The handle goes back
// to the pool before it returns, so backoff sleeps never hold it. called is
// false when no call was made.
func (s *AnswerService) leasedAttempt(
	ctx context.Context,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
	throttle time.Duration,
) (raw string, called bool, err error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return "", false, fmt.Errorf("acquire generator: %w", err)
	}
	defer lease.Release()

	if err := lease.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("generation cancelled: %w", err)
	}

	raw, err = s.attempt(ctx, lease.Generator(), messages, opts)
	if errors.Is(err, domain.ErrRateLimited) {
		lease.Throttled(throttle)
	}
	return raw, true, err
}

// attempt runs one generation call under the per-attempt timeout.
func (s *AnswerService) attempt(
	ctx context.Context,
	gen driven.LLMService,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Generation.Timeout)
	defer cancel()

	raw, err := gen.Chat(attemptCtx, messages, opts)
	if err == nil {
		return raw, nil
	}

	// the per-attempt deadline fired while the parent is still live
	if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) &&
		!domain.IsRetryableGeneratorError(err) {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneratorTimeout, err)
	}
	return "", err
}

// ProcessBatch runs queries on a bounded set of workers and returns results in input order.
func (s *AnswerService) ProcessBatch(ctx context.Context, queries []string) []domain.BatchResult {
	results := make([]domain.BatchResult, len(queries))
	if len(queries) == 0 {
		return results
	}

	workers := min(s.cfg.Batch.Workers, len(queries))
	if workers < 1 {
		workers = 1
	}
	logger.Section("Batch")
	logger.Debug("processing %d queries on %d workers", len(queries), workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcome, err := s.Process(ctx, queries[i])
				results[i] = domain.BatchResult{Query: queries[i], Outcome: outcome, Err: err}
			}
		}()
	}

	for i := range queries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *AnswerService) record(ctx context.Context, query string, outcome domain.ValidationOutcome) {
	if s.outcomes == nil {
		return
	}
	rec := domain.NewOutcomeRecord(s.newID(), query, outcome, s.now().UTC())
	if err := s.outcomes.Record(ctx, rec); err != nil {
		logger.Warn("record outcome: %v", err)
	}
}

// backoffDelay returns initial doubled for each completed attempt after the first, capped at maxDelay.
func backoffDelay(initial, maxDelay time.Duration, completed int) time.Duration {
	if initial <= 0 {
		return 0
	}
	delay := initial
	for i := 1; i < completed; i++ {
		delay *= 2
		if maxDelay > 0 && delay >= maxDelay {
			return maxDelay
		}
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
