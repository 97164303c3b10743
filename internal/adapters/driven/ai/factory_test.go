package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
)

func newTagsServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		errContains string
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "openai without key is not configured",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantNil: true,
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderAnthropic,
				APIKey:   "test-key",
				Model:    "any",
			},
			wantNil:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name:     "unknown provider returns nil",
			settings: &domain.EmbeddingSettings{Provider: "unknown", Model: "m"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.ProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.ProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
		},
		{
			name:     "unknown provider returns nil",
			settings: &domain.LLMSettings{Provider: "unknown", APIKey: "k", Model: "m"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateLLMPool(t *testing.T) {
	settings := &domain.LLMSettings{Provider: domain.ProviderOllama, Model: "llama3.2"}

	handles, err := CreateLLMPool(settings, 3)
	require.NoError(t, err)
	require.Len(t, handles, 3)
	assert.NotSame(t, handles[0], handles[1])
	for _, h := range handles {
		assert.NoError(t, h.Close())
	}
}

func TestCreateLLMPool_Errors(t *testing.T) {
	_, err := CreateLLMPool(nil, 2)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	_, err = CreateLLMPool(&domain.LLMSettings{Provider: domain.ProviderOllama, Model: "m"}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured returns nil", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{})
		assert.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("reachable server", func(t *testing.T) {
		srv := newTagsServer(t, http.StatusOK)
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.ProviderOllama,
			BaseURL:  srv.URL,
			Model:    "nomic-embed-text",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.NoError(t, svc.Close())
	})

	t.Run("failing server", func(t *testing.T) {
		srv := newTagsServer(t, http.StatusInternalServerError)
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.ProviderOllama,
			BaseURL:  srv.URL,
			Model:    "nomic-embed-text",
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "config.toml")
		assert.Nil(t, svc)
	})

	t.Run("anthropic", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.ProviderAnthropic,
			APIKey:   "k",
			Model:    "m",
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestValidateLLMConfig(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateLLMConfig(ctx, nil))
	assert.NoError(t, ValidateLLMConfig(ctx, &domain.LLMSettings{}))

	ok := newTagsServer(t, http.StatusOK)
	assert.NoError(t, ValidateLLMConfig(ctx, &domain.LLMSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  ok.URL,
		Model:    "llama3.2",
	}))

	down := newTagsServer(t, http.StatusServiceUnavailable)
	err := ValidateLLMConfig(ctx, &domain.LLMSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  down.URL,
		Model:    "llama3.2",
	})
	assert.ErrorIs(t, err, domain.ErrGeneratorUnreachable)
}

func TestValidateEmbeddingConfig(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateEmbeddingConfig(ctx, nil))
	assert.Error(t, ValidateEmbeddingConfig(ctx, &domain.EmbeddingSettings{
		Provider: domain.ProviderAnthropic,
		APIKey:   "k",
		Model:    "m",
	}))
}
