package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads answer prompt templates from editable files, falling
// back to the built-in templates. Files are created lazily on first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: domain.DefaultAnswerSystemPrompt,
	driven.PromptAnswerUser:   domain.DefaultAnswerUserPrompt,
}

// requiredPlaceholders lists the named placeholders each template must keep.
var requiredPlaceholders = map[string][]string{
	driven.PromptAnswerUser: domain.AnswerUserPlaceholders,
}

// NewPromptStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to ~/.clause/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := DefaultHomeDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name. A user file that is missing or has
// lost its placeholders is ignored in favour of the built-in template.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	fallback, known := defaultPrompts[name]
	if s.initErr != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Names returns the built-in prompt names.
func Names() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		if err := writeIfMissing(filepath.Join(s.promptDir, name+".txt"), content); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), promptReadme); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))

	if missing := domain.MissingPlaceholders(prompt, requiredPlaceholders[name]); len(missing) > 0 {
		return "", fmt.Errorf("%w: prompt %q lacks %s",
			domain.ErrInvalidConfig, name, strings.Join(missing, ", "))
	}
	if name != driven.PromptAnswerUser {
		for _, p := range domain.AnswerUserPlaceholders {
			if strings.Contains(prompt, p) {
				return "", fmt.Errorf("%w: prompt %q takes no placeholders, found %s",
					domain.ErrInvalidConfig, name, p)
			}
		}
	}
	return prompt, nil
}

func writeIfMissing(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

const promptReadme = `# Clause Prompts

These files control how questions are framed for the generator.

## Files

- ` + "`answer_system.txt`" + ` - instructions sent as the system message
- ` + "`answer_user.txt`" + ` - the question, numbered evidence and answer schema

## Placeholders

` + "`answer_user.txt`" + ` must keep the ` + "`{{query}}`" + `, ` + "`{{evidence}}`" + ` and
` + "`{{schema}}`" + ` placeholders, in any order. Other text, including percent
signs, is sent as written. ` + "`answer_system.txt`" + ` takes none.

A file that breaks these rules is ignored and the built-in template is used
instead. Delete a file to restore its default.
`
