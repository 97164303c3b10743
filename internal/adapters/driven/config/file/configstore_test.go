package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Path(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DirectoryError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/clause")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml ][{"), 0600))

	store, err := NewConfigStore(dir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestDefaultHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	dir, err := DefaultHomeDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".clause"), dir)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[retrieval]
top_k = 12

[selector]
min_similarity = 0.65
max_overlap_ratio = 1

[generation]
timeout = "45s"

[llm]
provider = "anthropic"
stop = ["END", 7, "STOP"]
json = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 12, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.65, store.GetFloat("selector.min_similarity"), 1e-9)
	assert.InDelta(t, 1.0, store.GetFloat("selector.max_overlap_ratio"), 1e-9)
	assert.Equal(t, "45s", store.GetString("generation.timeout"))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, []string{"END", "STOP"}, store.GetStringSlice("llm.stop"))
	assert.True(t, store.GetBool("llm.json"))
	assert.Equal(t, []string{
		"generation.timeout",
		"llm.json",
		"llm.provider",
		"llm.stop",
		"retrieval.top_k",
		"selector.max_overlap_ratio",
		"selector.min_similarity",
	}, store.Keys())
}

func TestConfigStore_TypedGettersOnMismatch(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("value", "text"))

	assert.Equal(t, 0, store.GetInt("value"))
	assert.Zero(t, store.GetFloat("value"))
	assert.False(t, store.GetBool("value"))
	assert.Nil(t, store.GetStringSlice("value"))
	assert.Equal(t, "", store.GetString("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetFloat_WidensIntegers(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("a", 3))
	require.NoError(t, store.Set("b", int64(4)))

	assert.InDelta(t, 3.0, store.GetFloat("a"), 1e-9)
	assert.InDelta(t, 4.0, store.GetFloat("b"), 1e-9)
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("selector.min_similarity", 0.7))
	require.NoError(t, store.Set("selector.max_total_length", 4000))
	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[selector]")
	assert.NotContains(t, string(raw), "'selector.min_similarity'")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, reopened.GetFloat("selector.min_similarity"), 1e-9)
	assert.Equal(t, 4000, reopened.GetInt("selector.max_total_length"))
	assert.Equal(t, "gpt-4o-mini", reopened.GetString("llm.model"))
}

func TestConfigStore_SetConflictingKeyRollsBack(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	err := store.Set("llm", "flat")

	assert.Error(t, err)
	_, ok := store.Get("llm")
	assert.False(t, ok)
	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
}

func TestConfigStore_SetUnencodableValue(t *testing.T) {
	store := newTestConfigStore(t)

	err := store.Set("channel", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_SetWriteFailureRestoresPrevious(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("batch.workers", 4))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("batch.workers", 8))
	assert.Equal(t, 4, store.GetInt("batch.workers"))
}

func TestConfigStore_LoadPicksUpExternalEdits(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("retrieval.top_k", 5))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[retrieval]\ntop_k = 9\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, 9, store.GetInt("retrieval.top_k"))
}

func TestConfigStore_LoadMissingFileResets(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, os.Remove(store.Path()))

	require.NoError(t, store.Load())

	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("batch.workers", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("batch.workers")
		}()
	}
	wg.Wait()

	_, ok := store.Get("batch.workers")
	assert.True(t, ok)
}

func TestNestKeys(t *testing.T) {
	nested, err := nestKeys(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
