package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc-cli/internal/core/services"
)

func newTestPromptStore(t *testing.T) *PromptStore {
	t.Helper()
	store, err := NewPromptStore(filepath.Join(t.TempDir(), "prompts"))
	require.NoError(t, err)
	return store
}

func TestLoadReturnsDefaults(t *testing.T) {
	store := newTestPromptStore(t)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Contains(t, answer, services.PlaceholderContext)
	assert.Contains(t, answer, services.PlaceholderQuestion)

	system, err := store.Load(driven.PromptGradeSystem)
	require.NoError(t, err)
	assert.Contains(t, system, "binary score")

	user, err := store.Load(driven.PromptGradeUser)
	require.NoError(t, err)
	assert.Contains(t, user, "{facts}")
	assert.Contains(t, user, "{answer}")
}

func TestLoadCreatesDefaultFiles(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, name := range []string{"answer", "grade_system", "grade_user"} {
		_, err := os.Stat(filepath.Join(store.Dir(), name+".txt"))
		assert.NoError(t, err, "expected %s.txt to be created", name)
	}
	_, err = os.Stat(filepath.Join(store.Dir(), "README.md"))
	assert.NoError(t, err)
}

func TestLoadPrefersUserFile(t *testing.T) {
	store := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0700))

	custom := "Answer from {context} only. Question: {question}"
	path := filepath.Join(store.Dir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte(custom+"\n"), 0600))

	loaded, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, custom, loaded)
}

func TestLoadUnknownPrompt(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load("nonexistent")
	assert.Error(t, err)
}

func TestReloadPicksUpEdits(t *testing.T) {
	store := newTestPromptStore(t)

	original, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	edited := "Edited: {context} / {question}"
	path := filepath.Join(store.Dir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte(edited), 0600))

	// Cached until reload.
	cached, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, original, cached)

	store.Reload()

	fresh, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, edited, fresh)
}

func TestWatchReloadsOnEdit(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	require.NoError(t, store.Watch())
	defer store.Close()

	edited := "Watched edit: {context} / {question}"
	path := filepath.Join(store.Dir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte(edited), 0600))

	require.Eventually(t, func() bool {
		loaded, err := store.Load(driven.PromptAnswer)
		return err == nil && loaded == edited
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCloseWithoutWatchIsNoop(t *testing.T) {
	store := newTestPromptStore(t)
	assert.NoError(t, store.Close())
}
