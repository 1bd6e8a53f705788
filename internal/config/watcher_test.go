package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case _, ok := <-w.Changes():
		require.True(t, ok, "watcher closed unexpectedly")
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
}

func TestWatcher_SignalsOnCredentialSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, SaveCredentialTo(path, "max", maxCred("one")))
	waitForChange(t, w)

	require.NoError(t, SaveCredentialTo(path, "max", maxCred("two")))
	waitForChange(t, w)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{}`), 0o644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected signal for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_CloseClosesChannel(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	w.Close()

	_, ok := <-w.Changes()
	require.False(t, ok)
}
