package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remoteuser.yml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchConfig(ctx, path, log, func() { changed <- struct{}{} })
	}()

	// Writes to other files in the directory are ignored; the config file is
	// rewritten until the watcher has picked up a change.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x"), 0o600))
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log_level: debug\n"), 0o600)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	log, _ := test.NewNullLogger()
	err := watchConfig(context.Background(), filepath.Join(t.TempDir(), "missing", "remoteuser.yml"), log, func() {})
	assert.Error(t, err)
}
