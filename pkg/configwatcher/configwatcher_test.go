package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"onlinecourse_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database:\n  driver: sqlite\nexam:\n  pass_percent: 60\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 就绪后再写入
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("database:\n  driver: sqlite\nexam:\n  pass_percent: 70\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 70.0, cfg.Exam.PassPercent)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
