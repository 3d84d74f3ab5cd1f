package groups

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDatasetWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.yaml")
	if err := os.WriteFile(path, []byte(sampleDataset), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	service := NewService(Options{Source: FileSource{Path: path}})
	if _, err := service.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload: %v", err)
	}

	reloaded := make(chan error, 16)
	watcher := NewDatasetWatcher(path, service,
		WithWatchDebounce(10*time.Millisecond),
		WithReloadCallback(func(_ BuildReport, err error) { reloaded <- err }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	updated := sampleDataset + "  - id: 7\n    name: Wholesale\n    customer_count: 3\n    discount_percent: 12\n"
	// the watcher registers asynchronously, so keep writing until a reload lands
	deadline := time.After(3 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case err := <-reloaded:
			// a reload can race a truncating write; the next one settles it
			if err == nil {
				break wait
			}
		case <-ticker.C:
			if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
				t.Fatalf("rewrite dataset: %v", err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}

	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalGroups != 3 {
		t.Fatalf("expected 3 groups after reload, got %d", stats.TotalGroups)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("watcher did not stop")
	}
}

type failingReloader struct{}

func (failingReloader) Reload(context.Context) (BuildReport, error) {
	return BuildReport{}, os.ErrNotExist
}

func TestDatasetWatcherMissingDirectory(t *testing.T) {
	watcher := NewDatasetWatcher(filepath.Join(t.TempDir(), "missing", "groups.yaml"), failingReloader{})
	err := watcher.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "watch") {
		t.Fatalf("expected watch error, got %v", err)
	}
}
