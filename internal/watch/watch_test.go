package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"calibcat/internal/testsupport"
	"calibcat/internal/watch"
)

func waitRun(t *testing.T, runs <-chan int, want int) {
	t.Helper()
	select {
	case got := <-runs:
		if got != want {
			t.Fatalf("got run %d, want %d", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for run %d", want)
	}
}

func TestWatcherRerunsOnChanges(t *testing.T) {
	base := t.TempDir()
	cfgPath := testsupport.WriteConfig(t, base, "calib.yaml", "categories: {}\n")
	data := filepath.Join(base, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := watch.New(cfgPath, 100*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer w.Close()

	runs := make(chan int, 8)
	count := 0
	fn := func(ctx context.Context) ([]string, error) {
		count++
		runs <- count
		return []string{data}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, fn) }()

	waitRun(t, runs, 1)

	testsupport.Touch(t, data, "dark1.fits")
	waitRun(t, runs, 2)

	if err := os.WriteFile(cfgPath, []byte("categories: {x: 1}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitRun(t, runs, 3)

	testsupport.Touch(t, base, "unrelated.txt")
	testsupport.Touch(t, data, ".hidden.tmp")
	select {
	case n := <-runs:
		t.Fatalf("unexpected run %d for unwatched change", n)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherMissingDirectoryIsNotFatal(t *testing.T) {
	base := t.TempDir()
	cfgPath := testsupport.WriteConfig(t, base, "calib.yaml", "categories: {}\n")

	w, err := watch.New(cfgPath, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	fn := func(context.Context) ([]string, error) {
		cancel()
		return []string{filepath.Join(base, "missing")}, nil
	}
	if err := w.Run(ctx, fn); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(w.Dirs()) != 0 {
		t.Fatalf("expected no watched data directories, got %v", w.Dirs())
	}
}

func TestWatcherSeesNestedDirectories(t *testing.T) {
	base := t.TempDir()
	cfgPath := testsupport.WriteConfig(t, base, "calib.yaml", "categories: {}\n")
	nested := filepath.Join(base, "data", "night1")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := watch.New(cfgPath, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer w.Close()

	runs := make(chan int, 8)
	count := 0
	fn := func(context.Context) ([]string, error) {
		count++
		runs <- count
		return []string{filepath.Join(base, "data"), nested}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, fn) }()

	waitRun(t, runs, 1)
	testsupport.Touch(t, nested, "dark1.fits")
	waitRun(t, runs, 2)
}
