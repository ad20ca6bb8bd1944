package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/odl/internal/storage"
	"github.com/starford/odl/internal/testutil/fixtures"
	"github.com/starford/odl/pkg/odl"
)

// watcherTestEnv sets up a program dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, odl.DefaultRegistry(), root, quietLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "new.yaml"), []byte(fixtures.Program), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		defs, _ := db.Find(odl.KeyTargets, "NGC 1068")
		return len(defs) == 1
	}, "new program not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.yaml" {
				return true
			}
		}
		return false
	}, "expected created:new.yaml callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, odl.DefaultRegistry(), root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not a program"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "real.yaml"), []byte(fixtures.Telluric), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("real.yaml")
		return cs != ""
	}, "program not indexed")

	if cs, _ := db.GetChecksum("notes.txt"); cs != "" {
		t.Error("non-program file was indexed")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, odl.DefaultRegistry(), root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(root, "2026B")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.yaml"), []byte(fixtures.Telluric), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("2026B/deep.yaml")
		return cs != ""
	}, "program in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	reg := odl.DefaultRegistry()

	_ = os.WriteFile(filepath.Join(root, "del.yaml"), []byte(fixtures.Telluric), 0o644)
	if err := Sync(db, store, reg, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("del.yaml"); cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, reg, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(root, "del.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.yaml")
		return cs == ""
	}, "deleted program still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	reg := odl.DefaultRegistry()

	_ = os.WriteFile(filepath.Join(root, "old.yaml"), []byte(fixtures.Telluric), 0o644)
	_ = Sync(db, store, reg, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, reg, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(root, "old.yaml"), filepath.Join(root, "renamed.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.yaml")
		newCS, _ := db.GetChecksum("renamed.yaml")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestWatcher_ReconcileCallbacks(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	reg := odl.DefaultRegistry()

	if err := IndexFile(db, reg, "gone.yaml", []byte(fixtures.Telluric)); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(root, "here.yaml"), []byte(fixtures.Telluric), 0o644)

	var events []string
	w := &watcher{db: db, store: store, reg: reg, root: root, logger: quietLogger(),
		cb: func(kind, path string) { events = append(events, kind+":"+path) }}
	w.reconcile()

	want := map[string]bool{"deleted:gone.yaml": true, "created:here.yaml": true}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for _, e := range events {
		if !want[e] {
			t.Errorf("unexpected event %q", e)
		}
	}

	events = nil
	w.reconcile()
	if len(events) != 0 {
		t.Errorf("second reconcile should be a no-op, got %v", events)
	}
}
