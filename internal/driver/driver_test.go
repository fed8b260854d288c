package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"ilsc/internal/diag"
	"ilsc/internal/driver"
)

const hello = `
fn unused() { @println(0); }
fn main() { @println("hi"); }
`

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileSourcePhases(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	opts := driver.Options{
		KeepIR: true,
		Observer: func(ev driver.PhaseEvent) {
			mu.Lock()
			defer mu.Unlock()
			mark := "+"
			if ev.Status == driver.PhaseEnd {
				mark = "-"
			}
			events = append(events, mark+ev.Name)
		},
	}
	res, err := driver.CompileSource(context.Background(), "hello.ils", []byte(hello), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() {
		t.Fatalf("diagnostics: %v", res.Bag.Items())
	}
	want := []string{"+parse", "-parse", "+lower", "-lower", "+prune", "-prune", "+emit", "-emit"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v", events)
	}
	if !strings.Contains(res.Asm, "call printf") || strings.Contains(res.Asm, "unused:") {
		t.Errorf("unexpected asm:\n%s", res.Asm)
	}
	if !slices.Equal(res.Removed, []string{"unused"}) {
		t.Errorf("Removed = %v", res.Removed)
	}
	if !strings.Contains(res.IR, "FUNC_MAIN_START") {
		t.Errorf("IR dump missing entry label:\n%s", res.IR)
	}
	if res.Timing == nil || len(res.Timing.Phases) != 4 || res.Timing.File != "hello.ils" {
		t.Errorf("timing = %+v", res.Timing)
	}
}

func TestCompileSourceStopsAtFirstFailingPhase(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"syntax", `fn main() { x: int = ; }`, diag.SynExpectExpression},
		{"lowering", `fn main() { y = 1; }`, diag.UndeclaredVariable},
		{"emission", `s: str = "x"; fn main() { }`, diag.UnsupportedFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := driver.CompileSource(context.Background(), "bad.ils", []byte(tt.src), driver.Options{})
			if err != nil {
				t.Fatal(err)
			}
			if !res.Failed() {
				t.Fatal("expected diagnostics")
			}
			if got := res.Bag.Items()[0]; got.Code != tt.code || got.File != "bad.ils" {
				t.Errorf("diagnostic = %+v, want code %s", got, tt.code.ID())
			}
			if res.Asm != "" {
				t.Error("failed compile produced assembly")
			}
		})
	}
}

func TestCompileFileMissing(t *testing.T) {
	res, err := driver.CompileFile(context.Background(), filepath.Join(t.TempDir(), "nope.ils"), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Failed() || res.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("expected IOLoadFileError, got %v", res.Bag.Items())
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Cache: cache}

	first, err := driver.CompileSource(context.Background(), "hello.ils", []byte(hello), opts)
	if err != nil || first.Cached {
		t.Fatalf("first compile: cached=%v err=%v", first.Cached, err)
	}
	second, err := driver.CompileSource(context.Background(), "hello.ils", []byte(hello), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Asm != first.Asm || !slices.Equal(second.Removed, first.Removed) {
		t.Fatalf("second compile not served from cache: %+v", second)
	}

	// a different option set is a different entry
	withIR := opts
	withIR.KeepIR = true
	third, _ := driver.CompileSource(context.Background(), "hello.ils", []byte(hello), withIR)
	if third.Cached {
		t.Error("KeepIR result served from an entry without IR")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	var unit driver.CachedUnit
	key := driver.CacheKey([]byte(hello), "any", false)
	if ok, err := cache.Get(key, &unit); ok || err != nil {
		t.Errorf("Get after DropAll: ok=%v err=%v", ok, err)
	}
	fourth, _ := driver.CompileSource(context.Background(), "hello.ils", []byte(hello), opts)
	if fourth.Cached {
		t.Error("entry survived DropAll")
	}
}

func TestFailedCompilesAreNotCached(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := []byte(`fn main() { y = 1; }`)
	for range 2 {
		res, _ := driver.CompileSource(context.Background(), "bad.ils", src, driver.Options{Cache: cache})
		if res.Cached {
			t.Fatal("failure was cached")
		}
	}
}

func TestNilCache(t *testing.T) {
	var c *driver.DiskCache
	if err := c.Put(driver.Digest{}, &driver.CachedUnit{}); err != nil {
		t.Error(err)
	}
	if ok, err := c.Get(driver.Digest{}, &driver.CachedUnit{}); ok || err != nil {
		t.Errorf("Get on nil cache: %v %v", ok, err)
	}
}

func TestCacheKey(t *testing.T) {
	src := []byte("fn main() { }")
	a := driver.CacheKey(src, "1.0.0", false)
	if a != driver.CacheKey(src, "1.0.0", false) {
		t.Error("key is not deterministic")
	}
	for _, b := range []driver.Digest{
		driver.CacheKey(src, "1.0.1", false),
		driver.CacheKey(src, "1.0.0", true),
		driver.CacheKey([]byte("fn main() {}"), "1.0.0", false),
	} {
		if a == b {
			t.Error("distinct inputs share a key")
		}
	}
	if a.IsZero() || len(a.String()) != 64 {
		t.Errorf("bad digest %s", a)
	}
}

func TestCompileFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.ils", `fn main() { @exit(2); }`)
	writeFile(t, dir, "a.ils", `fn main() { @exit(1); }`)
	writeFile(t, dir, "c.ils", `fn main() { y = 1; }`)
	writeFile(t, dir, "notes.txt", "skip me")

	files, err := driver.ListSources(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 || filepath.Base(files[0]) != "a.ils" {
		t.Fatalf("files = %v", files)
	}
	results, err := driver.CompileFiles(context.Background(), files, 2, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i, res := range results {
		if res.Path != files[i] {
			t.Errorf("result %d is for %s", i, res.Path)
		}
	}
	if !strings.Contains(results[0].Asm, "mov rdi, 1") || !strings.Contains(results[1].Asm, "mov rdi, 2") {
		t.Error("results mixed up")
	}
	if !results[2].Failed() {
		t.Error("broken file compiled")
	}
}

func TestCompileFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ils", `fn main() { }`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.CompileFiles(ctx, []string{path}, 1, driver.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
