package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

type recordingObserver struct {
	mu        sync.Mutex
	ops       []string
	attempts  int
	successes int
	failures  int
	stale     int
}

func (r *recordingObserver) ObserveOperation(volume, operation string, _ float64, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, volume+":"+operation)
}

func (r *recordingObserver) ObserveRetryAttempt(string, string) { r.mu.Lock(); r.attempts++; r.mu.Unlock() }
func (r *recordingObserver) ObserveRetrySuccess(string, string) { r.mu.Lock(); r.successes++; r.mu.Unlock() }
func (r *recordingObserver) ObserveRetryFailure(string, string) { r.mu.Lock(); r.failures++; r.mu.Unlock() }
func (r *recordingObserver) ObserveStaleError(string, string)   { r.mu.Lock(); r.stale++; r.mu.Unlock() }

func installObserver(t *testing.T) *recordingObserver {
	t.Helper()
	obs := &recordingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })
	return obs
}

func noSleepConfig(slept *[]time.Duration) RetryConfig {
	config := DefaultRetryConfig()
	config.sleep = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return config
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
	if config.VolumeResolver != nil {
		t.Error("VolumeResolver should be nil by default")
	}
}

func TestIsStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStaleError(tt.err); got != tt.want {
				t.Errorf("isStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetry_RecoversFromStaleHandle(t *testing.T) {
	obs := installObserver(t)
	var slept []time.Duration
	calls := 0

	got, err := withRetry("open", "/card/book.fb2", noSleepConfig(&slept), func() (string, error) {
		calls++
		if calls < 3 {
			return "", syscall.ESTALE
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("withRetry() = %q, want ok", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(slept) != 2 || slept[0] != 50*time.Millisecond || slept[1] != 100*time.Millisecond {
		t.Errorf("backoff sequence = %v, want [50ms 100ms]", slept)
	}
	if obs.stale != 2 || obs.attempts != 2 || obs.successes != 1 || obs.failures != 0 {
		t.Errorf("observer counts stale=%d attempts=%d successes=%d failures=%d",
			obs.stale, obs.attempts, obs.successes, obs.failures)
	}
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	obs := installObserver(t)
	var slept []time.Duration
	calls := 0

	_, err := withRetry("readdir", "/card", noSleepConfig(&slept), func() (int, error) {
		calls++
		return 0, syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("withRetry() error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (1 + 3 retries)", calls)
	}
	if len(slept) != 3 {
		t.Errorf("sleeps = %d, want 3", len(slept))
	}
	if obs.failures != 1 {
		t.Errorf("failures = %d, want 1", obs.failures)
	}
}

func TestWithRetry_BackoffIsCapped(t *testing.T) {
	var slept []time.Duration
	config := noSleepConfig(&slept)
	config.MaxRetries = 6

	_, _ = withRetry("stat", "/card", config, func() (bool, error) {
		return false, syscall.ESTALE
	})

	for _, d := range slept {
		if d > config.MaxBackoff {
			t.Errorf("backoff %v exceeds cap %v", d, config.MaxBackoff)
		}
	}
	if slept[len(slept)-1] != config.MaxBackoff {
		t.Errorf("last backoff = %v, want %v", slept[len(slept)-1], config.MaxBackoff)
	}
}

func TestWithRetry_NonStaleErrorFailsFast(t *testing.T) {
	calls := 0
	_, err := withRetry("stat", "/card/missing", noSleepConfig(nil), func() (int, error) {
		calls++
		return 0, os.ErrNotExist
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want ErrNotExist", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStatWithRetry(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "book.epub")
	if err := os.WriteFile(path, []byte("epub"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("StatWithRetry() error = %v", err)
	}
	if info.Size() != 4 {
		t.Errorf("Size() = %d, want 4", info.Size())
	}

	if _, err := StatWithRetry(filepath.Join(tmpDir, "missing"), DefaultRetryConfig()); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestOpenWithRetry(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "book.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := OpenWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("OpenWithRetry() error = %v", err)
	}
	defer f.Close()

	buf := make([]byte, 5)
	if _, err := f.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("content = %q, want hello", buf)
	}
}

func TestReadDirWithRetry(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"b.fb2", "a.epub"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "classics"), 0o755); err != nil {
		t.Fatal(err)
	}

	obs := installObserver(t)
	resolver := NewVolumeResolver(map[string]string{"card": tmpDir})
	config := DefaultRetryConfig()
	config.VolumeResolver = resolver

	entries, err := ReadDirWithRetry(tmpDir, config)
	if err != nil {
		t.Fatalf("ReadDirWithRetry() error = %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a.epub", "b.fb2", "classics"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if len(obs.ops) != 1 || obs.ops[0] != "card:readdir" {
		t.Errorf("observed ops = %v, want [card:readdir]", obs.ops)
	}
}

func TestVolumeResolver_Resolve(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"card":     "/media/sdcard",
		"nested":   "/media/sdcard/books",
		"internal": "/media/internal",
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "mount root", path: "/media/sdcard", want: "card"},
		{name: "file on card", path: "/media/sdcard/a.fb2", want: "card"},
		{name: "longest prefix wins", path: "/media/sdcard/books/b.epub", want: "nested"},
		{name: "sibling prefix is not a match", path: "/media/sdcard2/x", want: "unknown"},
		{name: "other volume", path: "/media/internal/x", want: "internal"},
		{name: "outside all volumes", path: "/tmp/x", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vr.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_NilResolver(t *testing.T) {
	var vr *VolumeResolver
	if got := vr.Resolve("/media/sdcard"); got != "unknown" {
		t.Errorf("nil resolver Resolve() = %q, want unknown", got)
	}
}

func TestRetryConfig_ResolveVolume_FallsBackToDefault(t *testing.T) {
	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"card": "/media/sdcard"}))
	t.Cleanup(func() { SetDefaultVolumeResolver(nil) })

	config := DefaultRetryConfig()
	if got := config.resolveVolume("/media/sdcard/x.fb2"); got != "card" {
		t.Errorf("resolveVolume() = %q, want card", got)
	}

	config.VolumeResolver = NewVolumeResolver(map[string]string{"override": "/media"})
	if got := config.resolveVolume("/media/sdcard/x.fb2"); got != "override" {
		t.Errorf("resolveVolume() with override = %q, want override", got)
	}
}

func TestNewMountResolver(t *testing.T) {
	vr := NewMountResolver("card", "/media/sdcard", "/run/media/usb0", "")

	tests := []struct {
		path string
		want string
	}{
		{"/media/sdcard/a.fb2", "card"},
		{"/run/media/usb0/Fiction/b.epub", "card"},
		{"/run/media/usb1/c.txt", "unknown"},
	}

	for _, tt := range tests {
		if got := vr.Resolve(tt.path); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
