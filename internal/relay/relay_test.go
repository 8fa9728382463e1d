package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmagar/fifoattach/internal/testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func numberedLines(from, to int) string {
	var sb strings.Builder
	for i := from; i <= to; i++ {
		fmt.Fprintf(&sb, "line %02d\n", i)
	}
	return sb.String()
}

func appendTo(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("open log for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func startRelay(t *testing.T, r *Relay) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("relay did not stop")
		return nil
	}
}

func TestRun_ReplaysTailThenFollows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianobar.log")
	if err := os.WriteFile(path, []byte(numberedLines(1, 40)), 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := &syncBuffer{}
	cancel, done := startRelay(t, &Relay{Path: path, TailLines: 30, Out: out, PollInterval: 20 * time.Millisecond})

	testutil.Eventually(t, 5*time.Second, func() bool {
		return strings.Contains(out.String(), "line 40\n")
	}, "initial tail relayed")
	if got := out.String(); got != numberedLines(11, 40) {
		t.Fatalf("expected last 30 lines, got %q", got)
	}

	appendTo(t, path, "|>  \"Song\" by \"Artist\"\n")
	testutil.Eventually(t, 5*time.Second, func() bool {
		return strings.HasSuffix(out.String(), "|>  \"Song\" by \"Artist\"\n")
	}, "appended bytes relayed")

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}

func TestRun_PartialLinesRelayedImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out := &syncBuffer{}
	startRelay(t, &Relay{Path: path, TailLines: 30, Out: out, PollInterval: 20 * time.Millisecond})

	appendTo(t, path, "#   -02:31/04:10")
	testutil.Eventually(t, 5*time.Second, func() bool {
		return out.String() == "#   -02:31/04:10"
	}, "progress line without newline relayed")
}

func TestRun_TruncatedLogRestartsFromBeginning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := os.WriteFile(path, []byte(numberedLines(1, 5)), 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out := &syncBuffer{}
	startRelay(t, &Relay{Path: path, TailLines: 30, Out: out, PollInterval: 20 * time.Millisecond})
	testutil.Eventually(t, 5*time.Second, func() bool {
		return strings.Contains(out.String(), "line 05")
	}, "initial content relayed")

	if err := os.WriteFile(path, []byte("new\n"), 0644); err != nil {
		t.Fatalf("truncate log: %v", err)
	}
	testutil.Eventually(t, 5*time.Second, func() bool {
		return strings.HasSuffix(out.String(), "new\n")
	}, "content after truncation relayed")
}

func TestRun_RemovedLogEndsRelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := os.WriteFile(path, []byte("hello\n"), 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out := &syncBuffer{}
	_, done := startRelay(t, &Relay{Path: path, TailLines: 1, Out: out, PollInterval: 20 * time.Millisecond})
	testutil.Eventually(t, 5*time.Second, func() bool {
		return out.String() == "hello\n"
	}, "initial content relayed")

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove log: %v", err)
	}
	if err := waitDone(t, done); !errors.Is(err, ErrLogGone) {
		t.Fatalf("expected ErrLogGone, got %v", err)
	}
}

func TestRun_MissingLog(t *testing.T) {
	r := &Relay{Path: filepath.Join(t.TempDir(), "absent.log"), Out: &syncBuffer{}}
	if err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing log")
	}
}

func TestTail(t *testing.T) {
	long := numberedLines(1, 2000)
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"empty", "", 30, ""},
		{"fewer lines than window", "a\nb\n", 30, "a\nb\n"},
		{"exact window", "a\nb\nc\n", 3, "a\nb\nc\n"},
		{"last two", "a\nb\nc\n", 2, "b\nc\n"},
		{"no trailing newline", "a\nb\nc", 2, "b\nc"},
		{"zero lines", "a\nb\n", 0, ""},
		{"blank lines count", "a\n\n\nb\n", 3, "\n\nb\n"},
		{"spans blocks", long, 30, numberedLines(1971, 2000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := strings.NewReader(tt.content)
			off, err := Tail(rs, tt.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := tt.content[off:]; got != tt.want {
				t.Fatalf("Tail(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}
