package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf})
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARN were logged: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("missing WARN line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("missing ERROR line: %q", out)
	}
}

func TestFatalExits(t *testing.T) {
	l, buf := newTestLogger(INFO)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatalf("boom")

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "[FATAL] boom") {
		t.Errorf("missing FATAL line: %q", buf.String())
	}
}

func TestWithPrefix(t *testing.T) {
	l, buf := newTestLogger(DEBUG)
	scoped := l.With("[scan 1234]").With("[ref]")

	scoped.Infof("hello")

	if !strings.Contains(buf.String(), "[INFO] [scan 1234] [ref] hello") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestNoArgsKeepsPercent(t *testing.T) {
	l, buf := newTestLogger(DEBUG)
	l.Infof("100%")

	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected Level
		wantErr  bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{"Error", ERROR, false},
		{"fatal", FATAL, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseLevel(%q) = %s, expected %s", tt.in, got, tt.expected)
		}
	}
}

func TestWithSharesWriterLock(t *testing.T) {
	parent, buf := newTestLogger(INFO)
	child := parent.With("[child]")

	if parent.mu != child.mu {
		t.Fatal("derived logger must share the parent's mutex")
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			parent.Infof("parent %d", i)
		}()
		go func() {
			defer wg.Done()
			child.Infof("child %d", i)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Fatalf("Expected 100 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "[INFO]") {
			t.Errorf("interleaved line: %q", line)
		}
	}
}
