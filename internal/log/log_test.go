package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "chatty")
	l.Debugf("debug")
	l.Infof("info")
	if out := buf.String(); strings.Contains(out, "msg=debug") || !strings.Contains(out, "msg=info") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOrNull(t *testing.T) {
	if OrNull(nil) == nil {
		t.Fatalf("OrNull(nil) returned nil")
	}
	l := NewNull()
	if OrNull(l) != l {
		t.Fatalf("OrNull replaced a non-nil logger")
	}
}
