package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, &Config{HideDebug: true, HideWarn: true})
	l.Debugf("debug %d", 1)
	l.Warnf("warn %d", 2)
	l.Infof("info %d", 3)
	l.Errorf("error %d", 4)
	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "warn 2") {
		t.Fatalf("hidden levels leaked: %q", out)
	}
	if !strings.Contains(out, "[INFO] info 3") {
		t.Fatalf("missing info line: %q", out)
	}
	if !strings.Contains(out, "[ERRO] error 4") {
		t.Fatalf("missing error line: %q", out)
	}
}

func TestShowAll(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)
	l.Debug("d")
	l.Warn("w")
	out := buf.String()
	if !strings.Contains(out, "[DEBU] d") || !strings.Contains(out, "[WARN] w") {
		t.Fatalf("missing lines: %q", out)
	}
}
