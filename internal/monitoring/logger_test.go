package monitoring

import (
	"fmt"
	"strings"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	defer SetLogger(nil)

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})

	Logf("processed %d records", 7)
	if len(got) != 1 || got[0] != "processed 7 records" {
		t.Errorf("got %v", got)
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	SetLogger(nil)
	// must not panic
	Logf("dropped")
	SetLogger(nil)
}

func TestWarnfPrefix(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Warnf("skipped sample at %d", 42)
	if !strings.HasPrefix(got, "warning: ") {
		t.Errorf("missing warning prefix: %q", got)
	}
	if !strings.Contains(got, "skipped sample at 42") {
		t.Errorf("message lost: %q", got)
	}
}
