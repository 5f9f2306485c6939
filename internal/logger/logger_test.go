package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithComponent(t *testing.T) {
	entry := New().WithComponent("sec")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "sec" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
	nested := entry.WithField("cik", "0000320193").WithError(errors.New("x"))
	if nested.Entry.Data["component"] != "sec" || nested.Entry.Data["cik"] != "0000320193" {
		t.Fatalf("fields not carried: %v", nested.Entry.Data)
	}
}

func TestConfigureRejectsBadInput(t *testing.T) {
	t.Setenv("FINDATA_LOG_LEVEL", "")

	if err := New().Configure(Options{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if err := New().Configure(Options{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestConfigureJSON(t *testing.T) {
	t.Setenv("FINDATA_LOG_LEVEL", "")

	l := New()
	if err := l.Configure(Options{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	var buf bytes.Buffer
	l.Logger.SetOutput(&buf)
	l.WithComponent("stock").WithFields(Fields{"symbol": "AAPL"}).Debug("resolved")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if rec["message"] != "resolved" || rec["component"] != "stock" || rec["symbol"] != "AAPL" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestEnvLevelWins(t *testing.T) {
	t.Setenv("FINDATA_LOG_LEVEL", "warn")
	l := New()
	if err := l.Configure(Options{Level: "debug"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if l.Logger.GetLevel().String() != "warning" {
		t.Errorf("level = %s, want warning", l.Logger.GetLevel())
	}
}

func TestConfigureFileOutput(t *testing.T) {
	t.Setenv("FINDATA_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "findata.log")

	l := New()
	if err := l.Configure(Options{Level: "info", Format: "text", Output: path}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	l.WithComponent("test").Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing message: %q", data)
	}
}
