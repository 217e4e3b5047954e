package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  key: drill:history
drill:
  max: 50
  count: 5
  timePerProblem: 8
  shuffle: true
  autoAdvanceDelay: 750ms
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Key != "drill:history" {
		t.Fatalf("unexpected server/redis config: %+v", cfg)
	}
	d := cfg.Drill.SessionConfig
	if d.Min != 0 || d.Max != 50 || d.Count != 5 || d.TimePerProblem != 8 || !d.Shuffle {
		t.Fatalf("unexpected drill config: %+v", d)
	}
	if !d.AutoNext {
		t.Fatalf("expected autoNext default to survive overlay")
	}
	if got := TTLDuration(cfg.Drill.AutoAdvanceDelay, time.Second); got != 750*time.Millisecond {
		t.Fatalf("expected 750ms, got %v", got)
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if cfg.Drill.Count != 10 || cfg.Drill.Max != 20 {
		t.Fatalf("expected defaults, got %+v", cfg.Drill)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", got)
	}
}

func TestTTLDurationLogsInvalidValue(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	if got := TTLDuration("5OOms", 500*time.Millisecond); got != 500*time.Millisecond {
		t.Fatalf("expected fallback, got %v", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"5OOms"`)) {
		t.Fatalf("expected invalid duration to be logged, got %q", buf.String())
	}

	buf.Reset()
	TTLDuration("750ms", time.Second)
	TTLDuration("", time.Second)
	if buf.Len() != 0 {
		t.Fatalf("expected no log for valid or empty values, got %q", buf.String())
	}
}
