package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chess.log")
	logger, err := build(options{level: zapcore.InfoLevel, toFile: true, format: "json", filePath: path})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("game_restart", zap.String("game_id", "g1"))
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"game_restart"`) || !strings.Contains(out, `"game_id":"g1"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReplaceRestores(t *testing.T) {
	before := L()
	restore := Replace(zap.NewExample())
	if L() == before {
		t.Fatalf("expected logger to be swapped")
	}
	restore()
	if L() != before {
		t.Fatalf("expected logger to be restored")
	}
}
