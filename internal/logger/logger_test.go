package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "weavesearch.log")

	l, err := New(path, "debug")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	l.Debug("stage done", zap.String("stage", "input"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), `"stage":"input"`) {
		t.Errorf("expected structured field in log, got %s", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger for empty context")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}
}
