package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestFileSinkSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(dir, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}

	uri, err := sink.Save(context.Background(), "20260402T100000Z-run1.html", []byte("<html>ok</html>"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if uri != filepath.Join(dir, "20260402T100000Z-run1.html") {
		t.Fatalf("unexpected uri %q", uri)
	}
	body, err := os.ReadFile(uri)
	if err != nil {
		t.Fatalf("read saved snapshot: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Fatalf("unexpected snapshot content %q", body)
	}
}

func TestFileSinkRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(t.TempDir(), 0, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}
	if _, err := sink.Save(context.Background(), "x.html", nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestFileSinkEnforcesMaxBytes(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(t.TempDir(), 4, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}
	if _, err := sink.Save(context.Background(), "x.html", []byte("too large")); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestNoopSink(t *testing.T) {
	t.Parallel()

	uri, err := (NoopSink{}).Save(context.Background(), "x.html", []byte("body"))
	if err != nil {
		t.Fatalf("NoopSink.Save() error = %v", err)
	}
	if uri != "" {
		t.Fatalf("expected empty uri, got %q", uri)
	}
}
