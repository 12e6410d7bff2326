package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/storage"
)

func TestStorage_UploadOverwritesWholeObject(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Upload(ctx, "run/segment_01.md", strings.NewReader("first version, longer\n")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := storage.WriteBytes(ctx, s, "run/segment_01.md", []byte("second\n")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	data, err := storage.ReadAll(ctx, s, "run/segment_01.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("expected overwritten content, got %q", data)
	}

	entries, _ := os.ReadDir(filepath.Join(s.BasePath(), "run"))
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestStorage_DownloadMissing(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	_, err := s.Download(context.Background(), "nope.md")
	if !storage.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_ExistsAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage(t.TempDir())

	ok, err := s.Exists(ctx, "a.json")
	if err != nil || ok {
		t.Fatalf("expected missing, got %v, %v", ok, err)
	}
	_ = storage.WriteBytes(ctx, s, "a.json", []byte("{}"))
	if ok, _ := s.Exists(ctx, "a.json"); !ok {
		t.Fatal("expected file to exist")
	}
	if err := s.Delete(ctx, "a.json"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a.json"); err != nil {
		t.Errorf("deleting a missing file must succeed, got %v", err)
	}
}

func TestStorage_RejectsEscapingPaths(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	for _, p := range []string{"../outside.md", "a/../../outside.md", "."} {
		if err := s.Upload(context.Background(), p, strings.NewReader("x")); err == nil {
			t.Errorf("expected error for %q", p)
		}
	}
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.New(context.Background(), storage.Config{Provider: storage.ProviderLocal, BasePath: dir}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*Storage); !ok {
		t.Fatalf("expected *local.Storage, got %T", s)
	}
}
