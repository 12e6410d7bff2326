package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/storage"
	"github.com/kbukum/longscribe/storage/local"
)

func newLocal(t *testing.T) (*local.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := local.NewStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	return s, dir
}

func TestNames(t *testing.T) {
	if SegmentJSON(3) != "segment_03.json" || SegmentText(12) != "segment_12.md" {
		t.Errorf("unexpected names %s %s", SegmentJSON(3), SegmentText(12))
	}
}

func TestWriteJSON_Format(t *testing.T) {
	s, dir := newLocal(t)
	w := NewWriter(s)

	v := map[string]any{"zeta": 1, "alpha": "<中文>", "list": []string{"a"}}
	if err := w.WriteJSON(context.Background(), "x.json", v); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "x.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"alpha\": \"<中文>\",\n  \"list\": [\n    \"a\"\n  ],\n  \"zeta\": 1\n}\n"
	if string(got) != want {
		t.Errorf("WriteJSON wrote %q, want %q", got, want)
	}
}

func TestWriteText_Overwrites(t *testing.T) {
	s, dir := newLocal(t)
	w := NewWriter(s)
	ctx := context.Background()

	for _, text := range []string{"first version, long\n", "second\n"} {
		if err := w.WriteText(ctx, Body, text); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := os.ReadFile(filepath.Join(dir, Body))
	if string(got) != "second\n" {
		t.Errorf("expected whole-file overwrite, got %q", got)
	}
}

func TestWriter_Mirror(t *testing.T) {
	primary, _ := newLocal(t)
	mirror, mirrorDir := newLocal(t)
	w := NewWriter(primary, WithMirror(mirror, "runs/r1"))

	if err := w.WriteText(context.Background(), FinalPackage, "# t\n"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(mirrorDir, "runs", "r1", FinalPackage))
	if err != nil || string(got) != "# t\n" {
		t.Errorf("mirror copy = %q, %v", got, err)
	}
}

type failingStorage struct{ storage.Storage }

func (failingStorage) Upload(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}

func TestWriter_StorageError(t *testing.T) {
	w := NewWriter(failingStorage{})
	err := w.WriteText(context.Background(), Body, "x")
	if !apperrors.HasCode(err, apperrors.ErrCodeStorage) {
		t.Fatalf("expected STORAGE_ERROR, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected cause in %q", err)
	}
}
