package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCorpus_OrderAndFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "second")
	writeFile(t, filepath.Join(root, "a.MD"), "first")
	writeFile(t, filepath.Join(root, "cases", "c.txt"), "nested")
	writeFile(t, filepath.Join(root, "image.png"), "skip")
	writeFile(t, filepath.Join(root, ".hidden", "h.txt"), "skip")
	writeFile(t, filepath.Join(root, ".draft.txt"), "skip")

	docs, err := LoadCorpus(context.Background(), CorpusOptions{
		Directories: []string{root},
		Extensions:  []string{".txt", "md"},
		Recursive:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	wantTitles := []string{"a.MD", "b.txt", "cases/c.txt"}
	if len(docs) != len(wantTitles) {
		t.Fatalf("got %d documents: %+v", len(docs), docs)
	}
	for i, d := range docs {
		if d.Title != wantTitles[i] {
			t.Errorf("doc %d title = %s, want %s", i, d.Title, wantTitles[i])
		}
		if d.ID != fileid.DocID(d.Path) {
			t.Errorf("doc %d id = %s", i, d.ID)
		}
	}
	if docs[0].Text != "first" || docs[2].Text != "nested" {
		t.Errorf("unexpected text: %q %q", docs[0].Text, docs[2].Text)
	}
}

func TestLoadCorpus_NonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), "top")
	writeFile(t, filepath.Join(root, "sub", "deep.txt"), "deep")
	docs, err := LoadCorpus(context.Background(), CorpusOptions{Directories: []string{root}})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Title != "top.txt" {
		t.Errorf("got %+v", docs)
	}
}

func TestLoadCorpus_MissingDirectoryCreated(t *testing.T) {
	root := filepath.Join(t.TempDir(), "legal-docs")
	docs, err := LoadCorpus(context.Background(), CorpusOptions{Directories: []string{root}, Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents", len(docs))
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("corpus directory should be created: %v", err)
	}
}

func TestLoadCorpus_ExtractionFailureAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "fine")
	writeFile(t, filepath.Join(root, "broken.docx"), "not a zip")
	_, err := LoadCorpus(context.Background(), CorpusOptions{Directories: []string{root}})
	if !errors.Is(err, models.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestLoadCorpus_DuplicateDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "once")
	docs, err := LoadCorpus(context.Background(), CorpusOptions{Directories: []string{root, root}})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Errorf("duplicate directory should not duplicate documents, got %d", len(docs))
	}
}
