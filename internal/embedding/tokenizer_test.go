package embedding

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("hello world", 10)
	if len(ids) != 10 {
		t.Errorf("len(ids)=%d", len(ids))
	}
	if ids[0] != 101 {
		t.Errorf("expected CLS 101, got %d", ids[0])
	}
	if ids[3] != 102 {
		t.Errorf("expected SEP 102 after two words, got %d", ids[3])
	}
	if attn[0] != 1 || attn[3] != 1 || attn[4] != 0 {
		t.Errorf("attention mask = %v", attn)
	}
}

func TestSimpleTokenizer_Truncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize(strings.Repeat("word ", 50), 8)
	if len(ids) != 8 {
		t.Fatalf("len(ids)=%d", len(ids))
	}
	for i, a := range attn {
		if a != 1 {
			t.Errorf("position %d should be attended when text overflows", i)
		}
	}
}

func writeVocab(t *testing.T, tokens ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(tokens, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWordPiece_Tokenize(t *testing.T) {
	path := writeVocab(t, "[PAD]", "[UNK]", "[CLS]", "[SEP]", "the", "court", "rule", "##d", ",", "contract")
	tok, err := LoadWordPiece(path)
	if err != nil {
		t.Fatal(err)
	}
	ids, attn, _ := tok.Tokenize("The court ruled, xyz", 12)
	want := []int64{2, 4, 5, 6, 7, 8, 1, 3, 0}
	for i, w := range want {
		if ids[i] != w {
			t.Errorf("ids[%d] = %d, want %d (all %v)", i, ids[i], w, ids)
		}
	}
	if attn[7] != 1 || attn[8] != 0 {
		t.Errorf("attention mask = %v", attn)
	}
}

func TestWordPiece_MissingSpecialTokens(t *testing.T) {
	path := writeVocab(t, "[PAD]", "hello")
	_, err := LoadWordPiece(path)
	if !errors.Is(err, models.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	_, err = LoadWordPiece(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, models.ErrConfig) {
		t.Fatalf("missing vocab: expected ErrConfig, got %v", err)
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  a  b  c  ")
	if len(words) != 3 {
		t.Errorf("expected 3 words, got %v", words)
	}
	if SplitWords("") != nil {
		t.Error("empty string should return nil")
	}
}

func TestHashString(t *testing.T) {
	h := HashString("abc")
	if h == 0 {
		t.Error("hash should be non-zero")
	}
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
	if HashString(strings.Repeat("overflow", 40)) < 0 {
		t.Error("hash should never be negative")
	}
}
