package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/hyperjump/kotae/internal/models"
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

const (
	clsTokenID = 101
	sepTokenID = 102
)

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs (for testing or fallback).
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	words := SplitWords(text)
	ids := make([]int64, 0, len(words))
	for _, word := range words {
		ids = append(ids, int64(HashString(word)%30000))
	}
	return frame(ids, clsTokenID, sepTokenID, maxTokens)
}

// WordPieceTokenizer implements BERT uncased WordPiece over a vocab.txt file.
type WordPieceTokenizer struct {
	vocab map[string]int64
	unk   int64
	cls   int64
	sep   int64
}

// LoadWordPiece reads a BERT vocab.txt (one token per line, id = line number).
func LoadWordPiece(path string) (*WordPieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open vocab: %v", models.ErrConfig, err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var id int64
	for sc.Scan() {
		vocab[strings.TrimRight(sc.Text(), "\r")] = id
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read vocab: %v", models.ErrConfig, err)
	}
	return NewWordPiece(vocab)
}

// NewWordPiece builds a tokenizer from an in-memory vocabulary, which must
// contain [UNK], [CLS] and [SEP].
func NewWordPiece(vocab map[string]int64) (*WordPieceTokenizer, error) {
	t := &WordPieceTokenizer{vocab: vocab}
	for tok, dst := range map[string]*int64{"[UNK]": &t.unk, "[CLS]": &t.cls, "[SEP]": &t.sep} {
		id, ok := vocab[tok]
		if !ok {
			return nil, fmt.Errorf("%w: vocab is missing %s", models.ErrConfig, tok)
		}
		*dst = id
	}
	return t, nil
}

// Tokenize lowercases, splits on whitespace and punctuation, then applies
// greedy longest-match WordPiece.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	var ids []int64
	for _, word := range basicTokens(text) {
		ids = append(ids, t.wordPiece(word)...)
	}
	return frame(ids, t.cls, t.sep, maxTokens)
}

func (t *WordPieceTokenizer) wordPiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > 100 {
		return []int64{t.unk}
	}
	var out []int64
	for start := 0; start < len(runes); {
		end := len(runes)
		found := int64(-1)
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{t.unk}
		}
		out = append(out, found)
		start = end
	}
	return out
}

func basicTokens(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// frame wraps ids in [CLS] ... [SEP] and pads to maxTokens.
func frame(ids []int64, cls, sep int64, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = cls
	attentionMask[0] = 1
	pos := 1
	for _, id := range ids {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = id
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sep
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	return words
}

// HashString returns a deterministic non-negative hash for use as a simple token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	if h < 0 {
		h = 0
	}
	return h
}
