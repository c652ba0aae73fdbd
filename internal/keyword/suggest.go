package keyword

import (
	"sort"
	"strings"
	"unicode"
)

// TermDictionary exposes indexed terms and their document frequencies.
type TermDictionary interface {
	Terms() (map[string]int, error)
}

// Suggester proposes a corrected query when a chunk lookup finds nothing.
type Suggester struct {
	dict        TermDictionary
	maxDistance int
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance for a replacement term.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// NewSuggester creates a Suggester over dict. Default max distance is 2.
func NewSuggester(dict TermDictionary, opts ...SuggesterOption) *Suggester {
	s := &Suggester{dict: dict, maxDistance: 2}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Correct replaces every query term missing from the dictionary with the
// closest indexed term. It reports false when nothing was replaced.
func (s *Suggester) Correct(query string) (string, bool, error) {
	terms, err := s.dict.Terms()
	if err != nil {
		return "", false, err
	}
	words := queryTerms(query)
	changed := false
	for i, w := range words {
		if _, ok := terms[w]; ok {
			continue
		}
		if best, ok := s.closest(w, terms); ok {
			words[i] = best
			changed = true
		}
	}
	if !changed {
		return query, false, nil
	}
	return strings.Join(words, " "), true, nil
}

type candidate struct {
	term     string
	distance int
	freq     int
}

// closest picks the nearest term, breaking ties by higher frequency then
// lexical order so the answer does not depend on map iteration.
func (s *Suggester) closest(word string, terms map[string]int) (string, bool) {
	var found []candidate
	wordLen := len([]rune(word))
	for term, freq := range terms {
		diff := len([]rune(term)) - wordLen
		if diff > s.maxDistance || -diff > s.maxDistance {
			continue
		}
		if d := editDistance(word, term); d <= s.maxDistance {
			found = append(found, candidate{term: term, distance: d, freq: freq})
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		if found[i].freq != found[j].freq {
			return found[i].freq > found[j].freq
		}
		return found[i].term < found[j].term
	})
	return found[0].term, true
}

// queryTerms lowercases the query and strips surrounding punctuation, which
// is close enough to the standard analyzer for dictionary lookups.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
