package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// MemoryBackend keeps documents in-process. Ranking is a weighted term count
// requiring every query term to appear as a word, close to what plainto_tsquery
// does with the simple configuration.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[int64]memoryDoc
	seq  int64
}

type memoryDoc struct {
	doc Document
	// seq is the first-insertion order and breaks rank ties.
	seq int64
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: map[int64]memoryDoc{}}
}

func (b *MemoryBackend) Upsert(_ context.Context, doc Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.docs[doc.RecordID]
	if !ok {
		b.seq++
		cur.seq = b.seq
	}
	cur.doc = doc
	b.docs[doc.RecordID] = cur
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, recordID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.docs, recordID)
	return nil
}

// field weights, highest first: name, native name, summary, biography.
var weights = [4]float64{1.0, 1.0, 0.4, 0.2}

func (b *MemoryBackend) Rank(_ context.Context, text string) ([]int64, error) {
	terms := tokenize(text)
	if len(terms) == 0 {
		return []int64{}, nil
	}

	type hit struct {
		id    int64
		seq   int64
		score float64
	}

	b.mu.RLock()
	hits := make([]hit, 0)
	for id, d := range b.docs {
		fields := [4][]string{
			tokenize(d.doc.FullName),
			tokenize(d.doc.NativeName),
			tokenize(d.doc.ShortSummary),
			tokenize(d.doc.Biography),
		}
		score := 0.0
		matchedAll := true
		for _, term := range terms {
			found := false
			for fi, words := range fields {
				for _, w := range words {
					if w == term {
						score += weights[fi]
						found = true
					}
				}
			}
			if !found {
				matchedAll = false
				break
			}
		}
		if matchedAll {
			hits = append(hits, hit{id: id, seq: d.seq, score: score})
		}
	}
	b.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].seq < hits[j].seq
	})
	out := make([]int64, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.id)
	}
	return out, nil
}

func (b *MemoryBackend) Match(_ context.Context, text string) ([]int64, error) {
	needle := strings.ToLower(text)

	b.mu.RLock()
	out := make([]int64, 0)
	for id, d := range b.docs {
		for _, f := range []string{d.doc.FullName, d.doc.NativeName, d.doc.Biography, d.doc.ShortSummary} {
			if strings.Contains(strings.ToLower(f), needle) {
				out = append(out, id)
				break
			}
		}
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
