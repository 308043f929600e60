// Package search maintains per-record search documents and answers text
// queries in ranked mode, or by substring matching when ranking is unavailable.
package search

import (
	"context"
	"errors"
	"strings"

	"memorial-registry/internal/apperr"
	"memorial-registry/internal/observability/metrics"
	"memorial-registry/pkg/logger"
)

// Mode is the operating mode of the index.
type Mode string

const (
	ModeRanked   Mode = "ranked"
	ModeFallback Mode = "fallback"
)

// ErrRankingUnavailable is returned by a backend that cannot rank right now.
var ErrRankingUnavailable = errors.New("search: ranking unavailable")

// Document is the searchable text of one record.
type Document struct {
	RecordID     int64
	FullName     string
	NativeName   string
	Biography    string
	ShortSummary string
}

// Text is the concatenated search document persisted alongside the record.
func (d Document) Text() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.FullName, d.NativeName, d.Biography, d.ShortSummary} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Backend is the storage side of the index.
type Backend interface {
	Upsert(ctx context.Context, doc Document) error
	Remove(ctx context.Context, recordID int64) error
	// Rank returns ids ordered by descending relevance, ties by insertion order.
	Rank(ctx context.Context, text string) ([]int64, error)
	// Match returns ids whose fields contain text, case-insensitively.
	Match(ctx context.Context, text string) ([]int64, error)
}

// Result of a query. Ranked is false when IDs carry no relevance order.
type Result struct {
	IDs    []int64
	Ranked bool
	Mode   Mode
}

type Index struct {
	backend Backend
	mode    Mode
}

func NewIndex(backend Backend, mode Mode) *Index {
	if mode != ModeFallback {
		mode = ModeRanked
	}
	return &Index{backend: backend, mode: mode}
}

func (i *Index) Mode() Mode { return i.mode }

// Reindex replaces the search document of doc.RecordID. The mutation pipeline
// calls it synchronously after every write that changed a text field.
func (i *Index) Reindex(ctx context.Context, doc Document) error {
	if doc.RecordID <= 0 {
		return apperr.Validation("search: record id required")
	}
	return i.backend.Upsert(ctx, doc)
}

func (i *Index) Remove(ctx context.Context, recordID int64) error {
	return i.backend.Remove(ctx, recordID)
}

// Query evaluates text. A blank query is invalid; callers treat it as "no
// text filter" before getting here.
func (i *Index) Query(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, apperr.Validation("search query must not be blank")
	}

	if i.mode == ModeRanked {
		ids, err := i.backend.Rank(ctx, text)
		if err == nil {
			metrics.SearchQueriesTotal.WithLabelValues(string(ModeRanked)).Inc()
			return Result{IDs: ids, Ranked: true, Mode: ModeRanked}, nil
		}
		if !errors.Is(err, ErrRankingUnavailable) {
			return Result{}, err
		}
		logger.From(ctx).Warn("search ranking unavailable, using substring fallback", "err", err)
		metrics.SearchFallbacksTotal.Inc()
	}

	ids, err := i.backend.Match(ctx, text)
	if err != nil {
		return Result{}, err
	}
	metrics.SearchQueriesTotal.WithLabelValues(string(ModeFallback)).Inc()
	return Result{IDs: ids, Mode: ModeFallback}, nil
}
