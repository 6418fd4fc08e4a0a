// Package retriever implements the two candidate-generation modes: forward
// (Japanese script -> entries, via FTS5) and reverse (English/Chinese
// definition text -> entries, via a word-boundary-aware LIKE ladder).
// The reverse-mode post-filter runs on an internal workerPool, adapted
// from the ingestion pipeline's write-oriented pool into a read-only
// equivalent; forward mode's per-reading Pass B queries run concurrently
// under errgroup so the first real error cancels the rest.
package retriever

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/kerrors"
	"github.com/japaniel/kotobasearch/pkg/normalize"
	"github.com/japaniel/kotobasearch/pkg/script"
)

// Mode selects which candidate-generation strategy a query runs.
type Mode string

const (
	Forward Mode = "forward"
	Reverse Mode = "reverse"
)

// MatchType classifies how a forward-mode candidate matched, feeding the
// ranker's hard-rule buckets.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchLemma    MatchType = "lemma"
	MatchPrefix   MatchType = "prefix"
	MatchContains MatchType = "contains"
	MatchOther    MatchType = "other"
)

// Candidate is one retrieved entry plus the senses relevant to ranking and
// display, and the match classification the ranker's bucket rules need.
type Candidate struct {
	Entry           dictdb.Entry
	Senses          []dictdb.Sense
	MatchPriority   int
	MatchType       MatchType
	MatchedSenseIDs []int64 // reverse mode only: senses that survived the post-filter
}

// DecideMode implements the forward/reverse dispatch rule of §4.3: kanji
// script always goes reverse (treated as potential Chinese input); romaji
// goes reverse only when it resolves to a known English lemma that is not
// a bare particle; everything else goes forward.
func DecideMode(kind script.Kind, sanitizedRomaji string, cfg *config.Config) Mode {
	if kind == script.Kanji {
		return Reverse
	}
	if kind == script.Romaji {
		word := strings.ToLower(strings.TrimSpace(sanitizedRomaji))
		if cfg.IsEnglishAllowlisted(word) && !cfg.IsParticle(word) {
			return Reverse
		}
	}
	return Forward
}

// CouldPlausiblyBeForeign reports whether a script classification is
// compatible with retrying in reverse mode after an empty forward result;
// the at-most-once fallback in the engine gates on this.
func CouldPlausiblyBeForeign(kind script.Kind) bool {
	return kind == script.Romaji || kind == script.Kanji
}

func matchTypeFromPriority(priority int) MatchType {
	switch priority {
	case 0:
		return MatchExact
	case 1:
		return MatchLemma
	case 3, 4:
		return MatchPrefix
	case 5:
		return MatchContains
	default:
		return MatchOther
	}
}

// RunForward implements §4.3.1: Pass A (FTS5 primary match), then Pass B
// (variant closure over the readings Pass A surfaced, one concurrent query
// per reading), followed by a single batched sense load.
func RunForward(ctx context.Context, db *dictdb.DB, norm normalize.Result, limit int) ([]Candidate, error) {
	select {
	case <-ctx.Done():
		return nil, &kerrors.QueryCancelled{Stage: "forward retrieval"}
	default:
	}

	if norm.SanitizedKey == "" {
		return nil, nil
	}

	primary, err := dictdb.ForwardPrimary(ctx, db, norm.SanitizedKey+"*", norm.SanitizedKey, limit)
	if err != nil {
		return nil, err
	}

	readings := distinctReadings(primary)

	var variantRows [][]dictdb.ForwardRow
	if len(readings) > 0 {
		variantRows = make([][]dictdb.ForwardRow, len(readings))
		g, gctx := errgroup.WithContext(ctx)
		for i, reading := range readings {
			i, reading := i, reading
			g.Go(func() error {
				rows, err := dictdb.ForwardVariantClosure(gctx, db, reading, norm.SanitizedKey)
				if err != nil {
					return err
				}
				variantRows[i] = rows
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	order, best := mergeForwardRows(primary, variantRows)

	select {
	case <-ctx.Done():
		return nil, &kerrors.QueryCancelled{Stage: "forward retrieval"}
	default:
	}

	ids := make([]int64, len(order))
	copy(ids, order)
	senseMap, err := dictdb.LoadSensesBatch(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(order))
	for _, id := range order {
		row := best[id]
		candidates = append(candidates, Candidate{
			Entry:         row.Entry,
			Senses:        senseMap[id],
			MatchPriority: row.MatchPriority,
			MatchType:     matchTypeFromPriority(row.MatchPriority),
		})
	}
	return candidates, nil
}

// mergeForwardRows combines Pass A's primary rows with Pass B's per-reading
// variant closures into a single priority-ordered set, keyed by entry ID.
// Pass A's priority scale (0..5) is authoritative; Pass B's scale
// (0=headword-equals, 1=reading-equals, 2=other) only overlaps it at 0/1 -
// those are exact matches under either scale. Pass B's 2 is a catch-all, not
// comparable to Pass A's 3/4/5 (prefix/contains), so it may only fill in
// entries Pass A never saw, never downgrade one Pass A already classified.
func mergeForwardRows(primary []dictdb.ForwardRow, variantRows [][]dictdb.ForwardRow) ([]int64, map[int64]dictdb.ForwardRow) {
	order := make([]int64, 0, len(primary))
	best := make(map[int64]dictdb.ForwardRow, len(primary))
	for _, row := range primary {
		if existing, ok := best[row.Entry.ID]; !ok || row.MatchPriority < existing.MatchPriority {
			if !ok {
				order = append(order, row.Entry.ID)
			}
			best[row.Entry.ID] = row
		}
	}
	for _, rows := range variantRows {
		for _, row := range rows {
			existing, ok := best[row.Entry.ID]
			if !ok {
				order = append(order, row.Entry.ID)
				best[row.Entry.ID] = row
				continue
			}
			if row.MatchPriority <= 1 && row.MatchPriority < existing.MatchPriority {
				best[row.Entry.ID] = row
			}
		}
	}
	return order, best
}

func distinctReadings(rows []dictdb.ForwardRow) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, r := range rows {
		if r.Entry.ReadingHiragana == "" || seen[r.Entry.ReadingHiragana] {
			continue
		}
		seen[r.Entry.ReadingHiragana] = true
		out = append(out, r.Entry.ReadingHiragana)
	}
	return out
}

// wordBoundary matches a query as a whole word/phrase inside English
// definition text: either the exact string, or surrounded by non-letter
// boundaries on both sides.
func wordBoundaryPattern(query string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^a-z0-9])` + regexp.QuoteMeta(query) + `($|[^a-z0-9])`)
}

// matchesWholeWordEnglish implements the English half of the word-boundary
// reverse invariant.
func matchesWholeWordEnglish(definition, query string) bool {
	padded := " " + strings.ToLower(definition) + " "
	return wordBoundaryPattern(strings.ToLower(query)).MatchString(padded)
}

// matchesWholeElementChinese implements the Chinese half: the query must
// equal one whole semicolon-delimited element of the definition.
func matchesWholeElementChinese(definition, query string) bool {
	if definition == "" {
		return false
	}
	for _, part := range strings.Split(definition, "；") {
		if strings.TrimSpace(part) == query {
			return true
		}
	}
	for _, part := range strings.Split(definition, ";") {
		if strings.TrimSpace(part) == query {
			return true
		}
	}
	return false
}

// RunReverse implements §4.3.2: a single SQL candidate query widened to
// 2x limit, followed by a strict word-boundary post-filter applied
// concurrently across candidates via the workerPool, since the filter is
// pure CPU work independent per candidate.
func RunReverse(ctx context.Context, db *dictdb.DB, norm normalize.Result, limit int) ([]Candidate, error) {
	select {
	case <-ctx.Done():
		return nil, &kerrors.QueryCancelled{Stage: "reverse retrieval"}
	default:
	}

	query := strings.ToLower(strings.TrimSpace(norm.BaseWord))
	if query == "" {
		return nil, nil
	}

	rows, err := dictdb.ReverseCandidates(ctx, db, query, true, 2*limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(rows))
	pool := newWorkerPool(minInt(len(rows), 8), len(rows))
	pool.start(ctx)
	for i, row := range rows {
		i, row := i, row
		_ = pool.submit(func(ctx context.Context) error {
			var surviving []dictdb.Sense
			var ids []int64
			for _, s := range row.Senses {
				if matchesWholeWordEnglish(s.DefinitionEnglish, query) ||
					matchesWholeElementChinese(s.DefinitionChineseSimplified, query) ||
					matchesWholeElementChinese(s.DefinitionChineseTraditional, query) {
					surviving = append(surviving, s)
					ids = append(ids, s.ID)
				}
			}
			candidates[i] = Candidate{
				Entry:           row.Entry,
				Senses:          surviving,
				MatchPriority:   row.Priority,
				MatchType:       MatchOther,
				MatchedSenseIDs: ids,
			}
			return nil
		})
	}
	if err := pool.close(); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Senses) > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
