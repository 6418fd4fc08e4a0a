package rank

import (
	"sort"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/retriever"
)

// Scored pairs a candidate with the bucket and score it was assigned.
type Scored struct {
	Candidate retriever.Candidate
	Bucket    Bucket
	Score     float64
}

// Rank implements §4.4 in full: bucket assignment, weighted-sum scoring
// within each bucket, and the deterministic tie-break chain. The ranker
// cannot fail — a feature absent from configuration simply contributes 0.
func Rank(candidates []retriever.Candidate, ctx ScoringContext) []Scored {
	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = Scored{
			Candidate: c,
			Bucket:    AssignBucket(c, ctx),
			Score:     score(c, ctx),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Bucket != b.Bucket {
			return a.Bucket < b.Bucket
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return lessTieBreak(a.Candidate.Entry, b.Candidate.Entry)
	})

	return out
}

func score(c retriever.Candidate, ctx ScoringContext) float64 {
	if ctx.Config == nil {
		return 0
	}
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	total := 0.0
	for _, name := range names {
		fc, ok := ctx.Config.Feature(name)
		if !ok || !fc.Enabled {
			continue
		}
		total += fc.Weight * registry[name](c, ctx)
	}
	return total
}

// lessTieBreak implements §4.4.3: frequency_rank ASC (nulls last), then
// created_at ASC, then entry.id ASC.
func lessTieBreak(a, b dictdb.Entry) bool {
	ar, br := a.FrequencyRank, b.FrequencyRank
	switch {
	case ar == nil && br == nil:
		// fall through to created_at
	case ar == nil:
		return false
	case br == nil:
		return true
	case *ar != *br:
		return *ar < *br
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
