package rank

import (
	"unicode/utf8"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/retriever"
)

// Bucket is a hard-rule partition; buckets fully partition the ranked
// list and never reorder relative to each other — only the weighted-sum
// score breaks ties inside one bucket.
type Bucket int

const (
	BucketExact Bucket = iota
	BucketLemma
	BucketCommonPrefix
	BucketGeneral
	BucketSpecializedRare
)

// AssignBucket implements §4.4.1. Exact-headword matches always win
// (bucket 1); a rare-tag penalty or a no-JLPT multi-character lemma match
// demotes to bucket 5 even though it would otherwise qualify for bucket 2
// — this is what keeps a frequency-tied rare-kanji homophone (匪徒) from
// outranking a common one (人) sharing the same reading.
func AssignBucket(c retriever.Candidate, ctx ScoringContext) Bucket {
	isExact := c.MatchType == retriever.MatchExact
	isLemma := c.MatchType == retriever.MatchLemma

	if isExact {
		return BucketExact
	}

	hasRareTag := hasArchaicPenalty(c, ctx) || hasVulgarPenalty(c, ctx) || hasDomainPenalty(c, ctx)
	uncommonLemma := isLemma && !c.Entry.HasJLPT() && utf8.RuneCountInString(c.Entry.Headword) > 1
	if hasRareTag || uncommonLemma {
		return BucketSpecializedRare
	}

	if isLemma {
		return BucketLemma
	}

	if c.MatchPriority == 3 || c.MatchPriority == 4 {
		return BucketCommonPrefix
	}

	return BucketGeneral
}

func hasArchaicPenalty(c retriever.Candidate, ctx ScoringContext) bool {
	return senseTaggedWith(c.Senses, ctx.Config.ArchaicMarkers)
}

func hasVulgarPenalty(c retriever.Candidate, ctx ScoringContext) bool {
	return senseTaggedWith(c.Senses, ctx.Config.VulgarMarkers)
}

func hasDomainPenalty(c retriever.Candidate, ctx ScoringContext) bool {
	return senseTaggedWith(c.Senses, ctx.Config.DomainMarkers)
}

func senseTaggedWith(senses []dictdb.Sense, markers []string) bool {
	for _, s := range senses {
		haystacks := []string{s.PartOfSpeech, s.UsageNotes}
		for _, h := range haystacks {
			for _, m := range markers {
				if containsFold(h, m) {
					return true
				}
			}
		}
	}
	return false
}
