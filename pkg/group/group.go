// Package group merges ranked writing variants into display groups and
// decides each group's surface form, per §4.5. Grouping and the
// kana-first display policy never mutate a stored headword; both are
// projection-time concerns.
package group

import (
	"strings"
	"unicode/utf8"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/rank"
	"github.com/japaniel/kotobasearch/pkg/retriever"
)

// Kind classifies a group's relationship to the query.
type Kind string

const (
	BaseWord        Kind = "baseWord"
	Variant         Kind = "variant"
	RelatedCompound Kind = "relatedCompound"
	Other           Kind = "other"
)

// Group is one display unit: a primary entry plus any writing variants
// that share its reading and kanji, ready for UI rendering.
type Group struct {
	Kind               Kind
	DisplayHeadword    string
	AlternateHeadwords []string
	Primary            rank.Scored
	Members            []rank.Scored
}

// Assemble implements §4.5 over an already-ranked, ordered list: entries
// earlier in ranked preserve their relative order as group primaries;
// later entries either join an existing group or start a new one.
func Assemble(ranked []rank.Scored, query string) []Group {
	anchorKanji := computeAnchorKanji(ranked, query)

	var groups []Group
	index := make(map[string]int) // reading -> index into groups, only while compatible

	for _, scored := range ranked {
		e := scored.Candidate.Entry
		reading := e.ReadingHiragana

		if gi, ok := index[reading]; ok {
			g := &groups[gi]
			if canJoin(g, scored, anchorKanji) {
				g.Members = append(g.Members, scored)
				continue
			}
		}

		g := Group{
			Kind:    classifyKind(scored, query, anchorKanji),
			Primary: scored,
			Members: []rank.Scored{scored},
		}
		groups = append(groups, g)
		index[reading] = len(groups) - 1
	}

	for i := range groups {
		applyDisplayPolicy(&groups[i])
	}

	return groups
}

// computeAnchorKanji selects all entries whose reading exactly matches
// the query and whose headword is at most 2 characters; the union of
// their headword runes is the allowed base-kanji set used to decide
// whether a same-reading entry may join a group.
func computeAnchorKanji(ranked []rank.Scored, query string) map[rune]bool {
	anchors := make(map[rune]bool)
	for _, s := range ranked {
		e := s.Candidate.Entry
		if e.ReadingHiragana != query {
			continue
		}
		if utf8.RuneCountInString(e.Headword) > 2 {
			continue
		}
		for _, r := range e.Headword {
			anchors[r] = true
		}
	}
	return anchors
}

func kanjiRunes(s string) map[rune]bool {
	out := make(map[rune]bool)
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			out[r] = true
		}
	}
	return out
}

func isPureKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 0x3040 && r <= 0x30FF) {
			return false
		}
	}
	return true
}

// canJoin reports whether scored may join group g: same reading (already
// guaranteed by the caller's index lookup) and either a shared kanji with
// the group, or both being pure-kana headwords. When anchorKanji is
// non-empty, an entry whose kanji are entirely disjoint from it never
// joins, even if it shares the reading — this is the 阿吽/あう fix.
func canJoin(g *Group, candidate rank.Scored, anchorKanji map[rune]bool) bool {
	candidateHeadword := candidate.Candidate.Entry.Headword
	candidateKanji := kanjiRunes(candidateHeadword)

	if len(anchorKanji) > 0 && len(candidateKanji) > 0 {
		disjoint := true
		for r := range candidateKanji {
			if anchorKanji[r] {
				disjoint = false
				break
			}
		}
		if disjoint {
			return false
		}
	}

	if isPureKana(candidateHeadword) {
		allPureKana := true
		for _, m := range g.Members {
			if !isPureKana(m.Candidate.Entry.Headword) {
				allPureKana = false
				break
			}
		}
		if allPureKana {
			return true
		}
	}

	for _, m := range g.Members {
		memberKanji := kanjiRunes(m.Candidate.Entry.Headword)
		for r := range candidateKanji {
			if memberKanji[r] {
				return true
			}
		}
	}
	return false
}

func classifyKind(primary rank.Scored, query string, anchorKanji map[rune]bool) Kind {
	switch primary.Candidate.MatchType {
	case retriever.MatchExact, retriever.MatchLemma:
		return BaseWord
	}

	headword := primary.Candidate.Entry.Headword
	if primary.Candidate.MatchType == retriever.MatchPrefix && len(anchorKanji) > 0 {
		hasBaseKanji := false
		for r := range kanjiRunes(headword) {
			if anchorKanji[r] {
				hasBaseKanji = true
				break
			}
		}
		freqOK := primary.Candidate.Entry.FrequencyRank != nil && *primary.Candidate.Entry.FrequencyRank <= 2000
		if hasBaseKanji && freqOK && utf8.RuneCountInString(query) <= 3 {
			return RelatedCompound
		}
	}

	return Other
}

// applyDisplayPolicy implements the kana-first policy for pure-adverb,
// rare-kanji, non-N5, non-high-frequency groups.
func applyDisplayPolicy(g *Group) {
	e := g.Primary.Candidate.Entry
	g.DisplayHeadword = e.Headword

	runeLen := utf8.RuneCountInString(e.Headword)
	allKanji := runeLen > 0 && runeLen <= 3 && len(kanjiRunes(e.Headword)) == runeLen
	readingIsPureKana := isPureKana(e.ReadingHiragana)

	if !allKanji || !readingIsPureKana {
		return
	}

	if !isPureAdverb(g.Primary.Candidate.Senses) {
		return
	}

	if e.JLPTLevel == "N5" {
		return
	}

	highFreq := e.FrequencyRank != nil && *e.FrequencyRank <= 1000
	if highFreq {
		return
	}

	g.AlternateHeadwords = append(g.AlternateHeadwords, e.Headword)
	g.DisplayHeadword = e.ReadingHiragana
}

// isPureAdverb reports whether at least one sense of the entry carries an
// adverb POS and none carries a noun POS: an entry-wide check, since sense order
// in the source data is not meaningful and a single noun sense disqualifies
// the whole entry from the kana-first policy.
func isPureAdverb(senses []dictdb.Sense) bool {
	if len(senses) == 0 {
		return false
	}
	hasAdverb := false
	for _, s := range senses {
		pos := strings.ToLower(s.PartOfSpeech)
		if strings.Contains(pos, "noun") {
			return false
		}
		if strings.Contains(pos, "adverb") {
			hasAdverb = true
		}
	}
	return hasAdverb
}

// ProjectExampleText rewrites example sentence text for display when the
// group's display headword differs from the stored headword: the pure
// string substitution described in §4.5, applied at projection time and
// never mutating the stored example.
func ProjectExampleText(g Group, japaneseText string) string {
	if g.DisplayHeadword == g.Primary.Candidate.Entry.Headword {
		return japaneseText
	}
	return strings.ReplaceAll(japaneseText, g.Primary.Candidate.Entry.Headword, g.DisplayHeadword)
}
