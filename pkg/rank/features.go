package rank

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/retriever"
	"github.com/japaniel/kotobasearch/pkg/script"
)

// Feature is the common contract every scoring feature implements: a pure
// function from a candidate plus context to a score inside the feature's
// declared range. The registry below maps the configuration's string
// `type` to one of these; the ranker walks it in sorted name order for
// every candidate, so the weighted sum is always added up in the same
// order, and no runtime reflection is involved.
type Feature func(c retriever.Candidate, ctx ScoringContext) float64

var registry = map[string]Feature{
	"exactMatch":               exactMatchFeature,
	"lemmaMatch":               lemmaMatchFeature,
	"prefixMatch":              prefixMatchFeature,
	"containsMatch":            containsMatchFeature,
	"jlpt":                     jlptFeature,
	"frequency":                frequencyFeature,
	"posPriority":              posPriorityFeature,
	"commonWord":               commonWordFeature,
	"entryType":                entryTypeFeature,
	"surfaceLength":            surfaceLengthFeature,
	"commonPatternPenalty":     commonPatternPenaltyFeature,
	"rareWordPenalty":          rareWordPenaltyFeature,
	"archaicWordPenalty":       archaicWordPenaltyFeature,
	"specializedDomainPenalty": specializedDomainPenaltyFeature,
	"vulgarSlangPenalty":       vulgarSlangPenaltyFeature,
	"phrasalPenalty":           phrasalPenaltyFeature,
	"semanticBoost":            semanticBoostFeature,
	"nativeEquivalentBoost":    nativeEquivalentBoostFeature,
	"katakanaDemotion":         katakanaDemotionFeature,
	"rareKanjiPenalty":         rareKanjiPenaltyFeature,
	"titleTagPenalty":          titleTagPenaltyFeature,
}

func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func firstSense(senses []dictdb.Sense) (dictdb.Sense, bool) {
	if len(senses) == 0 {
		return dictdb.Sense{}, false
	}
	return senses[0], true
}

func exactMatchFeature(c retriever.Candidate, _ ScoringContext) float64 {
	if c.MatchType == retriever.MatchExact {
		return 100
	}
	return 0
}

func lemmaMatchFeature(c retriever.Candidate, _ ScoringContext) float64 {
	if c.MatchType == retriever.MatchLemma {
		return 60
	}
	return 0
}

func prefixMatchFeature(c retriever.Candidate, _ ScoringContext) float64 {
	if c.MatchType == retriever.MatchPrefix {
		return 30
	}
	return 0
}

func containsMatchFeature(c retriever.Candidate, _ ScoringContext) float64 {
	if c.MatchType == retriever.MatchContains {
		return 10
	}
	return 0
}

func jlptFeature(c retriever.Candidate, _ ScoringContext) float64 {
	switch c.Entry.JLPTLevel {
	case "N5":
		return 10
	case "N4":
		return 7
	case "N3":
		return 4
	case "N2":
		return 2
	case "N1":
		return 0
	default:
		return 0
	}
}

// frequencyFeature implements the sigmoid shape by default; the other
// shapes named in the spec are selectable via configuration but the
// sigmoid is the one ranking tests depend on, per the open-question
// resolution to never silently change the default shape.
func frequencyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if c.Entry.FrequencyRank == nil {
		return 0
	}
	rank := float64(*c.Entry.FrequencyRank)
	const max = 15.0
	midpoint := 5.0
	shape := "sigmoid"
	if ctx.Config != nil {
		midpoint = ctx.Config.Frequency.Midpoint
		shape = ctx.Config.Frequency.Shape
	}
	x := math.Log(rank + 1)
	switch shape {
	case "linear":
		v := max * (1 - rank/20000)
		if v < 0 {
			return 0
		}
		return v
	case "logarithmic":
		v := max - x
		if v < 0 {
			return 0
		}
		return v
	case "stepwise":
		switch {
		case rank <= 500:
			return max
		case rank <= 5000:
			return max / 2
		default:
			return 0
		}
	default: // sigmoid
		return max / (1 + math.Exp(x-midpoint))
	}
}

func posPriorityFeature(c retriever.Candidate, _ ScoringContext) float64 {
	s, ok := firstSense(c.Senses)
	if !ok {
		return 0
	}
	switch strings.ToLower(s.PartOfSpeech) {
	case "verb":
		return 8
	case "adjective":
		return 7
	case "noun":
		return 5
	case "adverb":
		return 4
	case "particle":
		return 2
	case "auxiliary", "conjunction":
		return 1
	case "prefix", "suffix":
		return 0.5
	default:
		return 0
	}
}

func commonWordFeature(c retriever.Candidate, _ ScoringContext) float64 {
	if c.Entry.FrequencyRank == nil {
		return 0
	}
	rank := *c.Entry.FrequencyRank
	switch {
	case rank <= 100:
		return 5
	case rank <= 500:
		return 3
	case rank <= 2000:
		return 1.5
	case rank <= 5000:
		return 0.5
	default:
		return 0
	}
}

func entryTypeFeature(c retriever.Candidate, _ ScoringContext) float64 {
	runeLen := utf8.RuneCountInString(c.Entry.Headword)
	kanjiCount := 0
	for _, r := range c.Entry.Headword {
		if r >= 0x4E00 && r <= 0x9FFF {
			kanjiCount++
		}
	}
	s, _ := firstSense(c.Senses)
	notes := strings.ToLower(s.UsageNotes)

	switch {
	case strings.Contains(notes, "phrase"):
		return 0.5
	case strings.Contains(notes, "expression"):
		return 1
	case runeLen >= 3 && kanjiCount >= 2:
		return 2 // compound
	default:
		return 4 // plain word
	}
}

func surfaceLengthFeature(c retriever.Candidate, _ ScoringContext) float64 {
	const optimal = 4
	const penaltyRate = 0.5
	length := utf8.RuneCountInString(c.Entry.Headword)
	over := length - optimal
	if over <= 0 {
		return 0
	}
	v := -penaltyRate * float64(over)
	if v < -5 {
		return -5
	}
	return v
}

var commonPatternSuffixesDefault = []string{"する", "ている", "っぽい", "もの", "こと", "的", "化"}

func commonPatternPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	suffixes := commonPatternSuffixesDefault
	if ctx.Config != nil && len(ctx.Config.CommonPatternSuffixes) > 0 {
		suffixes = ctx.Config.CommonPatternSuffixes
	}
	for _, suf := range suffixes {
		if strings.HasSuffix(c.Entry.Headword, suf) {
			return -10
		}
	}
	return 0
}

func rareWordPenaltyFeature(c retriever.Candidate, _ ScoringContext) float64 {
	if c.Entry.FrequencyRank == nil {
		return -2
	}
	rank := *c.Entry.FrequencyRank
	if rank < 10000 {
		return 0
	}
	const penaltyRate = 0.0008
	v := -penaltyRate * float64(rank-10000)
	if v < -8 {
		return -8
	}
	return v
}

func archaicWordPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if hasArchaicPenalty(c, ctx) {
		return -12
	}
	return 0
}

func specializedDomainPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if hasDomainPenalty(c, ctx) {
		return -6
	}
	return 0
}

func vulgarSlangPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if hasVulgarPenalty(c, ctx) {
		return -8
	}
	return 0
}

var phrasalMarkers = []string{"after all", "if only", "so that"}

func phrasalPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if ctx.Mode != retriever.Reverse {
		return 0
	}
	if ctx.Config == nil || !ctx.Config.IsEnglishAllowlisted(strings.ToLower(ctx.BaseWord)) {
		return 0
	}
	for _, s := range c.Senses {
		lower := strings.ToLower(s.DefinitionEnglish)
		for _, marker := range phrasalMarkers {
			if strings.Contains(lower, marker) {
				return -15
			}
		}
	}
	return 0
}

func semanticBoostFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if ctx.Mode != retriever.Reverse || ctx.SemanticHint == "" || ctx.Config == nil {
		return 0
	}
	patterns, ok := ctx.Config.SemanticHints[strings.ToLower(ctx.SemanticHint)]
	if !ok {
		return 0
	}
	for _, s := range c.Senses {
		lower := strings.ToLower(s.DefinitionEnglish)
		for _, pattern := range patterns {
			if likeMatch(lower, pattern) {
				return 20
			}
		}
	}
	return 0
}

// likeMatch implements the subset of SQL LIKE used by the curated
// semantic-hint patterns: "%" as a wildcard, everything else literal.
func likeMatch(haystack, pattern string) bool {
	parts := strings.Split(pattern, "%")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(haystack[pos:], part)
		if idx < 0 {
			return false
		}
		if i == 0 && !strings.HasPrefix(pattern, "%") && idx != 0 {
			return false
		}
		pos += idx + len(part)
	}
	if !strings.HasSuffix(pattern, "%") && len(parts) > 0 {
		last := parts[len(parts)-1]
		if last != "" && !strings.HasSuffix(haystack, last) {
			return false
		}
	}
	return true
}

func nativeEquivalentBoostFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if ctx.Mode != retriever.Reverse {
		return 0
	}
	if ctx.CoreHeadwords[c.Entry.Headword] {
		return 25
	}
	return 0
}

func katakanaDemotionFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if ctx.Mode != retriever.Reverse {
		return 0
	}
	if script.Detect(c.Entry.Headword) == script.Katakana {
		return -8
	}
	return 0
}

func rareKanjiPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if ctx.Mode != retriever.Forward || ctx.Script != script.Hiragana || ctx.Config == nil {
		return 0
	}
	for _, r := range c.Entry.Headword {
		if ctx.Config.IsRareKanji(r) {
			return -6
		}
	}
	return 0
}

func titleTagPenaltyFeature(c retriever.Candidate, ctx ScoringContext) float64 {
	if c.Entry.FrequencyRank != nil || ctx.Config == nil {
		return 0
	}
	if senseTaggedWith(c.Senses, ctx.Config.TitleTagMarkers) {
		return -5
	}
	return 0
}
