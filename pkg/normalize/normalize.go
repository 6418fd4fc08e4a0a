// Package normalize turns a raw query string into the canonical key and
// derived hints the retriever and ranker consume: a sanitized SQL-safe
// key, script-specific folding (katakana->hiragana, romaji->hiragana),
// parenthetical hint extraction, and curated core-headword lookup.
// Normalization is pure: the same input always yields the same output,
// and unknown input degrades to the trimmed, lowercased form rather than
// failing.
package normalize

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/rivo/uniseg"
	"golang.org/x/text/width"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/script"
)

const maxGraphemes = 100

// sqlSpecialChars strips FTS5 query-grammar characters so SanitizedKey is
// always a bare MATCH term, never partial FTS5 syntax: quoting, the prefix
// operator, column-filter colons, grouping parens, the NOT prefix, and the
// initial-token operator.
var sqlSpecialChars = strings.NewReplacer(
	`"`, "", `*`, "", `:`, "", `(`, "", `)`, "", `^`, "", `-`, "",
)

var parenPattern = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)\s*$`)

// Result is everything the downstream pipeline needs from normalization.
type Result struct {
	Script        script.Kind
	SanitizedKey  string // safe for the FTS MATCH expression / LIKE pattern
	BaseWord      string // text before a parenthetical hint, or the pre-script-folding word
	SemanticHint  string // lowercased contents of a parenthetical hint, if any
	CoreHeadwords []string
	ChinesePinyin string // best-effort, informational only
}

// Normalize runs every operation in §4.2 over query, using cfg for the
// curated core-headword map.
func Normalize(query string, cfg *config.Config) Result {
	trimmed := strings.TrimSpace(query)
	trimmed = capGraphemes(trimmed, maxGraphemes)

	kanjiShortMaxLen := script.DefaultKanjiShortMaxLen
	if cfg != nil {
		kanjiShortMaxLen = cfg.Limits.KanjiShortMaxLen
	}
	kind := script.DetectWithThreshold(trimmed, kanjiShortMaxLen)

	// A parenthetical hint is never part of the key the retriever matches
	// against: it's stripped before the key is built, not just parsed out
	// alongside it, so its parens can never reach the FTS5 MATCH expression.
	rawBaseWord, hint := extractParenthetical(trimmed)
	keySource := trimmed
	if rawBaseWord != "" {
		keySource = rawBaseWord
	}

	sanitized := sqlSpecialChars.Replace(keySource)
	plainWord := sanitized // pre-script-folding form, for routing and reverse-mode matching

	switch kind {
	case script.Katakana:
		sanitized = foldKatakanaToHiragana(sanitized)
	case script.Romaji:
		sanitized = strings.ToLower(sanitized)
		plainWord = sanitized
		sanitized = RomajiToHiragana(sanitized)
	}

	// baseWord must stay in plainWord's pre-kana-fold form for romaji input:
	// DecideMode and the reverse-mode English/Chinese matchers need the
	// literal word ("star"), not its forward-mode kana rendering ("sたr").
	baseWord := rawBaseWord
	if baseWord == "" {
		baseWord = plainWord
	}

	var core []string
	if cfg != nil {
		lookupKey := strings.ToLower(strings.TrimSpace(baseWord))
		if heads, ok := cfg.CoreHeadwords[lookupKey]; ok {
			core = heads
		} else if heads, ok := cfg.CoreHeadwords[strings.ToLower(trimmed)]; ok {
			core = heads
		}
	}

	res := Result{
		Script:        kind,
		SanitizedKey:  sanitized,
		BaseWord:      baseWord,
		SemanticHint:  hint,
		CoreHeadwords: core,
	}

	if kind == script.Kanji || kind == script.JapaneseKanjiShort {
		res.ChinesePinyin = bestEffortPinyin(trimmed)
	}

	return res
}

// capGraphemes truncates s to at most n user-perceived characters, using
// grapheme cluster boundaries so combining marks and surrogate-adjacent
// runes are never split mid-cluster.
func capGraphemes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	gr := uniseg.NewGraphemes(s)
	count := 0
	end := 0
	for gr.Next() {
		count++
		if count > n {
			break
		}
		_, to := gr.Positions()
		end = to
	}
	if count <= n {
		return s
	}
	return s[:end]
}

// foldKatakanaToHiragana shifts each katakana scalar in U+30A1-U+30F6 down
// by 0x60 to its hiragana equivalent; everything else passes through.
func foldKatakanaToHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x30A1 && r <= 0x30F6 {
			b.WriteRune(r - 0x60)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractParenthetical matches "base (hint)", accepting both ASCII and
// full-width parentheses. The input is width-folded before matching and
// baseWord and hint are cut from the folded string, so full-width ASCII in
// them comes back as plain ASCII; CJK text passes through the fold as is.
func extractParenthetical(s string) (baseWord, hint string) {
	folded := width.Fold.String(s)
	m := parenPattern.FindStringSubmatchIndex(folded)
	if m == nil {
		return "", ""
	}
	base := strings.TrimSpace(folded[m[2]:m[3]])
	h := strings.TrimSpace(folded[m[4]:m[5]])
	if base == "" || h == "" {
		return "", ""
	}
	if !containsOnlyASCIILetters(h) {
		return base, h
	}
	return base, strings.ToLower(h)
}

func containsOnlyASCIILetters(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

// bestEffortPinyin renders the most common heteronym reading for each
// character as a debug aid; it never influences retrieval or ranking.
func bestEffortPinyin(s string) string {
	args := pinyin.NewArgs()
	syllables := pinyin.Pinyin(s, args)
	parts := make([]string, 0, len(syllables))
	for _, alts := range syllables {
		if len(alts) > 0 {
			parts = append(parts, alts[0])
		}
	}
	return strings.Join(parts, " ")
}
