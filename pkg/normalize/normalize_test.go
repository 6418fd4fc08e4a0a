package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/script"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func TestNormalizeFoldsKatakanaToHiragana(t *testing.T) {
	res := Normalize("スター", testConfig(t))
	require.Equal(t, script.Katakana, res.Script)
	require.Equal(t, "すたー", res.SanitizedKey)
}

func TestNormalizeConvertsRomajiToHiragana(t *testing.T) {
	res := Normalize("kitte", testConfig(t))
	require.Equal(t, script.Romaji, res.Script)
	require.Equal(t, "きって", res.SanitizedKey)
}

func TestNormalizeKunreiMatchesHepburn(t *testing.T) {
	hepburn := Normalize("shi", testConfig(t))
	kunrei := Normalize("si", testConfig(t))
	require.Equal(t, hepburn.SanitizedKey, kunrei.SanitizedKey)
}

func TestNormalizeSanitizesSQLSpecialChars(t *testing.T) {
	res := Normalize(`hi"*:there`, testConfig(t))
	require.NotContains(t, res.SanitizedKey, `"`)
	require.NotContains(t, res.SanitizedKey, `*`)
	require.NotContains(t, res.SanitizedKey, `:`)
}

// A parenthetical hint must never reach SanitizedKey: its parens are FTS5
// query-grammar syntax and the retriever appends "*" to SanitizedKey
// unconditionally, which is invalid FTS5 syntax immediately after ")".
func TestNormalizeSanitizedKeyExcludesParentheticalAndFTS5Syntax(t *testing.T) {
	res := Normalize("Japanese (language)", testConfig(t))
	require.NotContains(t, res.SanitizedKey, "(")
	require.NotContains(t, res.SanitizedKey, ")")
	require.NotContains(t, res.SanitizedKey, "language")

	res2 := Normalize("nico-nico^", testConfig(t))
	require.NotContains(t, res2.SanitizedKey, "^")
	require.NotContains(t, res2.SanitizedKey, "-")
}

func TestNormalizeExtractsParentheticalHint(t *testing.T) {
	res := Normalize("Japanese (language)", testConfig(t))
	require.Equal(t, "Japanese", res.BaseWord)
	require.Equal(t, "language", res.SemanticHint)
}

func TestNormalizeCapsLengthAtMaxGraphemes(t *testing.T) {
	long := strings.Repeat("a", maxGraphemes+50)
	res := Normalize(long, testConfig(t))
	require.LessOrEqual(t, len([]rune(res.SanitizedKey)), maxGraphemes)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	once := Normalize("すたー", cfg)
	twice := Normalize(once.SanitizedKey, cfg)
	require.Equal(t, once.SanitizedKey, twice.SanitizedKey)
}

func TestNormalizeResolvesCoreHeadwords(t *testing.T) {
	res := Normalize("star", testConfig(t))
	require.ElementsMatch(t, []string{"星", "恒星"}, res.CoreHeadwords)
}

func TestNormalizeEmptyQueryIsNotAnError(t *testing.T) {
	res := Normalize("   ", testConfig(t))
	require.Equal(t, "", res.SanitizedKey)
}

// BaseWord feeds DecideMode and the reverse-mode word matchers directly; for
// romaji input with no parenthetical it must stay the plain lowercased word,
// never the kana-folded SanitizedKey, or every English-allowlist routing
// decision downstream silently breaks.
func TestNormalizeBaseWordStaysPlainRomajiWithoutParenthetical(t *testing.T) {
	res := Normalize("Star", testConfig(t))
	require.Equal(t, script.Romaji, res.Script)
	require.Equal(t, "star", res.BaseWord)
	require.NotEqual(t, res.SanitizedKey, res.BaseWord)
}
