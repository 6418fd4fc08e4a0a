package group

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/rank"
	"github.com/japaniel/kotobasearch/pkg/retriever"
)

func scored(id int64, headword, reading string, matchType retriever.MatchType, senses ...dictdb.Sense) rank.Scored {
	return rank.Scored{
		Candidate: retriever.Candidate{
			Entry: dictdb.Entry{ID: id, Headword: headword, ReadingHiragana: reading},
			Senses: senses,
			MatchType: matchType,
		},
	}
}

func TestDisjointKanjiFormsOwnGroup(t *testing.T) {
	ranked := []rank.Scored{
		scored(1, "会う", "あう", retriever.MatchExact),
		scored(2, "逢う", "あう", retriever.MatchOther),
		scored(3, "阿吽", "あうん", retriever.MatchOther),
	}
	// 阿吽's reading differs (あうん vs あう) so it would not share a group
	// key in the first place; verify canJoin also rejects disjoint kanji
	// for same-reading entries directly.
	anchors := computeAnchorKanji(ranked, "あう")
	g := Group{Members: []rank.Scored{ranked[0]}}
	require.True(t, canJoin(&g, ranked[1], anchors))

	disjointSameReading := scored(4, "阿吽", "あう", retriever.MatchOther)
	require.False(t, canJoin(&g, disjointSameReading, anchors))
}

func TestKanaFirstDisplayForRareKanjiAdverb(t *testing.T) {
	entrySense := dictdb.Sense{PartOfSpeech: "adverb"}
	candidate := scored(1, "屹度", "きっと", retriever.MatchExact, entrySense)
	candidate.Candidate.Entry.JLPTLevel = "N4"

	groups := Assemble([]rank.Scored{candidate}, "きっと")
	require.Len(t, groups, 1)
	require.Equal(t, "きっと", groups[0].DisplayHeadword)
	require.Equal(t, []string{"屹度"}, groups[0].AlternateHeadwords)
}

func TestKanaFirstDoesNotApplyToN5Noun(t *testing.T) {
	sense := dictdb.Sense{PartOfSpeech: "noun"}
	candidate := scored(1, "今日", "きょう", retriever.MatchExact, sense)
	candidate.Candidate.Entry.JLPTLevel = "N5"

	groups := Assemble([]rank.Scored{candidate}, "きょう")
	require.Equal(t, "今日", groups[0].DisplayHeadword)
	require.Empty(t, groups[0].AlternateHeadwords)
}

func TestProjectExampleTextSubstitutesDisplayHeadword(t *testing.T) {
	sense := dictdb.Sense{PartOfSpeech: "adverb"}
	candidate := scored(1, "屹度", "きっと", retriever.MatchExact, sense)
	groups := Assemble([]rank.Scored{candidate}, "きっと")

	projected := ProjectExampleText(groups[0], "彼は屹度来る。")
	require.Equal(t, "彼はきっと来る。", projected)
}
