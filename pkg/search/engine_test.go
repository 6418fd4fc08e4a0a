package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/dictdb"
)

func newFixtureEngine(t *testing.T) (*Engine, *dictdb.DB) {
	t.Helper()
	db, err := dictdb.Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg, err := config.Default()
	require.NoError(t, err)

	return NewEngine(db, cfg), db
}

func intPtr(i int) *int { return &i }

type fixtureEntry struct {
	headword, reading, romaji string
	freqRank                  *int
	jlpt                      string
}

type fixtureSense struct {
	english string
	pos     string
}

func insertFixture(t *testing.T, db *dictdb.DB, e fixtureEntry, senses ...fixtureSense) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO dictionary_entries (headword, reading_hiragana, reading_romaji, frequency_rank, jlpt_level)
		VALUES (?, ?, ?, ?, ?)`, e.headword, e.reading, e.romaji, e.freqRank, e.jlpt)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	for i, s := range senses {
		_, err := db.Exec(`
			INSERT INTO word_senses (entry_id, definition_english, part_of_speech, sense_order)
			VALUES (?, ?, ?, ?)`, id, s.english, s.pos, i)
		require.NoError(t, err)
	}
	return id
}

func TestScenario1StarDemotesKatakana(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "星", reading: "ほし", romaji: "hoshi", freqRank: intPtr(800)},
		fixtureSense{english: "star", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "恒星", reading: "こうせい", romaji: "kousei"},
		fixtureSense{english: "star (astronomy)", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "スター", reading: "すたー", romaji: "sutaa", freqRank: intPtr(1500)},
		fixtureSense{english: "star (celebrity)", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "えとわーる", reading: "えとわーる", romaji: "etowaaru"},
		fixtureSense{english: "star (loanword, etoile)", pos: "noun"})

	resp, err := engine.Search(context.Background(), "star", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "星", resp.Groups[0].DisplayHeadword)
}

func TestScenario2GoVerbBeatsNoun(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "行く", reading: "いく", romaji: "iku", jlpt: "N5"},
		fixtureSense{english: "to go", pos: "verb"})
	insertFixture(t, db, fixtureEntry{headword: "囲碁", reading: "いご", romaji: "igo"},
		fixtureSense{english: "go (board game)", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "碁", reading: "ご", romaji: "go"},
		fixtureSense{english: "go (board game)", pos: "noun"})

	resp, err := engine.Search(context.Background(), "go", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "行く", resp.Groups[0].DisplayHeadword)
}

func TestScenario3LanguageKeepsParentheticalHintUnchanged(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "言語", reading: "げんご", romaji: "gengo", jlpt: "N3"},
		fixtureSense{english: "language", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "ランゲージ", reading: "らんげーじ", romaji: "rangeeji"},
		fixtureSense{english: "language (loanword)", pos: "noun"})

	resp, err := engine.Search(context.Background(), "language", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "言語", resp.Groups[0].DisplayHeadword)

	respParen, err := engine.Search(context.Background(), "language (言語)", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, respParen.Groups)
}

func TestScenario4ParentheticalHintBoostsBaseWord(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "日本語", reading: "にほんご", romaji: "nihongo", jlpt: "N5"},
		fixtureSense{english: "Japanese (language)", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "ジャパニーズ", reading: "じゃぱにーず", romaji: "japaniizu"},
		fixtureSense{english: "Japanese (loanword)", pos: "noun"})

	resp, err := engine.Search(context.Background(), "Japanese (language)", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "日本語", resp.Groups[0].DisplayHeadword)
}

func TestScenario5RareHomophoneFallsToSpecializedBucket(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "人", reading: "ひと", romaji: "hito", freqRank: intPtr(201), jlpt: "N5"},
		fixtureSense{english: "person", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "一", reading: "ひと", romaji: "hito", freqRank: intPtr(201), jlpt: "N5"},
		fixtureSense{english: "one", pos: "noun"})
	insertFixture(t, db, fixtureEntry{headword: "匪徒", reading: "ひと", romaji: "hito", freqRank: intPtr(201)},
		fixtureSense{english: "bandit; brigand", pos: "noun"})

	resp, err := engine.Search(context.Background(), "ひと", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "人", resp.Groups[0].DisplayHeadword)

	var lastHeadword string
	for _, g := range resp.Groups {
		lastHeadword = g.DisplayHeadword
	}
	require.Equal(t, "匪徒", lastHeadword)
}

func TestScenario6DisjointKanjiFormsOwnGroup(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "会う", reading: "あう", romaji: "au"},
		fixtureSense{english: "to meet", pos: "verb"})
	insertFixture(t, db, fixtureEntry{headword: "逢う", reading: "あう", romaji: "au"},
		fixtureSense{english: "to meet (by chance)", pos: "verb"})
	insertFixture(t, db, fixtureEntry{headword: "遭う", reading: "あう", romaji: "au"},
		fixtureSense{english: "to encounter (misfortune)", pos: "verb"})
	insertFixture(t, db, fixtureEntry{headword: "合う", reading: "あう", romaji: "au"},
		fixtureSense{english: "to fit; to match", pos: "verb"})
	insertFixture(t, db, fixtureEntry{headword: "阿吽", reading: "あうん", romaji: "aun"},
		fixtureSense{english: "harmony (of breath); a-un", pos: "noun"})

	resp, err := engine.Search(context.Background(), "あう", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "会う", resp.Groups[0].DisplayHeadword)
	require.Contains(t, resp.Groups[0].AlternateHeadwords, "逢う")

	ownGroup := -1
	for i, g := range resp.Groups {
		require.NotContains(t, g.AlternateHeadwords, "阿吽")
		if g.DisplayHeadword == "阿吽" {
			ownGroup = i
		}
	}
	require.Greater(t, ownGroup, 0)
}

func TestScenario7KittoDisplaysKanaFirst(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "屹度", reading: "きっと", romaji: "kitto", jlpt: "N4"},
		fixtureSense{english: "surely; undoubtedly", pos: "adverb"})

	resp, err := engine.Search(context.Background(), "きっと", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "きっと", resp.Groups[0].DisplayHeadword)
	require.Equal(t, []string{"屹度"}, resp.Groups[0].AlternateHeadwords)
}

func TestScenario8KyouDoesNotDisplayKanaFirst(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "今日", reading: "きょう", romaji: "kyou", jlpt: "N5"},
		fixtureSense{english: "today", pos: "noun"},
		fixtureSense{english: "these days; now", pos: "adverb"})

	resp, err := engine.Search(context.Background(), "今日", 0, -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Groups)
	require.Equal(t, "今日", resp.Groups[0].DisplayHeadword)
	require.Empty(t, resp.Groups[0].AlternateHeadwords)
}

func TestEmptyQueryReturnsEmptyResult(t *testing.T) {
	engine, _ := newFixtureEngine(t)
	resp, err := engine.Search(context.Background(), "", 0, -1)
	require.NoError(t, err)
	require.Empty(t, resp.Groups)
}

func TestWhitespaceOnlyQueryReturnsEmptyResult(t *testing.T) {
	engine, _ := newFixtureEngine(t)
	resp, err := engine.Search(context.Background(), "   ", 0, -1)
	require.NoError(t, err)
	require.Empty(t, resp.Groups)
}

func TestKunreiAndHepburnRankIdentically(t *testing.T) {
	engine, db := newFixtureEngine(t)
	insertFixture(t, db, fixtureEntry{headword: "寿司", reading: "すし", romaji: "sushi"},
		fixtureSense{english: "sushi", pos: "noun"})

	hepburn, err := engine.Search(context.Background(), "sushi", 0, -1)
	require.NoError(t, err)
	kunrei, err := engine.Search(context.Background(), "susi", 0, -1)
	require.NoError(t, err)

	require.NotEmpty(t, hepburn.Groups)
	require.NotEmpty(t, kunrei.Groups)
	require.Equal(t, hepburn.Groups[0].DisplayHeadword, kunrei.Groups[0].DisplayHeadword)
}
