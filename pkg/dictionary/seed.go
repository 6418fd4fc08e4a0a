package dictionary

import (
	"context"
	"strings"

	iso "github.com/barbashov/iso639-3"

	"github.com/japaniel/kotobasearch/pkg/dictdb"
)

// Seed writes a batch of parsed JMdict-simplified entries into a dictdb
// database: one dictionary_entries row per entry that has a kana form
// (primary kanji form as headword if present, else the kana form), and one
// word_senses row per sense that has at least one English gloss. Entries
// without a kana form are skipped; an entry whose senses all lack an
// English gloss is still inserted, with no senses. This is
// the only writer in the module — it backs the `seed` CLI subcommand and
// the in-memory fixture databases package tests build; the query path
// never writes.
func Seed(ctx context.Context, db *dictdb.DB, entries []JMdictEntry) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, e := range entries {
		headword, reading := primaryForms(e)
		if headword == "" || reading == "" {
			continue
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO dictionary_entries (headword, reading_hiragana, reading_romaji, jmdict_id)
			VALUES (?, ?, ?, ?)`, headword, reading, "", e.Id)
		if err != nil {
			return inserted, err
		}
		entryID, err := res.LastInsertId()
		if err != nil {
			return inserted, err
		}

		for i, sense := range e.Sense {
			englishGlosses := glossesForLang(sense, "eng")
			if len(englishGlosses) == 0 {
				continue
			}
			chineseGlosses := glossesForLang(sense, "zho")

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO word_senses (entry_id, definition_english, definition_chinese_simplified, part_of_speech, sense_order)
				VALUES (?, ?, ?, ?, ?)`,
				entryID, strings.Join(englishGlosses, "; "), strings.Join(chineseGlosses, "；"), strings.Join(sense.PartOfSpeech, ","), i); err != nil {
				return inserted, err
			}
		}

		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

func primaryForms(e JMdictEntry) (headword, reading string) {
	if len(e.Kana) == 0 {
		return "", ""
	}
	reading = e.Kana[0].Text
	if len(e.Kanji) > 0 {
		headword = e.Kanji[0].Text
	} else {
		headword = reading
	}
	return headword, reading
}

// glossesForLang returns the gloss texts tagged with the given ISO 639-3
// language code, after normalizing each gloss's own tag through
// iso639-3: jmdict-simplified mixes bibliographic and terminological
// codes ("chi" alongside "zho") and this reconciles them to one key
// before comparing.
func glossesForLang(s JMdictSense, lang string) []string {
	var out []string
	for _, g := range s.Gloss {
		l := g.Lang
		if l == "" {
			l = "eng"
		}
		if normalizeLangCode(l) == lang {
			out = append(out, g.Text)
		}
	}
	return out
}

func normalizeLangCode(code string) string {
	if lang := iso.FromAnyCode(code); lang != nil {
		return lang.Part3
	}
	return code
}
