package dictdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/japaniel/kotobasearch/pkg/kerrors"
)

// ForwardRow is one row surfaced by a forward-mode candidate query, carrying
// the entry plus the raw match_priority computed in SQL (see spec §4.3.1).
type ForwardRow struct {
	Entry        Entry
	MatchPriority int
}

// ReverseRow is one row surfaced by the reverse-mode candidate query. Only
// the senses that could plausibly satisfy the word-boundary post-filter are
// projected; the retriever applies the strict check in Go.
type ReverseRow struct {
	Entry    Entry
	Priority int
	Senses   []Sense
}

func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func scanEntry(row interface {
	Scan(dest ...any) error
}) (Entry, error) {
	var e Entry
	var freq sql.NullInt64
	var jlpt, pitch, jmdict sql.NullString
	if err := row.Scan(&e.ID, &e.Headword, &e.ReadingHiragana, &e.ReadingRomaji, &freq, &jlpt, &pitch, &jmdict, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	if freq.Valid {
		v := int(freq.Int64)
		e.FrequencyRank = &v
	}
	e.JLPTLevel = jlpt.String
	e.PitchAccent = pitch.String
	e.JMDictID = jmdict.String
	return e, nil
}

const entryColumns = `id, headword, reading_hiragana, reading_romaji, frequency_rank, jlpt_level, pitch_accent, jmdict_id, created_at`

// ForwardPrimary is Pass A of forward-mode retrieval (§4.3.1): an FTS5
// match against the sanitized key (with trailing "*" already appended by
// the caller) joined back to entries, with the six-level (0-5) match_priority
// expression and tie-breakers baked into the ORDER BY.
func ForwardPrimary(ctx context.Context, db *DB, ftsExpr, exactQuery string, limit int) ([]ForwardRow, error) {
	query := fmt.Sprintf(`
		SELECT %s,
		       CASE
		         WHEN e.headword = ? THEN 0
		         WHEN e.reading_hiragana = ? THEN 1
		         WHEN e.reading_romaji = ? THEN 2
		         WHEN e.headword LIKE ? ESCAPE '\' THEN 3
		         WHEN e.reading_hiragana LIKE ? ESCAPE '\' THEN 4
		         ELSE 5
		       END AS match_priority
		FROM dictionary_fts f
		JOIN dictionary_entries e ON e.id = f.rowid
		WHERE dictionary_fts MATCH ?
		ORDER BY match_priority ASC, COALESCE(e.frequency_rank, 2147483647) ASC, LENGTH(e.headword) ASC
		LIMIT ?`, qualifyColumns("e", entryColumns))

	prefixPattern := escapeLikeWildcards(exactQuery) + "%"
	rows, err := db.QueryContext(ctx, query, exactQuery, exactQuery, exactQuery, prefixPattern, prefixPattern, ftsExpr, limit)
	if err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "forward primary query", Err: err}
	}
	defer rows.Close()

	var out []ForwardRow
	for rows.Next() {
		var fr ForwardRow
		var freq sql.NullInt64
		var jlpt, pitch, jmdict sql.NullString
		if err := rows.Scan(&fr.Entry.ID, &fr.Entry.Headword, &fr.Entry.ReadingHiragana, &fr.Entry.ReadingRomaji, &freq, &jlpt, &pitch, &jmdict, &fr.Entry.CreatedAt, &fr.MatchPriority); err != nil {
			return nil, &kerrors.TransientDatabaseError{Op: "scan forward primary row", Err: err}
		}
		if freq.Valid {
			v := int(freq.Int64)
			fr.Entry.FrequencyRank = &v
		}
		fr.Entry.JLPTLevel = jlpt.String
		fr.Entry.PitchAccent = pitch.String
		fr.Entry.JMDictID = jmdict.String
		out = append(out, fr)
	}
	return out, rows.Err()
}

// ForwardVariantClosure is Pass B of forward-mode retrieval: for a single
// reading, fetch every entry sharing it and re-priority with the
// three-level key described in the spec.
func ForwardVariantClosure(ctx context.Context, db *DB, reading, exactQuery string) ([]ForwardRow, error) {
	query := fmt.Sprintf(`
		SELECT %s,
		       CASE
		         WHEN e.headword = ? THEN 0
		         WHEN e.reading_hiragana = ? THEN 1
		         ELSE 2
		       END AS match_priority
		FROM dictionary_entries e
		WHERE e.reading_hiragana = ?`, qualifyColumns("e", entryColumns))

	rows, err := db.QueryContext(ctx, query, exactQuery, exactQuery, reading)
	if err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "forward variant closure query", Err: err}
	}
	defer rows.Close()

	var out []ForwardRow
	for rows.Next() {
		var fr ForwardRow
		var freq sql.NullInt64
		var jlpt, pitch, jmdict sql.NullString
		if err := rows.Scan(&fr.Entry.ID, &fr.Entry.Headword, &fr.Entry.ReadingHiragana, &fr.Entry.ReadingRomaji, &freq, &jlpt, &pitch, &jmdict, &fr.Entry.CreatedAt, &fr.MatchPriority); err != nil {
			return nil, &kerrors.TransientDatabaseError{Op: "scan variant closure row", Err: err}
		}
		if freq.Valid {
			v := int(freq.Int64)
			fr.Entry.FrequencyRank = &v
		}
		fr.Entry.JLPTLevel = jlpt.String
		fr.Entry.PitchAccent = pitch.String
		fr.Entry.JMDictID = jmdict.String
		out = append(out, fr)
	}
	return out, rows.Err()
}

// ReverseCandidates implements the single SQL shape of §4.3.2: entries
// joined to senses with the five-level priority ladder on
// lower(definition_english), widened with Chinese LIKE clauses when the
// caller passes includeChinese; the schema itself is not inspected.
func ReverseCandidates(ctx context.Context, db *DB, query string, includeChinese bool, limit int) ([]ReverseRow, error) {
	lower := strings.ToLower(query)
	toPrefix := "to " + lower
	escLower := escapeLikeWildcards(lower)
	escToPrefix := escapeLikeWildcards(toPrefix)

	caseExpr := `CASE
		WHEN lower(s.definition_english) = ? THEN 0
		WHEN lower(s.definition_english) = ? THEN 1
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 1
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 1
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 2
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 2
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 3
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 3
		WHEN lower(s.definition_english) LIKE ? ESCAPE '\' THEN 4`
	args := []any{
		lower,             // = query
		toPrefix,          // = "to " + query
		escToPrefix + ";%", // starts with "to " + query + ";"
		escLower + " (%",   // starts with query + " ("
		escLower + " %",    // starts with query + " "
		escLower + ";%",    // starts with query + ";"
		"% " + escLower + " %",
		"%; " + escLower + " %",
		"%" + escLower + "%",
	}
	where := ""
	if includeChinese {
		caseExpr += `
		WHEN s.definition_chinese_simplified LIKE ? ESCAPE '\' THEN 2
		WHEN s.definition_chinese_traditional LIKE ? ESCAPE '\' THEN 2`
		args = append(args, "%"+escapeLikeWildcards(query)+"%", "%"+escapeLikeWildcards(query)+"%")
		where = ` OR s.definition_chinese_simplified LIKE ? ESCAPE '\' OR s.definition_chinese_traditional LIKE ? ESCAPE '\'`
	}
	caseExpr += `
		ELSE 9
	END`

	sqlText := fmt.Sprintf(`
		SELECT %s, s.id, s.sense_order, s.definition_english, s.definition_chinese_simplified, s.definition_chinese_traditional, s.part_of_speech, s.usage_notes,
		       %s AS priority
		FROM dictionary_entries e
		JOIN word_senses s ON s.entry_id = e.id
		WHERE (lower(s.definition_english) LIKE ? ESCAPE '\'%s)
		ORDER BY priority ASC, COALESCE(e.frequency_rank, 2147483647) ASC, e.created_at ASC, LENGTH(e.headword) ASC
		LIMIT ?`, qualifyColumns("e", entryColumns), caseExpr, where)

	allArgs := append([]any{}, args...)
	allArgs = append(allArgs, "%"+escLower+"%")
	if includeChinese {
		allArgs = append(allArgs, "%"+escapeLikeWildcards(query)+"%", "%"+escapeLikeWildcards(query)+"%")
	}
	allArgs = append(allArgs, limit)

	rows, err := db.QueryContext(ctx, sqlText, allArgs...)
	if err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "reverse candidate query", Err: err}
	}
	defer rows.Close()

	byEntry := make(map[int64]*ReverseRow)
	var order []int64
	for rows.Next() {
		var entry Entry
		var freq sql.NullInt64
		var jlptNS, pitch, jmdict sql.NullString
		var sense Sense
		var chiSimp, chiTrad, usage sql.NullString
		var priority int
		if err := rows.Scan(&entry.ID, &entry.Headword, &entry.ReadingHiragana, &entry.ReadingRomaji, &freq, &jlptNS, &pitch, &jmdict, &entry.CreatedAt,
			&sense.ID, &sense.SenseOrder, &sense.DefinitionEnglish, &chiSimp, &chiTrad, &sense.PartOfSpeech, &usage, &priority); err != nil {
			return nil, &kerrors.TransientDatabaseError{Op: "scan reverse candidate row", Err: err}
		}
		if freq.Valid {
			v := int(freq.Int64)
			entry.FrequencyRank = &v
		}
		entry.JLPTLevel = jlptNS.String
		entry.PitchAccent = pitch.String
		entry.JMDictID = jmdict.String
		sense.EntryID = entry.ID
		sense.DefinitionChineseSimplified = chiSimp.String
		sense.DefinitionChineseTraditional = chiTrad.String
		sense.UsageNotes = usage.String

		rr, ok := byEntry[entry.ID]
		if !ok {
			rr = &ReverseRow{Entry: entry, Priority: priority}
			byEntry[entry.ID] = rr
			order = append(order, entry.ID)
		} else if priority < rr.Priority {
			rr.Priority = priority
		}
		rr.Senses = append(rr.Senses, sense)
	}
	if err := rows.Err(); err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "iterate reverse candidate rows", Err: err}
	}

	out := make([]ReverseRow, 0, len(order))
	for _, id := range order {
		out = append(out, *byEntry[id])
	}
	return out, nil
}

// LoadSensesBatch loads senses for many entries in a single statement,
// implementing "senses are loaded in a second batch" (§4.3.1). Examples are
// intentionally not joined here; they are lazy per the spec.
func LoadSensesBatch(ctx context.Context, db *DB, entryIDs []int64) (map[int64][]Sense, error) {
	out := make(map[int64][]Sense, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(entryIDs))
	args := make([]any, len(entryIDs))
	for i, id := range entryIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`
		SELECT id, entry_id, sense_order, definition_english, definition_chinese_simplified, definition_chinese_traditional, part_of_speech, usage_notes
		FROM word_senses
		WHERE entry_id IN (%s)
		ORDER BY entry_id, sense_order`, strings.Join(placeholders, ","))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "batch load senses", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var s Sense
		var chiSimp, chiTrad, usage sql.NullString
		if err := rows.Scan(&s.ID, &s.EntryID, &s.SenseOrder, &s.DefinitionEnglish, &chiSimp, &chiTrad, &s.PartOfSpeech, &usage); err != nil {
			return nil, &kerrors.TransientDatabaseError{Op: "scan batch sense row", Err: err}
		}
		s.DefinitionChineseSimplified = chiSimp.String
		s.DefinitionChineseTraditional = chiTrad.String
		s.UsageNotes = usage.String
		out[s.EntryID] = append(out[s.EntryID], s)
	}
	return out, rows.Err()
}

// LoadExamples loads example sentences for a single sense, lazily (not
// part of the ranking input, per spec).
func LoadExamples(ctx context.Context, db *DB, senseID int64) ([]Example, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, sense_id, example_order, japanese_text, english_translation, chinese_translation
		FROM example_sentences WHERE sense_id = ? ORDER BY example_order`, senseID)
	if err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "load examples", Err: err}
	}
	defer rows.Close()

	var out []Example
	for rows.Next() {
		var ex Example
		var chi sql.NullString
		if err := rows.Scan(&ex.ID, &ex.SenseID, &ex.ExampleOrder, &ex.JapaneseText, &ex.EnglishTranslation, &chi); err != nil {
			return nil, &kerrors.TransientDatabaseError{Op: "scan example row", Err: err}
		}
		ex.ChineseTranslation = chi.String
		out = append(out, ex)
	}
	return out, rows.Err()
}

// FetchEntry performs the deep load described by fetchEntry(id): the
// entry, all of its senses, and all of their examples.
func FetchEntry(ctx context.Context, db *DB, id int64) (*Entry, error) {
	row := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM dictionary_entries WHERE id = ?`, entryColumns), id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &kerrors.TransientDatabaseError{Op: "fetch entry", Err: err}
	}

	senseMap, err := LoadSensesBatch(ctx, db, []int64{id})
	if err != nil {
		return nil, err
	}
	senses := senseMap[id]
	for i := range senses {
		examples, err := LoadExamples(ctx, db, senses[i].ID)
		if err != nil {
			return nil, err
		}
		senses[i].Examples = examples
	}
	entry.Senses = senses
	return &entry, nil
}

func qualifyColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// escapeLikeWildcards escapes LIKE metacharacters (%, _, and the escape
// character itself) so user input is matched literally, per the
// normalizer's contract of converting wildcards to literal bytes before
// the LIKE pattern is built (§4.2 operation 2).
func escapeLikeWildcards(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
