package script

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectClassification(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  Kind
	}{
		{"pure kanji short", "本", JapaneseKanjiShort},
		{"pure kanji short three", "行星人", JapaneseKanjiShort},
		{"pure kanji long", "行政機関", Kanji},
		{"hiragana", "ひらがな", Hiragana},
		{"katakana", "カタカナ", Katakana},
		{"romaji", "hello", Romaji},
		{"kanji plus hiragana is mixed", "食べる", Mixed},
		{"kanji plus romaji is mixed", "本book", Mixed},
		{"digits only falls to mixed", "12345", Mixed},
		{"empty falls to mixed", "", Mixed},
		{"punctuation only falls to mixed", "...", Mixed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Detect(tc.query))
		})
	}
}

func TestDetectWithThresholdHonorsConfiguredLength(t *testing.T) {
	require.Equal(t, JapaneseKanjiShort, DetectWithThreshold("行政機関", 4))
	require.Equal(t, Kanji, DetectWithThreshold("本", 0))
}

func TestIsForwardScript(t *testing.T) {
	require.True(t, IsForwardScript(Hiragana))
	require.True(t, IsForwardScript(Katakana))
	require.True(t, IsForwardScript(Mixed))
	require.True(t, IsForwardScript(JapaneseKanjiShort))
	require.False(t, IsForwardScript(Kanji))
	require.False(t, IsForwardScript(Romaji))
}
