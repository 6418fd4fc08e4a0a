package normalize

import "strings"

// romajiToKana is a greedy longest-match table from romaji syllables to
// hiragana, built as the inverse of the kana->romaji tables used elsewhere
// in the corpus (see the shiritori and SpotiFLAC reference conversions).
// Kunrei-shiki spellings are folded onto the same hiragana as their
// Hepburn equivalents so either convention round-trips to the same key.
var romajiToKana = map[string]string{
	// digraphs (palatalized), longest match first
	"kya": "きゃ", "kyu": "きゅ", "kyo": "きょ",
	"sha": "しゃ", "shu": "しゅ", "sho": "しょ",
	"sya": "しゃ", "syu": "しゅ", "syo": "しょ",
	"cha": "ちゃ", "chu": "ちゅ", "cho": "ちょ",
	"tya": "ちゃ", "tyu": "ちゅ", "tyo": "ちょ",
	"nya": "にゃ", "nyu": "にゅ", "nyo": "にょ",
	"hya": "ひゃ", "hyu": "ひゅ", "hyo": "ひょ",
	"mya": "みゃ", "myu": "みゅ", "myo": "みょ",
	"rya": "りゃ", "ryu": "りゅ", "ryo": "りょ",
	"gya": "ぎゃ", "gyu": "ぎゅ", "gyo": "ぎょ",
	"ja": "じゃ", "ju": "じゅ", "jo": "じょ",
	"zya": "じゃ", "zyu": "じゅ", "zyo": "じょ",
	"bya": "びゃ", "byu": "びゅ", "byo": "びょ",
	"pya": "ぴゃ", "pyu": "ぴゅ", "pyo": "ぴょ",

	// plain syllables
	"a": "あ", "i": "い", "u": "う", "e": "え", "o": "お",
	"ka": "か", "ki": "き", "ku": "く", "ke": "け", "ko": "こ",
	"sa": "さ", "shi": "し", "si": "し", "su": "す", "se": "せ", "so": "そ",
	"ta": "た", "chi": "ち", "ti": "ち", "tsu": "つ", "tu": "つ", "te": "て", "to": "と",
	"na": "な", "ni": "に", "nu": "ぬ", "ne": "ね", "no": "の",
	"ha": "は", "hi": "ひ", "fu": "ふ", "hu": "ふ", "he": "へ", "ho": "ほ",
	"ma": "ま", "mi": "み", "mu": "む", "me": "め", "mo": "も",
	"ya": "や", "yu": "ゆ", "yo": "よ",
	"ra": "ら", "ri": "り", "ru": "る", "re": "れ", "ro": "ろ",
	"wa": "わ", "wo": "を",

	"ga": "が", "gi": "ぎ", "gu": "ぐ", "ge": "げ", "go": "ご",
	"za": "ざ", "ji": "じ", "zi": "じ", "zu": "ず", "ze": "ぜ", "zo": "ぞ",
	"da": "だ", "di": "ぢ", "du": "づ", "de": "で", "do": "ど",
	"ba": "ば", "bi": "び", "bu": "ぶ", "be": "べ", "bo": "ぼ",
	"pa": "ぱ", "pi": "ぴ", "pu": "ぷ", "pe": "ぺ", "po": "ぽ",
}

// geminatingConsonants are the consonants a doubled leading letter
// produces a small-tsu (っ) before, per the gemination rule.
var geminatingConsonants = map[byte]bool{
	'k': true, 's': true, 't': true, 'p': true, 'g': true,
	'z': true, 'd': true, 'b': true, 'c': true, 'f': true,
}

var macronFold = strings.NewReplacer(
	"ō", "ou", "Ō", "OU",
	"ū", "uu", "Ū", "UU",
	"ā", "aa", "Ā", "AA",
	"ī", "ii", "Ī", "II",
	"ē", "ei", "Ē", "EI",
)

// RomajiToHiragana converts romaji text to hiragana using a greedy
// longest-match lookup over the Hepburn/Kunrei table above. Gemination
// (doubled consonants) is rewritten to a leading small-tsu; a syllabic "n"
// before a consonant, apostrophe, or at end of string becomes ん.
// Characters that cannot be matched are copied through verbatim so the
// caller can still fall back to the SQL prefix path on ambiguous input.
func RomajiToHiragana(s string) string {
	s = strings.ToLower(macronFold.Replace(s))
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]

		if c == 'n' {
			next := byte(0)
			if i+1 < len(s) {
				next = s[i+1]
			}
			if next == '\'' {
				b.WriteString("ん")
				i += 2
				continue
			}
			if next == 0 || !isVowel(next) && next != 'y' {
				b.WriteString("ん")
				i++
				continue
			}
		}

		if geminatingConsonants[c] && i+1 < len(s) && s[i+1] == c {
			b.WriteString("っ")
			i++
			continue
		}

		matched := false
		for length := 3; length >= 1; length-- {
			if i+length > len(s) {
				continue
			}
			if kana, ok := romajiToKana[s[i:i+length]]; ok {
				b.WriteString(kana)
				i += length
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	default:
		return false
	}
}
