// Package config loads and validates the curated data and tunable weights
// the search core ships with: feature weights/ranges, the English-word
// allowlist and particle denylist that route romaji queries, the
// core-headword and semantic-hint tables, and the rare-kanji/archaic/
// vulgar/domain vocabularies. These are data, not code, per the design
// note on curated mappings, and are validated once at startup against a
// JSON Schema so a malformed bundle fails fast instead of corrupting
// rankings silently.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/japaniel/kotobasearch/pkg/kerrors"
)

//go:embed bundle.json
var defaultBundleJSON []byte

//go:embed schema.json
var bundleSchemaJSON []byte

// FeatureConfig is the enable flag plus weight for one ranking feature.
type FeatureConfig struct {
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
}

// Limits holds the tunables the spec's open questions exposed rather than
// hard-coded: the kanji-short/long threshold, grapheme cap, and result
// sizing.
type Limits struct {
	MaxQueryGraphemes         int `json:"maxQueryGraphemes"`
	KanjiShortMaxLen          int `json:"kanjiShortMaxLen"`
	DefaultResultLimit        int `json:"defaultResultLimit"`
	MaxResultLimit            int `json:"maxResultLimit"`
	ReverseCandidateMultiplier int `json:"reverseCandidateMultiplier"`
}

// FrequencyShape selects the curve used by the frequency feature.
type FrequencyShape struct {
	Shape    string  `json:"shape"` // sigmoid | linear | logarithmic | stepwise
	Midpoint float64 `json:"midpoint"`
}

// Config is the fully loaded, validated configuration bundle.
type Config struct {
	Limits            Limits                   `json:"limits"`
	Frequency         FrequencyShape           `json:"frequency"`
	Features          map[string]FeatureConfig `json:"features"`
	EnglishAllowlist  []string                 `json:"englishAllowlist"`
	ParticleDenylist  []string                 `json:"particleDenylist"`
	CoreHeadwords     map[string][]string      `json:"coreHeadwords"`
	SemanticHints     map[string][]string      `json:"semanticHints"`
	RareKanji         []string                 `json:"rareKanji"`
	ArchaicMarkers    []string                 `json:"archaicMarkers"`
	VulgarMarkers     []string                 `json:"vulgarMarkers"`
	DomainMarkers     []string                 `json:"domainMarkers"`
	CommonPatternSuffixes []string             `json:"commonPatternSuffixes"`
	TitleTagMarkers   []string                 `json:"titleTagMarkers"`

	allowlistSet  map[string]bool
	denylistSet   map[string]bool
	rareKanjiSet  map[rune]bool
}

// Default loads and validates the embedded default bundle. Callers that
// want a different bundle pass its raw JSON to Load instead.
func Default() (*Config, error) {
	return Load(defaultBundleJSON)
}

// Load validates raw against the embedded JSON Schema, then unmarshals it
// into a Config and builds its lookup indices.
func Load(raw []byte) (*Config, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(bundleSchemaJSON, &schema); err != nil {
		return nil, &kerrors.InvalidConfiguration{Reason: fmt.Sprintf("embedded schema is malformed: %v", err)}
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, &kerrors.InvalidConfiguration{Reason: fmt.Sprintf("embedded schema failed to resolve: %v", err)}
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, &kerrors.InvalidConfiguration{Reason: fmt.Sprintf("bundle is not valid JSON: %v", err)}
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, &kerrors.InvalidConfiguration{Reason: fmt.Sprintf("bundle failed schema validation: %v", err)}
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, &kerrors.InvalidConfiguration{Reason: fmt.Sprintf("bundle failed to decode: %v", err)}
	}

	cfg.allowlistSet = toSet(cfg.EnglishAllowlist)
	cfg.denylistSet = toSet(cfg.ParticleDenylist)
	cfg.rareKanjiSet = make(map[rune]bool, len(cfg.RareKanji))
	for _, s := range cfg.RareKanji {
		for _, r := range s {
			cfg.rareKanjiSet[r] = true
		}
	}

	return &cfg, nil
}

func toSet(words []string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// IsEnglishAllowlisted reports whether a lowercased romaji token is a known
// English lemma, routing forward->reverse per §4.3.
func (c *Config) IsEnglishAllowlisted(word string) bool { return c.allowlistSet[word] }

// IsParticle reports whether a lowercased romaji token is a Japanese
// particle, used to keep bare particles out of reverse mode.
func (c *Config) IsParticle(word string) bool { return c.denylistSet[word] }

// IsRareKanji reports whether r is in the curated non-jōyō rare set.
func (c *Config) IsRareKanji(r rune) bool { return c.rareKanjiSet[r] }

// Feature returns the configuration for a named feature and whether it is
// present (absent features are simply skipped, never an error).
func (c *Config) Feature(name string) (FeatureConfig, bool) {
	f, ok := c.Features[name]
	return f, ok
}
