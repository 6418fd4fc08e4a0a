package rank

import (
	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/retriever"
	"github.com/japaniel/kotobasearch/pkg/script"
)

// ScoringContext carries everything a Feature needs beyond the candidate
// itself: the query's script and normalized forms, the retrieval mode,
// and the curated config the feature functions consult for markers and
// keyword tables. QueryID is informational only (log correlation); no
// feature reads it.
type ScoringContext struct {
	Mode          retriever.Mode
	Script        script.Kind
	Query         string
	BaseWord      string
	SemanticHint  string
	CoreHeadwords map[string]bool
	ChinesePinyin string
	QueryID       string
	Config        *config.Config
}
