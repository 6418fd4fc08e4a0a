// Package search wires the six collaborators — ScriptDetector,
// QueryNormalizer, Retriever, Ranker, Grouper, and the database handle —
// behind the single Search/FetchEntry/ValidateDatabaseIntegrity surface
// the rest of the system consumes. It owns the cooperative-cancellation
// contract: a select against ctx.Done() runs between every pipeline
// stage, and a per-query deadline (when supplied) drives the same
// context so a slow corpus read degrades to an empty, clearly-cancelled
// result rather than blocking the caller indefinitely.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/kotobasearch/pkg/config"
	"github.com/japaniel/kotobasearch/pkg/dictdb"
	"github.com/japaniel/kotobasearch/pkg/group"
	"github.com/japaniel/kotobasearch/pkg/kerrors"
	"github.com/japaniel/kotobasearch/pkg/normalize"
	"github.com/japaniel/kotobasearch/pkg/rank"
	"github.com/japaniel/kotobasearch/pkg/retriever"
)

// SearchResponse is the query API's return value, per §6.1.
type SearchResponse struct {
	Groups          []group.Group
	TotalCandidates int
	Mode            retriever.Mode
	FellBack        bool
}

// Engine is the thin collaborator that owns the database handle and
// configuration and orchestrates a single query end to end.
type Engine struct {
	db  *dictdb.DB
	cfg *config.Config
}

// NewEngine constructs an Engine over an already-open, already-validated
// database handle and configuration bundle.
func NewEngine(db *dictdb.DB, cfg *config.Config) *Engine {
	return &Engine{db: db, cfg: cfg}
}

// DefaultDeadline is suggested, not required, per the resource model.
const DefaultDeadline = 1 * time.Second

// Search implements search(query, limit, deadline) -> SearchResponse.
// A zero deadline means "use DefaultDeadline"; pass a negative duration
// to disable the deadline entirely (still subject to ctx's own deadline).
func (e *Engine) Search(ctx context.Context, query string, limit int, deadline time.Duration) (*SearchResponse, error) {
	queryID := uuid.NewString()
	start := time.Now()

	if limit <= 0 {
		limit = e.cfg.Limits.DefaultResultLimit
	}
	if limit > e.cfg.Limits.MaxResultLimit {
		limit = e.cfg.Limits.MaxResultLimit
	}

	if deadline == 0 {
		deadline = DefaultDeadline
	}
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	log := logger.With().Str("query_id", queryID).Logger()

	if err := checkCancelled(ctx, "start"); err != nil {
		log.Debug().Msg("query cancelled before normalization")
		return &SearchResponse{}, err
	}

	norm := normalize.Normalize(query, e.cfg)
	if norm.SanitizedKey == "" {
		return &SearchResponse{Mode: retriever.Forward}, nil
	}

	mode := retriever.DecideMode(norm.Script, norm.BaseWord, e.cfg)

	if err := checkCancelled(ctx, "pre-retrieval"); err != nil {
		return &SearchResponse{}, err
	}

	candidates, err := e.retrieve(ctx, mode, norm, limit)
	if err != nil {
		if cerr := checkCancelled(ctx, "retrieval"); cerr != nil {
			return &SearchResponse{}, cerr
		}
		return nil, err
	}

	fellBack := false
	plausiblyForeign := retriever.CouldPlausiblyBeForeign(norm.Script) ||
		e.cfg.IsEnglishAllowlisted(strings.ToLower(strings.TrimSpace(norm.BaseWord)))
	if mode == retriever.Forward && len(candidates) == 0 && plausiblyForeign {
		reverseCandidates, err := retriever.RunReverse(ctx, e.db, norm, limit)
		if err != nil {
			if cerr := checkCancelled(ctx, "reverse fallback"); cerr != nil {
				return &SearchResponse{}, cerr
			}
			return nil, err
		}
		if len(reverseCandidates) > 0 {
			candidates = reverseCandidates
			mode = retriever.Reverse
			fellBack = true
		}
	}

	if err := checkCancelled(ctx, "pre-ranking"); err != nil {
		return &SearchResponse{}, err
	}

	coreSet := make(map[string]bool, len(norm.CoreHeadwords))
	for _, h := range norm.CoreHeadwords {
		coreSet[h] = true
	}
	scoringCtx := rank.ScoringContext{
		Mode:          mode,
		Script:        norm.Script,
		Query:         query,
		BaseWord:      norm.BaseWord,
		SemanticHint:  norm.SemanticHint,
		CoreHeadwords: coreSet,
		ChinesePinyin: norm.ChinesePinyin,
		QueryID:       queryID,
		Config:        e.cfg,
	}
	ranked := rank.Rank(candidates, scoringCtx)

	if err := checkCancelled(ctx, "pre-grouping"); err != nil {
		return &SearchResponse{}, err
	}

	groups := group.Assemble(ranked, norm.SanitizedKey)

	log.Info().
		Str("script", string(norm.Script)).
		Str("mode", string(mode)).
		Bool("fell_back", fellBack).
		Int("candidates", len(candidates)).
		Int("groups", len(groups)).
		Dur("duration", time.Since(start)).
		Msg("search completed")

	return &SearchResponse{
		Groups:          groups,
		TotalCandidates: len(candidates),
		Mode:            mode,
		FellBack:        fellBack,
	}, nil
}

func (e *Engine) retrieve(ctx context.Context, mode retriever.Mode, norm normalize.Result, limit int) ([]retriever.Candidate, error) {
	if mode == retriever.Reverse {
		return retriever.RunReverse(ctx, e.db, norm, limit)
	}
	return retriever.RunForward(ctx, e.db, norm, limit)
}

// FetchEntry implements fetchEntry(id) -> Entry?.
func (e *Engine) FetchEntry(ctx context.Context, id int64) (*dictdb.Entry, error) {
	return dictdb.FetchEntry(ctx, e.db, id)
}

// ValidateDatabaseIntegrity implements validateDatabaseIntegrity(): it
// returns nil when the database is intact and an error describing the
// first failed check otherwise.
func (e *Engine) ValidateDatabaseIntegrity(ctx context.Context) error {
	return e.db.ValidateIntegrity(ctx)
}

func checkCancelled(ctx context.Context, stage string) error {
	select {
	case <-ctx.Done():
		return &kerrors.QueryCancelled{Stage: stage}
	default:
		return nil
	}
}
