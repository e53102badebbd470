// Package resolve turns noisy extracted correspondent names into stable
// canonical names using the catalog, the archive's real folder listing,
// and the normalize package's similarity metrics.
package resolve

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rsonderegger/dokusort/internal/catalog"
	"github.com/rsonderegger/dokusort/internal/normalize"
)

// Kind tags a resolution decision.
type Kind string

const (
	// Empty means the input was blank after trimming.
	Empty Kind = "EMPTY"
	// Partial means the input is too short to trust; callers should
	// display it but not persist it as canonical.
	Partial Kind = "PARTIAL"
	// NewCanonical means no known entity matched and a new one was learned.
	NewCanonical Kind = "NEW"
	// ExistingCanonical means a candidate shared the exact normalized key.
	ExistingCanonical Kind = "EXISTING"
	// AliasMapped means a remembered alias resolved the input.
	AliasMapped Kind = "ALIAS"
	// FuzzyMapped means a catalog entry won the similarity scoring.
	FuzzyMapped Kind = "FUZZY"
	// FolderMapped means an observed archive folder won the similarity scoring.
	FolderMapped Kind = "FOLDER"
)

// Decision is the transient result of one resolution call.
type Decision struct {
	Kind Kind
	// Name is the canonical target, or the trimmed input for Partial and
	// NewCanonical. Empty for Empty.
	Name string
	// Score is the winning combined similarity for FuzzyMapped and
	// FolderMapped, 0 otherwise.
	Score float64
}

// Config carries the tunable matching thresholds. The two similarity
// thresholds are independent triggers: literal bigram similarity needs the
// tighter bar, the edit-distance metric on suffix-stripped keys tolerates
// more divergence because keys are shorter.
type Config struct {
	SimilarityThreshold    float64
	KeySimilarityThreshold float64
	MinInputLength         int
}

// DefaultConfig returns the empirically chosen defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:    0.82,
		KeySimilarityThreshold: 0.90,
		MinInputLength:         3,
	}
}

// Resolver resolves raw correspondent strings against a catalog.
type Resolver struct {
	catalog *catalog.Catalog
	cfg     Config
	logger  *slog.Logger
}

func New(cat *catalog.Catalog, cfg Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinInputLength <= 0 {
		cfg.MinInputLength = DefaultConfig().MinInputLength
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	if cfg.KeySimilarityThreshold <= 0 {
		cfg.KeySimilarityThreshold = DefaultConfig().KeySimilarityThreshold
	}
	return &Resolver{catalog: cat, cfg: cfg, logger: logger}
}

// Resolve decides what entity the raw input refers to. observedFolders,
// when non-empty, is the archive root's actual directory listing and takes
// priority over possibly-stale catalog entries; catalog entries absent
// from disk still compete as secondary candidates. Every branch past the
// input guards persists its catalog/alias mutation before returning.
func (r *Resolver) Resolve(ctx context.Context, raw string, observedFolders []string) Decision {
	trimmed := normalize.PrettyDisplayName(raw)
	if trimmed == "" {
		return Decision{Kind: Empty}
	}
	if utf8.RuneCountInString(trimmed) < r.cfg.MinInputLength {
		return Decision{Kind: Partial, Name: trimmed}
	}
	key := normalize.NormalizedKey(trimmed)
	if utf8.RuneCountInString(key) < r.cfg.MinInputLength {
		// punctuation-heavy inputs can normalize down to almost nothing
		return Decision{Kind: Partial, Name: trimmed}
	}

	canonical := make([]string, 0, len(observedFolders))
	for _, f := range observedFolders {
		if name := normalize.PrettyDisplayName(f); name != "" {
			canonical = append(canonical, name)
		}
	}
	fromFolders := len(canonical) > 0

	var additional []string
	if fromFolders {
		for _, c := range r.catalog.Correspondents() {
			if !containsFold(canonical, c) {
				additional = append(additional, c)
			}
		}
	} else {
		canonical = r.catalog.Correspondents()
	}

	// 1) remembered alias, if its target still exists somewhere
	if target, ok := r.catalog.Alias(key); ok {
		if containsFold(canonical, target) || containsFold(additional, target) {
			r.catalog.AddCorrespondent(ctx, target)
			r.logger.Debug("resolve.alias", "input", trimmed, "target", target)
			return Decision{Kind: AliasMapped, Name: target}
		}
		// backing folder or entry vanished; do not trust the alias
		r.catalog.RemoveAlias(ctx, key)
	}

	// 2) exact normalized-key match, canonical pool first
	for _, pool := range [][]string{canonical, additional} {
		for _, cand := range pool {
			if normalize.NormalizedKey(cand) == key {
				r.catalog.AddCorrespondent(ctx, cand)
				r.catalog.SetAlias(ctx, key, cand)
				r.logger.Debug("resolve.exact_key", "input", trimmed, "target", cand)
				return Decision{Kind: ExistingCanonical, Name: cand}
			}
		}
	}

	// 3) fuzzy scoring over both pools
	type scored struct {
		name          string
		sim           float64
		keySim        float64
		combined      float64
		fromCanonical bool
	}
	var best scored
	haveBest := false
	consider := func(cand string, fromCanonical bool) {
		sim := normalize.Similarity(trimmed, cand)
		keySim := normalize.KeySimilarity(key, normalize.NormalizedKey(cand))
		combined := sim
		if keySim > combined {
			combined = keySim
		}
		cur := scored{cand, sim, keySim, combined, fromCanonical}
		switch {
		case !haveBest:
			best, haveBest = cur, true
		case cur.combined > best.combined:
			best = cur
		case cur.combined == best.combined && cur.keySim > best.keySim:
			// combined-score tie: the higher key-similarity component
			// wins; earlier-considered candidates win further ties
			best = cur
		}
	}
	for _, cand := range canonical {
		consider(cand, true)
	}
	for _, cand := range additional {
		consider(cand, false)
	}

	if haveBest && (best.sim >= r.cfg.SimilarityThreshold || best.keySim >= r.cfg.KeySimilarityThreshold) {
		r.catalog.AddCorrespondent(ctx, best.name)
		r.catalog.SetAlias(ctx, key, best.name)
		kind := FuzzyMapped
		if fromFolders && best.fromCanonical {
			kind = FolderMapped
		}
		r.logger.Debug("resolve.fuzzy", "input", trimmed, "target", best.name,
			"similarity", best.sim, "key_similarity", best.keySim)
		return Decision{Kind: kind, Name: best.name, Score: best.combined}
	}

	// 4) nothing close enough: learn a new canonical entity
	r.catalog.AddCorrespondent(ctx, trimmed)
	r.catalog.SetAlias(ctx, key, trimmed)
	r.logger.Debug("resolve.new", "name", trimmed)
	return Decision{Kind: NewCanonical, Name: trimmed}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
