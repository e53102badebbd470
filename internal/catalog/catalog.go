// Package catalog holds the known canonical correspondent names, document
// type tags and the alias map, and persists them through a Store.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/rsonderegger/dokusort/internal/normalize"
)

// Catalog owns the correspondent list, the tag list and the alias map.
// All mutations are serialized through a single mutex. Persistence is
// best-effort: a failed save is logged and never rolls back memory.
type Catalog struct {
	mu             sync.Mutex
	correspondents []string
	tags           []string
	aliases        map[string]string

	store  Store
	logger *slog.Logger
}

// New builds a Catalog backed by store. A nil store yields a memory-only
// catalog, useful for tests and dry runs.
func New(ctx context.Context, store Store, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		aliases: make(map[string]string),
		store:   store,
		logger:  logger,
	}
	if store == nil {
		return c, nil
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.correspondents = append(c.correspondents, snap.Correspondents...)
	c.tags = append(c.tags, snap.Tags...)
	for k, v := range snap.Aliases {
		c.aliases[k] = v
	}
	slices.Sort(c.correspondents)
	slices.Sort(c.tags)
	return c, nil
}

// Correspondents returns a copy of the current correspondent list.
func (c *Catalog) Correspondents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.correspondents)
}

// Tags returns a copy of the current tag list.
func (c *Catalog) Tags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tags)
}

// Aliases returns a copy of the alias map.
func (c *Catalog) Aliases() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// AddCorrespondent learns a new canonical name. Empty input is a no-op;
// existence is checked case-insensitively.
func (c *Catalog) AddCorrespondent(ctx context.Context, name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if containsFold(c.correspondents, trimmed) {
		return
	}
	c.correspondents = append(c.correspondents, trimmed)
	slices.Sort(c.correspondents)
	c.persist(ctx)
	c.logger.Info("catalog.correspondent.learned", "name", trimmed)
}

// DeleteCorrespondent removes a name (exact match) and every alias that
// points at it.
func (c *Catalog) DeleteCorrespondent(ctx context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.Index(c.correspondents, name)
	if idx < 0 {
		return
	}
	c.correspondents = slices.Delete(c.correspondents, idx, idx+1)
	for k, v := range c.aliases {
		if v == name {
			delete(c.aliases, k)
		}
	}
	c.persist(ctx)
}

// DeleteCorrespondentAt removes the correspondent at index. Out-of-range
// indexes are ignored.
func (c *Catalog) DeleteCorrespondentAt(ctx context.Context, index int) {
	c.mu.Lock()
	name := ""
	if index >= 0 && index < len(c.correspondents) {
		name = c.correspondents[index]
	}
	c.mu.Unlock()
	if name != "" {
		c.DeleteCorrespondent(ctx, name)
	}
}

// AddTag records a document type tag.
func (c *Catalog) AddTag(ctx context.Context, name string) {
	c.AddTags(ctx, []string{name})
}

// AddTags records several tags, persisting once after the whole batch.
func (c *Catalog) AddTags(ctx context.Context, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, name := range names {
		trimmed := normalize.PrettyDisplayName(name)
		if trimmed == "" || containsFold(c.tags, trimmed) {
			continue
		}
		c.tags = append(c.tags, trimmed)
		changed = true
	}
	if changed {
		slices.Sort(c.tags)
		c.persist(ctx)
	}
}

// DeleteTag removes the tag at index. Out-of-range indexes are ignored.
func (c *Catalog) DeleteTag(ctx context.Context, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.tags) {
		return
	}
	c.tags = slices.Delete(c.tags, index, index+1)
	c.persist(ctx)
}

// Alias looks up the canonical target remembered for a normalized key.
func (c *Catalog) Alias(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, ok := c.aliases[key]
	return target, ok
}

// SetAlias remembers key -> target, overwriting any previous mapping
// (last resolution wins).
func (c *Catalog) SetAlias(ctx context.Context, key, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[key] = target
	c.persist(ctx)
}

// RemoveAlias drops a stale alias entry.
func (c *Catalog) RemoveAlias(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.aliases[key]; !ok {
		return
	}
	delete(c.aliases, key)
	c.persist(ctx)
}

// FindBestMatch returns the known correspondent that best matches
// candidate. An exact case-insensitive match wins outright; otherwise all
// entries sharing the candidate's normalized key compete on literal
// Levenshtein distance to the raw candidate. No fuzzy matching happens
// here: entries with a different key never match.
func (c *Catalog) FindBestMatch(candidate string) (string, bool) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range c.correspondents {
		if strings.EqualFold(name, trimmed) {
			return name, true
		}
	}

	key := normalize.NormalizedKey(trimmed)
	best := ""
	bestDist := -1
	for _, name := range c.correspondents {
		if normalize.NormalizedKey(name) != key {
			continue
		}
		d := levenshtein.ComputeDistance(name, trimmed)
		if bestDist < 0 || d < bestDist {
			best, bestDist = name, d
		}
	}
	if bestDist < 0 {
		return "", false
	}
	return best, true
}

// Snapshot captures the current state for persistence or export.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Catalog) snapshotLocked() Snapshot {
	aliases := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		aliases[k] = v
	}
	return Snapshot{
		Correspondents: slices.Clone(c.correspondents),
		Tags:           slices.Clone(c.tags),
		Aliases:        aliases,
	}
}

// persist saves the current state. Callers hold the mutex.
func (c *Catalog) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, c.snapshotLocked()); err != nil {
		c.logger.Error("catalog.persist.failed", "error", err)
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
