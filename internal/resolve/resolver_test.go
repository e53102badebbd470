package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsonderegger/dokusort/internal/catalog"
)

func newResolver(t *testing.T) (*Resolver, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.New(context.Background(), nil, nil)
	require.NoError(t, err)
	return New(cat, DefaultConfig(), nil), cat
}

func TestResolveEmptyAndPartial(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)

	assert.Equal(t, Empty, r.Resolve(ctx, "   \n ", nil).Kind)
	assert.Equal(t, Partial, r.Resolve(ctx, "Ax", nil).Kind)
	// normalizes down to nothing useful
	assert.Equal(t, Partial, r.Resolve(ctx, "!!!", nil).Kind)
	// partial results must not be learned
	assert.Empty(t, cat.Correspondents())
}

func TestResolvePartialRegardlessOfCatalog(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "Axpo Holding")

	d := r.Resolve(ctx, "Ax", nil)
	assert.Equal(t, Partial, d.Kind)
	assert.Equal(t, "Ax", d.Name)
}

func TestResolveNewCanonicalLearns(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)

	d := r.Resolve(ctx, "  Swisscom   AG ", nil)
	assert.Equal(t, NewCanonical, d.Kind)
	assert.Equal(t, "Swisscom AG", d.Name)
	assert.Equal(t, []string{"Swisscom AG"}, cat.Correspondents())

	target, ok := cat.Alias("swisscom")
	require.True(t, ok)
	assert.Equal(t, "Swisscom AG", target)
}

func TestResolveSecondCallNeverNewAgain(t *testing.T) {
	ctx := context.Background()
	r, _ := newResolver(t)

	first := r.Resolve(ctx, "Helsana Versicherungen AG", nil)
	require.Equal(t, NewCanonical, first.Kind)

	second := r.Resolve(ctx, "Helsana Versicherungen AG", nil)
	assert.Contains(t, []Kind{ExistingCanonical, AliasMapped}, second.Kind)
	assert.Equal(t, first.Name, second.Name)
}

func TestResolveExistingCanonicalViaKey(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "UBS AG")

	// normalizedKey("UBS") == normalizedKey("UBS AG") == "ubs"
	d := r.Resolve(ctx, "UBS", nil)
	assert.Equal(t, ExistingCanonical, d.Kind)
	assert.Equal(t, "UBS AG", d.Name)

	target, ok := cat.Alias("ubs")
	require.True(t, ok)
	assert.Equal(t, "UBS AG", target)
}

func TestResolveAliasMapped(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "Die Schweizerische Post")
	cat.SetAlias(ctx, "post", "Die Schweizerische Post")

	d := r.Resolve(ctx, "Post", nil)
	assert.Equal(t, AliasMapped, d.Kind)
	assert.Equal(t, "Die Schweizerische Post", d.Name)
}

func TestResolveStaleAliasDropped(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	// alias points at an entity that no longer exists anywhere
	cat.SetAlias(ctx, "sunrise", "Ghost Entry")

	d := r.Resolve(ctx, "Sunrise", nil)
	assert.Equal(t, NewCanonical, d.Kind)
	assert.Equal(t, "Sunrise", d.Name)

	target, ok := cat.Alias("sunrise")
	require.True(t, ok)
	assert.Equal(t, "Sunrise", target, "stale alias must be replaced, not trusted")
}

func TestResolveFuzzyMapped(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "Apple Inc")

	d := r.Resolve(ctx, "Appl Inc", nil)
	assert.Equal(t, FuzzyMapped, d.Kind)
	assert.Equal(t, "Apple Inc", d.Name)
	assert.GreaterOrEqual(t, d.Score, 0.82)

	// the typo is remembered as an alias
	target, ok := cat.Alias("appl")
	require.True(t, ok)
	assert.Equal(t, "Apple Inc", target)
}

func TestResolveFolderMapped(t *testing.T) {
	ctx := context.Background()
	r, _ := newResolver(t)

	d := r.Resolve(ctx, "Appl Inc", []string{"Apple Inc", "Migros"})
	assert.Equal(t, FolderMapped, d.Kind)
	assert.Equal(t, "Apple Inc", d.Name)
}

func TestResolveObservedFoldersTakePriority(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "UBS AG")

	// The disk folder is ground truth; both share the key "ubs" but the
	// canonical pool is consulted first.
	d := r.Resolve(ctx, "ubs", []string{"UBS"})
	assert.Equal(t, ExistingCanonical, d.Kind)
	assert.Equal(t, "UBS", d.Name)
}

func TestResolveCatalogEntryAbsentFromDiskStillCandidates(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "Helsana")

	// folders exist but none match; the catalog entry still wins
	d := r.Resolve(ctx, "Helsana AG", []string{"Migros", "Coop"})
	assert.Equal(t, ExistingCanonical, d.Kind)
	assert.Equal(t, "Helsana", d.Name)
}

func TestResolveBelowThresholdCreatesNew(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "Credit Suisse")

	d := r.Resolve(ctx, "Raiffeisenbank Zug", nil)
	assert.Equal(t, NewCanonical, d.Kind)
	assert.Contains(t, cat.Correspondents(), "Raiffeisenbank Zug")
	assert.Contains(t, cat.Correspondents(), "Credit Suisse")
}

func TestResolveThresholdsAreTunable(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.New(ctx, nil, nil)
	require.NoError(t, err)
	cat.AddCorrespondent(ctx, "Apple Inc")

	strict := New(cat, Config{
		SimilarityThreshold:    0.99,
		KeySimilarityThreshold: 0.99,
		MinInputLength:         3,
	}, nil)

	d := strict.Resolve(ctx, "Appl Inc", nil)
	assert.Equal(t, NewCanonical, d.Kind)
}

func TestResolveKeySimilarityTrigger(t *testing.T) {
	ctx := context.Background()
	r, cat := newResolver(t)
	cat.AddCorrespondent(ctx, "Kantonsspital Baden AG")

	// keys: "kantonsspitalbaden" vs "kantonsspitalbadeen" differ by one
	// insertion over 19 runes -> key similarity well above 0.9
	d := r.Resolve(ctx, "Kantonsspital Badeen", nil)
	assert.Equal(t, FuzzyMapped, d.Kind)
	assert.Equal(t, "Kantonsspital Baden AG", d.Name)
}
