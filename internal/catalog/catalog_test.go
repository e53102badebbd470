package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(context.Background(), nil, nil)
	require.NoError(t, err)
	return c
}

func TestAddCorrespondent(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)

	c.AddCorrespondent(ctx, "  Swisscom AG ")
	c.AddCorrespondent(ctx, "UBS")
	c.AddCorrespondent(ctx, "swisscom ag") // case-insensitive duplicate
	c.AddCorrespondent(ctx, "   ")         // empty, ignored

	assert.Equal(t, []string{"Swisscom AG", "UBS"}, c.Correspondents())
}

func TestAddTagsBatchDedup(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)

	c.AddTags(ctx, []string{"Rechnung", "rechnung", " Police ", ""})
	c.AddTag(ctx, "Vertrag")

	assert.Equal(t, []string{"Police", "Rechnung", "Vertrag"}, c.Tags())
}

func TestDeleteCorrespondentDropsAliases(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)

	c.AddCorrespondent(ctx, "UBS AG")
	c.SetAlias(ctx, "ubs", "UBS AG")
	c.SetAlias(ctx, "other", "Sunrise")

	c.DeleteCorrespondent(ctx, "UBS AG")

	assert.Empty(t, c.Correspondents())
	_, ok := c.Alias("ubs")
	assert.False(t, ok)
	_, ok = c.Alias("other")
	assert.True(t, ok)
}

func TestDeleteTagByIndex(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)

	c.AddTags(ctx, []string{"Mahnung", "Rechnung"})
	c.DeleteTag(ctx, 0)
	c.DeleteTag(ctx, 99) // out of range, ignored

	assert.Equal(t, []string{"Rechnung"}, c.Tags())
}

func TestAliasLastWriteWins(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)

	c.SetAlias(ctx, "ubs", "UBS")
	c.SetAlias(ctx, "ubs", "UBS AG")

	target, ok := c.Alias("ubs")
	require.True(t, ok)
	assert.Equal(t, "UBS AG", target)
}

func TestFindBestMatchExactWinsOutright(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)
	c.AddCorrespondent(ctx, "Apple")
	c.AddCorrespondent(ctx, "Apple Distribution")

	got, ok := c.FindBestMatch("apple distribution")
	require.True(t, ok)
	assert.Equal(t, "Apple Distribution", got)
}

func TestFindBestMatchNormalizedKeyGroup(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)
	c.AddCorrespondent(ctx, "UBS")

	// "UBS AG" shares the key "ubs"
	got, ok := c.FindBestMatch("UBS AG")
	require.True(t, ok)
	assert.Equal(t, "UBS", got)
}

func TestFindBestMatchClosestLiteralDistance(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)
	// both normalize to "ubs"
	c.AddCorrespondent(ctx, "U.B.S.")
	c.AddCorrespondent(ctx, "UBS AG")

	got, ok := c.FindBestMatch("UBS AG")
	require.True(t, ok)
	assert.Equal(t, "UBS AG", got)
}

func TestFindBestMatchNoFuzzy(t *testing.T) {
	ctx := context.Background()
	c := newMemCatalog(t)
	c.AddCorrespondent(ctx, "Apple Inc")

	// "Appl" has a different key; FindBestMatch must not fuzzy-match.
	_, ok := c.FindBestMatch("Appl")
	assert.False(t, ok)

	_, ok = c.FindBestMatch("   ")
	assert.False(t, ok)
}
