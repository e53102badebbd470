package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchDocumentType(t *testing.T) {
	dt, ok := MatchDocumentType("  rechnung ")
	assert.True(t, ok)
	assert.Equal(t, Rechnung, dt)

	dt, ok = MatchDocumentType("Invoice")
	assert.True(t, ok)
	assert.Equal(t, Rechnung, dt)

	_, ok = MatchDocumentType("Steuererklaerung")
	assert.False(t, ok)
}

func TestDocumentTypeStrings(t *testing.T) {
	assert.Contains(t, DocumentTypeStrings(), "Rechnung")
	assert.Len(t, DocumentTypeStrings(), len(allDocumentTypes))
}
