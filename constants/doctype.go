package constants

import "strings"

type DocumentType string

// Document types the extractor is asked to choose from. Free-form values are
// still accepted; these only seed prompts and the tag catalog.
const (
	Rechnung DocumentType = "Rechnung"
	Mahnung  DocumentType = "Mahnung"
	Police   DocumentType = "Police"
	Vertrag  DocumentType = "Vertrag"
	Offerte  DocumentType = "Offerte"
	Brief    DocumentType = "Brief"
)

var allDocumentTypes = []DocumentType{
	Rechnung,
	Mahnung,
	Police,
	Vertrag,
	Offerte,
	Brief,
}

func DocumentTypeStrings() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// MatchDocumentType maps a free-form label onto a known type, if any.
func MatchDocumentType(s string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	synonyms := map[string]DocumentType{
		"invoice":  Rechnung,
		"faktura":  Rechnung,
		"quittung": Rechnung,
		"reminder": Mahnung,
		"policy":   Police,
		"contract": Vertrag,
		"offer":    Offerte,
		"quote":    Offerte,
		"letter":   Brief,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}
	return "", false
}
