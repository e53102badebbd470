// Package suggest defines the contract to metadata extractors (local or
// remote language models) and the shared plumbing to talk to them:
// prompt building, JSON-schema validation and lenient response decoding.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rsonderegger/dokusort/internal/entity"
)

// maxPromptTextLen caps how much document text is sent to the model.
const maxPromptTextLen = 4000

// Extractor proposes metadata for a document's text.
type Extractor interface {
	Suggest(ctx context.Context, text string) (entity.Suggestion, error)
}

// BuildPrompt asks for a compact JSON object with the three metadata
// fields, optionally constraining the document type to known tags.
func BuildPrompt(text string, docTypes []string) string {
	runes := []rune(text)
	if len(runes) > maxPromptTextLen {
		text = string(runes[:maxPromptTextLen])
	}

	types := "z. B. Rechnung, Mahnung, Police, Vertrag, Offerte"
	if len(docTypes) > 0 {
		types = strings.Join(docTypes, ", ")
	}

	return fmt.Sprintf(`Extrahiere aus folgendem deutschen Dokumenttext die Felder als kompaktes JSON:
- datum (im Format YYYY-MM-DD, falls erkennbar)
- korrespondent (Firma/Absender, kurz)
- dokumenttyp (%s)

Antworte NUR mit einem JSON-Objekt. Kein Fliesstext, kein Codeblock.

Text:
%s`, types, text)
}
