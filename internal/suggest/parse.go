package suggest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rsonderegger/dokusort/internal/entity"
)

// payload mirrors the JSON object the prompt asks for.
type payload struct {
	Datum         *string `json:"datum"`
	Korrespondent *string `json:"korrespondent"`
	Dokumenttyp   *string `json:"dokumenttyp"`
}

// StripCodeFences removes markdown code fences models wrap JSON in
// despite being told not to.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// SanitizeResponseJSON re-encodes the model output keeping only the known
// keys and dropping null or empty values, so the stricter schema with
// additionalProperties=false still validates chatty model output.
func SanitizeResponseJSON(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	known := map[string]struct{}{"datum": {}, "korrespondent": {}, "dokumenttyp": {}}
	var dropped []string
	out := make(map[string]any, 3)
	for k, v := range m {
		if _, ok := known[k]; !ok {
			dropped = append(dropped, k)
			continue
		}
		s, isString := v.(string)
		if !isString || strings.TrimSpace(s) == "" {
			dropped = append(dropped, k)
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	bs, err := json.Marshal(out)
	if err != nil {
		return nil, nil, fmt.Errorf("sanitize: encode: %w", err)
	}
	return bs, dropped, nil
}

// DecodeSuggestion validates and decodes a sanitized model response into
// a Suggestion. An unparseable date is treated as absent, not fatal.
func DecodeSuggestion(raw []byte, docTypes []string) (entity.Suggestion, error) {
	var sug entity.Suggestion

	if err := ValidateJSONAgainstSchema(BuildSuggestionJSONSchema(docTypes), raw); err != nil {
		return sug, err
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return sug, fmt.Errorf("decode suggestion: %w", err)
	}

	if p.Datum != nil {
		if d, err := time.ParseInLocation("2006-01-02", *p.Datum, time.Local); err == nil {
			sug.Date = &d
		}
	}
	if p.Korrespondent != nil && *p.Korrespondent != "" {
		sug.Correspondent = p.Korrespondent
	}
	if p.Dokumenttyp != nil && *p.Dokumenttyp != "" {
		sug.DocType = p.Dokumenttyp
	}
	return sug, nil
}
