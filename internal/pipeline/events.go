package pipeline

import (
	"github.com/rsonderegger/dokusort/internal/archive"
	"github.com/rsonderegger/dokusort/internal/entity"
	"github.com/rsonderegger/dokusort/internal/resolve"
)

// EventKind tags a pipeline progress event.
type EventKind string

const (
	EventExtracted EventKind = "EXTRACTED"
	EventSuggested EventKind = "SUGGESTED"
	EventResolved  EventKind = "RESOLVED"
	EventPlaced    EventKind = "PLACED"
	EventFailed    EventKind = "FAILED"
)

// Event is published on the processor's channel as a document advances.
// Decision is set for RESOLVED, Result for PLACED, Err for FAILED.
type Event struct {
	Kind     EventKind
	Doc      entity.Document
	Decision resolve.Decision
	Result   archive.Result
	Err      error
}
