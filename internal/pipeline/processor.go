// Package pipeline coordinates one document's path from inbox to
// archive: text extraction, metadata suggestion, correspondent
// resolution, and placement. Progress is published as typed events on
// a channel so frontends can subscribe without coupling to the stages.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rsonderegger/dokusort/constants"
	"github.com/rsonderegger/dokusort/internal/archive"
	"github.com/rsonderegger/dokusort/internal/entity"
	"github.com/rsonderegger/dokusort/internal/extract"
	"github.com/rsonderegger/dokusort/internal/resolve"
	"github.com/rsonderegger/dokusort/internal/suggest"
)

// TextExtractor is the extraction stage: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (extract.Result, error)
}

// Config carries the placement settings applied to every document.
type Config struct {
	ArchiveRoot    string
	Mode           archive.Mode
	ConflictPolicy archive.ConflictPolicy
	DeleteOriginal bool
	EventBuffer    int // default 64
}

// Processor runs the stages for one document at a time. Extract and
// Suggest are optional: without them a document is placed from its
// pre-filled metadata and the fallback defaults.
type Processor struct {
	Logger   *slog.Logger
	Extract  TextExtractor
	Suggest  suggest.Extractor
	Resolver *resolve.Resolver
	Planner  *archive.Planner
	Undo     *archive.UndoLog

	cfg    Config
	events chan Event
}

func NewProcessor(cfg Config, tx TextExtractor, sug suggest.Extractor, res *resolve.Resolver, planner *archive.Planner, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	if cfg.Mode == "" {
		cfg.Mode = archive.ModeMove
	}
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = archive.PolicyAutoSuffix
	}
	if planner == nil {
		planner = archive.NewPlanner(logger)
	}
	return &Processor{
		Logger:   logger,
		Extract:  tx,
		Suggest:  sug,
		Resolver: res,
		Planner:  planner,
		cfg:      cfg,
		events:   make(chan Event, cfg.EventBuffer),
	}
}

// Events is the processor's progress stream. Slow consumers drop
// events rather than stalling the pipeline.
func (p *Processor) Events() <-chan Event {
	return p.events
}

// Close ends the event stream. Call only after the last ProcessDocument
// has returned.
func (p *Processor) Close() {
	close(p.events)
}

func (p *Processor) publish(ev Event) {
	select {
	case p.events <- ev:
	default:
		p.Logger.Warn("pipeline.event_dropped", "kind", ev.Kind, "path", ev.Doc.Path)
	}
}

// ProcessDocument runs extract, suggest, resolve, and place for doc.
// Extraction and suggestion failures degrade to the fallback metadata;
// only placement failures abort. The returned Result may be valid even
// with a non-nil error when the copy succeeded but the original could
// not be deleted.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) (archive.Result, error) {
	text := doc.ExtractedText
	if text == "" && p.Extract != nil {
		res, err := p.Extract.Extract(ctx, doc.Path)
		if err != nil {
			p.Logger.Warn("pipeline.extract.failed", "path", doc.Path, "error", err)
		} else {
			text = res.Text
			doc.ExtractedText = text
			p.publish(Event{Kind: EventExtracted, Doc: doc})
		}
	}

	meta := doc.Meta
	if p.Suggest != nil && text != "" {
		sug, err := p.Suggest.Suggest(ctx, text)
		if err != nil {
			p.Logger.Warn("pipeline.suggest.failed", "path", doc.Path, "error", err)
		} else {
			sug.ApplyTo(&meta)
			doc.Meta = meta
			p.publish(Event{Kind: EventSuggested, Doc: doc})
		}
	}

	if meta.Date.IsZero() {
		meta.Date = doc.DetectedAt
	}
	if dt, ok := constants.MatchDocumentType(meta.DocType); ok {
		meta.DocType = string(dt)
	}
	if meta.DocType == "" {
		meta.DocType = constants.DefaultDocumentType
	}

	folders, err := archive.ListCorrespondentFolders(p.cfg.ArchiveRoot)
	if err != nil {
		p.Logger.Warn("pipeline.folders.failed", "root", p.cfg.ArchiveRoot, "error", err)
	}
	decision := p.Resolver.Resolve(ctx, meta.Correspondent, folders)
	switch decision.Kind {
	case resolve.Empty:
		meta.Correspondent = constants.UnknownCorrespondent
	default:
		meta.Correspondent = decision.Name
	}
	doc.Meta = meta
	p.publish(Event{Kind: EventResolved, Doc: doc, Decision: decision})

	result, err := p.Planner.Place(ctx, doc.Path, meta, p.cfg.ArchiveRoot, p.cfg.Mode, p.cfg.DeleteOriginal, p.cfg.ConflictPolicy)
	if err != nil {
		var delErr *archive.DeleteOriginalError
		if errors.As(err, &delErr) {
			// the copy stands; surface the leftover original
			p.publish(Event{Kind: EventPlaced, Doc: doc, Result: result, Err: err})
			return result, err
		}
		p.publish(Event{Kind: EventFailed, Doc: doc, Err: err})
		return result, err
	}

	if p.cfg.Mode == archive.ModeMove && p.Undo != nil {
		p.Undo.RegisterMove(result.SourcePath, result.FinalPath)
	}
	p.Logger.Info("pipeline.placed",
		"source", result.SourcePath,
		"target", result.FinalPath,
		"correspondent", meta.Correspondent,
		"decision", decision.Kind,
	)
	p.publish(Event{Kind: EventPlaced, Doc: doc, Result: result})
	return result, nil
}
