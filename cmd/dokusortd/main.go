package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rsonderegger/dokusort/constants"
	"github.com/rsonderegger/dokusort/internal/archive"
	"github.com/rsonderegger/dokusort/internal/async"
	"github.com/rsonderegger/dokusort/internal/catalog"
	"github.com/rsonderegger/dokusort/internal/common"
	"github.com/rsonderegger/dokusort/internal/extract"
	"github.com/rsonderegger/dokusort/internal/ingest"
	"github.com/rsonderegger/dokusort/internal/pipeline"
	"github.com/rsonderegger/dokusort/internal/resolve"
	"github.com/rsonderegger/dokusort/internal/suggest"
	"github.com/rsonderegger/dokusort/internal/suggest/ollama"
)

// suggesterOrNil keeps a nil *ollama.Client from becoming a non-nil
// interface value.
func suggesterOrNil(c *ollama.Client) suggest.Extractor {
	if c == nil {
		return nil
	}
	return c
}

func main() {
	// Logger
	zlog, _ := zap.NewProduction()
	defer zlog.Sync()
	log := zlog.Sugar()

	// Internal packages log through slog
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(slogger)

	// Env
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog store
	store, closeStore, err := catalog.OpenStore(ctx, cfg.Catalog, slogger)
	if err != nil {
		log.Fatalf("opening catalog store: %v", err)
	}
	defer closeStore()

	cat, err := catalog.New(ctx, store, slogger)
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}
	log.Infow("catalog loaded",
		"backend", cfg.Catalog.Backend,
		"correspondents", len(cat.Correspondents()),
	)

	// Stages
	resolver := resolve.New(cat, resolve.Config{
		SimilarityThreshold:    cfg.Resolve.SimilarityThreshold,
		KeySimilarityThreshold: cfg.Resolve.KeySimilarityThreshold,
		MinInputLength:         cfg.Resolve.MinInputLength,
	}, slogger)

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext: cfg.Extract.Pdftotext,
		Pdftoppm:  cfg.Extract.Pdftoppm,
		Tesseract: cfg.Extract.Tesseract,
		Lang:      cfg.Extract.Lang,
		DPI:       cfg.Extract.DPI,
		MaxPages:  cfg.Extract.MaxPages,
	}, slogger)

	var suggester *ollama.Client
	if cfg.LLM.BaseURL != "" {
		suggester, err = ollama.New(ollama.Config{
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			DocTypes: constants.DocumentTypeStrings(),
		}, &http.Client{Timeout: cfg.LLM.Timeout}, slogger)
		if err != nil {
			log.Fatalf("ollama client: %v", err)
		}
	}

	proc := pipeline.NewProcessor(pipeline.Config{
		ArchiveRoot:    cfg.Archive.Root,
		Mode:           archive.Mode(cfg.Archive.Mode),
		ConflictPolicy: archive.ConflictPolicy(cfg.Archive.ConflictPolicy),
		DeleteOriginal: cfg.Archive.DeleteOriginal,
	}, extractor, suggesterOrNil(suggester), resolver, archive.NewPlanner(slogger), slogger)
	proc.Undo, err = archive.NewFileUndoLog(cfg.Archive.UndoPath, slogger)
	if err != nil {
		log.Fatalf("opening undo log: %v", err)
	}

	go func() {
		for ev := range proc.Events() {
			switch ev.Kind {
			case pipeline.EventResolved:
				log.Infow("resolved",
					"path", ev.Doc.Path,
					"correspondent", ev.Doc.Meta.Correspondent,
					"decision", ev.Decision.Kind,
				)
			case pipeline.EventPlaced:
				log.Infow("placed", "target", ev.Result.FinalPath)
			case pipeline.EventFailed:
				log.Errorw("failed", "path", ev.Doc.Path, "error", ev.Err)
			}
		}
	}()

	queue := async.NewProcessorQueue(proc, slogger,
		async.WithWorkers(cfg.Archive.Workers),
		async.WithQueueSize(512),
		async.WithProcessTimeout(3*time.Minute),
	)

	// Inbox watcher
	scanner := ingest.NewScanner(slogger)
	files, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        cfg.Inbox.Dir,
		InitialScan: cfg.Inbox.InitialScan,
		Debounce:    cfg.Inbox.Debounce,
	}, slogger)
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}
	log.Infof("watching %s", cfg.Inbox.Dir)

	go func() {
		for err := range errs {
			log.Warnw("watcher error", "error", err)
		}
	}()

	go func() {
		for path := range files {
			doc, err := scanner.ReadDocument(path)
			if err != nil {
				log.Warnw("reading inbox file", "path", path, "error", err)
				continue
			}
			_ = queue.Enqueue(ctx, async.Job{Doc: doc, SubmittedAt: time.Now()})
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	proc.Close()
	fmt.Println("stopped.")
}
