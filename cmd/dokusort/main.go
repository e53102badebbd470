// Command dokusort is the one-shot companion to dokusortd: it scans
// the inbox once, resolves names, exports the catalog or the archive
// index, and does small catalog maintenance from the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rsonderegger/dokusort/constants"
	"github.com/rsonderegger/dokusort/internal/archive"
	"github.com/rsonderegger/dokusort/internal/catalog"
	"github.com/rsonderegger/dokusort/internal/common"
	"github.com/rsonderegger/dokusort/internal/entity"
	"github.com/rsonderegger/dokusort/internal/export"
	"github.com/rsonderegger/dokusort/internal/extract"
	"github.com/rsonderegger/dokusort/internal/ingest"
	"github.com/rsonderegger/dokusort/internal/pipeline"
	"github.com/rsonderegger/dokusort/internal/resolve"
	"github.com/rsonderegger/dokusort/internal/suggest"
	"github.com/rsonderegger/dokusort/internal/suggest/ollama"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: dokusort <command> [flags]

commands:
  scan               process every PDF in the inbox once
  place <file>       file a single PDF under the archive
  undo               reverse the last placement
  resolve <name>     show how a correspondent name resolves
  import <files...>  copy external PDFs into the inbox
  export             write catalog or archive index XLSX
  catalog            list or edit the catalog`)
	os.Exit(2)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
	}

	cfg := common.LoadConfig()
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "scan":
		err = runScan(ctx, cfg, logger, os.Args[2:])
	case "place":
		err = runPlace(ctx, cfg, logger, os.Args[2:])
	case "undo":
		err = runUndo(cfg, logger)
	case "resolve":
		err = runResolve(ctx, cfg, logger, os.Args[2:])
	case "import":
		err = runImport(cfg, os.Args[2:])
	case "export":
		err = runExport(ctx, cfg, logger, os.Args[2:])
	case "catalog":
		err = runCatalog(ctx, cfg, logger, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "dokusort %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func openCatalog(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*catalog.Catalog, func(), error) {
	store, closeStore, err := catalog.OpenStore(ctx, cfg.Catalog, logger)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.New(ctx, store, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return cat, closeStore, nil
}

func runScan(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	noLLM := fs.Bool("no-llm", false, "skip metadata suggestion, file under fallback names")
	dryRun := fs.Bool("dry-run", false, "print planned targets without touching files")
	_ = fs.Parse(args)

	if err := cfg.Validate(); err != nil {
		return err
	}

	cat, closeStore, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	resolver := resolve.New(cat, resolve.Config{
		SimilarityThreshold:    cfg.Resolve.SimilarityThreshold,
		KeySimilarityThreshold: cfg.Resolve.KeySimilarityThreshold,
		MinInputLength:         cfg.Resolve.MinInputLength,
	}, logger)

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext: cfg.Extract.Pdftotext,
		Pdftoppm:  cfg.Extract.Pdftoppm,
		Tesseract: cfg.Extract.Tesseract,
		Lang:      cfg.Extract.Lang,
		DPI:       cfg.Extract.DPI,
		MaxPages:  cfg.Extract.MaxPages,
	}, logger)

	var suggester suggest.Extractor
	if !*noLLM {
		client, err := ollama.New(ollama.Config{
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			DocTypes: constants.DocumentTypeStrings(),
		}, &http.Client{Timeout: cfg.LLM.Timeout}, logger)
		if err != nil {
			return err
		}
		suggester = client
	}

	proc := pipeline.NewProcessor(pipeline.Config{
		ArchiveRoot:    cfg.Archive.Root,
		Mode:           archive.Mode(cfg.Archive.Mode),
		ConflictPolicy: archive.ConflictPolicy(cfg.Archive.ConflictPolicy),
		DeleteOriginal: cfg.Archive.DeleteOriginal,
	}, extractor, suggester, resolver, archive.NewPlanner(logger), logger)
	defer proc.Close()

	proc.Undo, err = archive.NewFileUndoLog(cfg.Archive.UndoPath, logger)
	if err != nil {
		return err
	}

	go func() {
		for range proc.Events() {
		}
	}()

	scanner := ingest.NewScanner(logger)
	docs, stats, err := scanner.ScanInbox(ctx, cfg.Inbox.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("inbox: %d files, %d PDFs, %d duplicates\n", stats.Scanned, stats.Matched, stats.Deduplicated)

	failed := 0
	for _, doc := range docs {
		if *dryRun {
			meta := doc.Meta
			if meta.Date.IsZero() {
				meta.Date = doc.DetectedAt
			}
			_, candidate := archive.PlannedTarget(meta, cfg.Archive.Root)
			fmt.Printf("%s -> %s\n", doc.Path, candidate)
			continue
		}
		result, err := proc.ProcessDocument(ctx, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", doc.Path, err)
			failed++
			continue
		}
		fmt.Printf("  %s -> %s\n", doc.Path, result.FinalPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

func runPlace(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("place", flag.ExitOnError)
	date := fs.String("date", "", "document date as 2006-01-02 (default today)")
	correspondent := fs.String("correspondent", "", "correspondent name")
	docType := fs.String("type", "", "document type, e.g. Rechnung")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: dokusort place [flags] <file>")
	}
	if cfg.Archive.Root == "" {
		return fmt.Errorf("ARCHIVE_DIR is required")
	}

	when := time.Now()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("parsing -date: %w", err)
		}
		when = parsed
	}

	cat, closeStore, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	name := strings.TrimSpace(*correspondent)
	if name != "" {
		// reuse a known spelling when the catalog has one
		if known, ok := cat.FindBestMatch(name); ok {
			name = known
		} else {
			cat.AddCorrespondent(ctx, name)
		}
	}

	dt := strings.TrimSpace(*docType)
	if matched, ok := constants.MatchDocumentType(dt); ok {
		dt = string(matched)
	}

	meta := entity.Metadata{Date: when, Correspondent: name, DocType: dt}
	planner := archive.NewPlanner(logger)
	result, err := planner.Place(ctx, fs.Arg(0), meta, cfg.Archive.Root,
		archive.Mode(cfg.Archive.Mode), cfg.Archive.DeleteOriginal,
		archive.ConflictPolicy(cfg.Archive.ConflictPolicy))
	if err != nil {
		return err
	}

	if !result.WasCopied {
		undo, err := archive.NewFileUndoLog(cfg.Archive.UndoPath, logger)
		if err != nil {
			return err
		}
		undo.RegisterMove(result.SourcePath, result.FinalPath)
	}
	fmt.Printf("%s -> %s\n", result.SourcePath, result.FinalPath)
	return nil
}

func runUndo(cfg *common.Config, logger *slog.Logger) error {
	if cfg.Archive.UndoPath == "" {
		return fmt.Errorf("ARCHIVE_UNDO_PATH or ARCHIVE_DIR is required")
	}
	undo, err := archive.NewFileUndoLog(cfg.Archive.UndoPath, logger)
	if err != nil {
		return err
	}
	restored, err := undo.UndoLastMove()
	if err != nil {
		return err
	}
	if restored == "" {
		fmt.Println("nothing to undo")
		return nil
	}
	fmt.Printf("restored %s\n", restored)
	return nil
}

func runResolve(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dokusort resolve <name>")
	}
	name := strings.Join(args, " ")

	cat, closeStore, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	resolver := resolve.New(cat, resolve.Config{
		SimilarityThreshold:    cfg.Resolve.SimilarityThreshold,
		KeySimilarityThreshold: cfg.Resolve.KeySimilarityThreshold,
		MinInputLength:         cfg.Resolve.MinInputLength,
	}, logger)

	folders, err := archive.ListCorrespondentFolders(cfg.Archive.Root)
	if err != nil {
		return err
	}
	decision := resolver.Resolve(ctx, name, folders)
	if decision.Score > 0 {
		fmt.Printf("%s -> %q (%s, score %.3f)\n", name, decision.Name, decision.Kind, decision.Score)
	} else {
		fmt.Printf("%s -> %q (%s)\n", name, decision.Name, decision.Kind)
	}
	return nil
}

func runImport(cfg *common.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: dokusort import <files...>")
	}
	if cfg.Inbox.Dir == "" {
		return fmt.Errorf("INBOX_DIR is required")
	}
	imported, err := ingest.ImportFiles(cfg.Inbox.Dir, args)
	for _, p := range imported {
		fmt.Println(p)
	}
	return err
}

func runExport(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output XLSX path (required)")
	what := fs.String("what", "index", "what to export: index | catalog")
	_ = fs.Parse(args)
	if *out == "" {
		return fmt.Errorf("-out is required")
	}

	cat, closeStore, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := export.NewService(cat, logger)
	var data []byte
	switch *what {
	case "index":
		if cfg.Archive.Root == "" {
			return fmt.Errorf("ARCHIVE_DIR is required for the index export")
		}
		data, err = svc.ExportArchiveIndexXLSX(ctx, cfg.Archive.Root)
	case "catalog":
		data, err = svc.ExportCatalogXLSX(ctx)
	default:
		return fmt.Errorf("unknown export %q", *what)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

func runCatalog(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: dokusort catalog <list|add|remove|add-tag> [name]")
	}

	cat, closeStore, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	switch args[0] {
	case "list":
		for _, c := range cat.Correspondents() {
			fmt.Println(c)
		}
		if tags := cat.Tags(); len(tags) > 0 {
			fmt.Println("tags:", strings.Join(tags, ", "))
		}
		return nil
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: dokusort catalog add <name>")
		}
		cat.AddCorrespondent(ctx, strings.Join(args[1:], " "))
		return nil
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: dokusort catalog remove <name>")
		}
		cat.DeleteCorrespondent(ctx, strings.Join(args[1:], " "))
		return nil
	case "add-tag":
		if len(args) < 2 {
			return fmt.Errorf("usage: dokusort catalog add-tag <name>")
		}
		cat.AddTag(ctx, strings.Join(args[1:], " "))
		return nil
	default:
		return fmt.Errorf("unknown catalog command %q", args[0])
	}
}
