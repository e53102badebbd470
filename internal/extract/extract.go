// Package extract turns inbox PDFs into plain text. Digitally created
// PDFs go through pdftotext; scanned PDFs fall back to rasterization
// plus tesseract when the embedded text layer is too thin.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rsonderegger/dokusort/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language pack, default "deu+eng"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit

	// MinTextRunes is the embedded-text threshold below which the file is
	// treated as a scan and handed to OCR. Default 40.
	MinTextRunes int
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "deu+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextRunes <= 0 {
		cfg.MinTextRunes = 40
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract reads path's text, preferring the embedded text layer and
// falling back to OCR for scans.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	res, err := e.pdfText(ctx, path)
	if err == nil && utf8.RuneCountInString(res.Text) >= e.cfg.MinTextRunes {
		res.Duration = time.Since(start)
		e.logger.Debug("extract.pdf_text", "path", path, "pages", res.Pages)
		return res, nil
	}
	if err != nil {
		e.logger.Warn("extract.pdf_text.failed", "path", path, "error", err)
	}

	ocrRes, ocrErr := e.pdfOCR(ctx, path)
	ocrRes.Duration = time.Since(start)
	ocrRes.Warnings = append(res.Warnings, ocrRes.Warnings...)
	if ocrErr != nil {
		e.logger.Error("extract.pdf_ocr.failed", "path", path, "error", ocrErr)
		return ocrRes, ocrErr
	}
	e.logger.Debug("extract.pdf_ocr", "path", path, "pages", ocrRes.Pages)
	return ocrRes, nil
}

func (e *Extractor) pdfText(ctx context.Context, path string) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, err
	}
	text := string(out)
	// form feed is pdftotext's page separator
	pages := 1 + strings.Count(text, "\f")
	return Result{Text: NormalizeText(text), Pages: pages, Method: "pdf-text"}, nil
}

func (e *Extractor) pdfOCR(ctx context.Context, path string) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "dokusort-ocr-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("extract.tmp_cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix); err != nil {
		return Result{Warnings: []string{string(errb)}}, err
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", e.cfg.Lang)
		if err != nil {
			warns = append(warns, string(errb))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(string(out))
	}
	return Result{
		Text:     NormalizeText(b.String()),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Warnings: warns,
	}, nil
}
