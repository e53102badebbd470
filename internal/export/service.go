// Package export produces XLSX workbooks for the catalog and the
// archive index so the sorted tree can be reviewed outside the app.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rsonderegger/dokusort/internal/catalog"
)

// Service is a tiny façade over the catalog and the archive tree that
// produces XLSX bytes for exports.
type Service struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewService(cat *catalog.Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: cat, logger: logger}
}

// ExportCatalogXLSX returns a workbook with one sheet per catalog
// collection: correspondents, tags, and the learned aliases.
func (s *Service) ExportCatalogXLSX(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	snap := s.catalog.Snapshot()

	f := excelize.NewFile()

	if err := writeSheet(f, "Korrespondenten", []string{"Name"}, func(write func(row, col int, v any)) {
		for i, c := range snap.Correspondents {
			write(i+2, 1, c)
		}
	}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Tags", []string{"Tag"}, func(write func(row, col int, v any)) {
		for i, tag := range snap.Tags {
			write(i+2, 1, tag)
		}
	}); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(snap.Aliases))
	for k := range snap.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := writeSheet(f, "Aliasse", []string{"Schluessel", "Korrespondent"}, func(write func(row, col int, v any)) {
		for i, k := range keys {
			write(i+2, 1, k)
			write(i+2, 2, snap.Aliases[k])
		}
	}); err != nil {
		return nil, err
	}

	// drop the default sheet excelize starts with
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.catalog.ok",
		"correspondents", len(snap.Correspondents),
		"aliases", len(keys),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// IndexRow is one archived file in the correspondent/year tree.
type IndexRow struct {
	Correspondent string
	Year          string
	FileName      string
	Date          string // yyyy-mm-dd when the name follows the scheme
	DocType       string
	Path          string
}

// ExportArchiveIndexXLSX walks archiveRoot and returns a workbook
// listing every file under the correspondent/year levels. File names
// following the date_type scheme get their date and type split out.
func (s *Service) ExportArchiveIndexXLSX(ctx context.Context, archiveRoot string) ([]byte, error) {
	start := time.Now()
	rows, err := CollectIndex(ctx, archiveRoot)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	headers := []string{"Korrespondent", "Jahr", "Datum", "Dokumenttyp", "Dateiname", "Pfad"}
	if err := writeSheet(f, "Archiv", headers, func(write func(row, col int, v any)) {
		for i, r := range rows {
			write(i+2, 1, r.Correspondent)
			write(i+2, 2, r.Year)
			write(i+2, 3, r.Date)
			write(i+2, 4, r.DocType)
			write(i+2, 5, r.FileName)
			write(i+2, 6, r.Path)
		}
	}); err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth("Archiv", "A", "A", 28)
	_ = f.SetColWidth("Archiv", "C", "C", 14)
	_ = f.SetColWidth("Archiv", "E", "E", 32)
	_ = f.SetColWidth("Archiv", "F", "F", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.index.ok",
		"root", archiveRoot,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// CollectIndex lists the archive tree as rows sorted by correspondent,
// year, and file name.
func CollectIndex(ctx context.Context, archiveRoot string) ([]IndexRow, error) {
	var rows []IndexRow
	err := filepath.WalkDir(archiveRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(archiveRoot, path)
		if err != nil {
			return err
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) < 3 {
			// files above the correspondent/year levels are not archive output
			return nil
		}
		row := IndexRow{
			Correspondent: parts[0],
			Year:          parts[1],
			FileName:      d.Name(),
			Path:          path,
		}
		row.Date, row.DocType = splitArchiveName(d.Name())
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Correspondent != rows[j].Correspondent {
			return rows[i].Correspondent < rows[j].Correspondent
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].FileName < rows[j].FileName
	})
	return rows, nil
}

// splitArchiveName parses "20240315_Rechnung.pdf" into ("2024-03-15",
// "Rechnung"). Names outside the scheme yield empty strings.
func splitArchiveName(name string) (date, docType string) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	under := strings.Index(base, "_")
	if under != 8 {
		return "", ""
	}
	stamp := base[:8]
	if _, err := time.Parse("20060102", stamp); err != nil {
		return "", ""
	}
	// auto-suffixed copies keep their counter in the type column
	return stamp[:4] + "-" + stamp[4:6] + "-" + stamp[6:8], base[9:]
}

func writeSheet(f *excelize.File, sheet string, headers []string, fill func(write func(row, col int, v any))) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	write := func(row, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, h := range headers {
		write(1, i+1, h)
	}
	fill(write)
	return nil
}
