package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/xuri/excelize/v2"
)

// Sheet names and headers of the output workbook.
const (
	SourcesSheet   = "Sources"
	DownloadsSheet = "Downloads"
)

var (
	SourcesHeader   = []interface{}{"County", "List_Page_URL", "List_File_URL", "Status"}
	DownloadsHeader = []interface{}{"County", "File_URL", "Local_Path"}
)

// ReportWriterImpl writes a run report as a two-sheet xlsx workbook.
type ReportWriterImpl struct {
	path string
}

// NewReportWriter creates a writer targeting path. An existing file is overwritten.
func NewReportWriter(path string) *ReportWriterImpl {
	return &ReportWriterImpl{path: path}
}

// Write renders both tables and saves the workbook.
func (w *ReportWriterImpl) Write(_ context.Context, report *entity.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SourcesSheet); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(DownloadsSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", DownloadsSheet, err)
	}

	sources := make([][]interface{}, 0, len(report.Sources))
	for _, r := range report.Sources {
		sources = append(sources, []interface{}{r.County, r.ListPageURL, r.ListFileURL, r.Status})
	}
	if err := writeTable(f, SourcesSheet, SourcesHeader, sources); err != nil {
		return err
	}

	downloads := make([][]interface{}, 0, len(report.Downloads))
	for _, r := range report.Downloads {
		downloads = append(downloads, []interface{}{r.County, r.FileURL, r.LocalPath})
	}
	if err := writeTable(f, DownloadsSheet, DownloadsHeader, downloads); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save %s: %w", w.path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
