package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/user/taxsale-crawler/internal/entity"
)

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	report := &entity.Report{
		Sources: []entity.SourceRow{
			{County: "Fulton", ListPageURL: "https://f.gov/sales", ListFileURL: "https://f.gov/a.pdf", Status: entity.StatusOK},
			{County: "Cobb", ListPageURL: "https://c.gov/sales", Status: entity.StatusNoFileLinks},
		},
		Downloads: []entity.DownloadRow{
			{County: "Fulton", FileURL: "https://f.gov/a.pdf", LocalPath: "downloads/a.pdf"},
		},
	}

	require.NoError(t, NewReportWriter(path).Write(context.Background(), report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{SourcesSheet, DownloadsSheet}, f.GetSheetList())
	require.NoError(t, f.Close())

	assert.Equal(t, [][]string{
		{"County", "List_Page_URL", "List_File_URL", "Status"},
		{"Fulton", "https://f.gov/sales", "https://f.gov/a.pdf", "OK"},
		{"Cobb", "https://c.gov/sales", "", "NO FILE LINKS FOUND"},
	}, readSheet(t, path, SourcesSheet))

	assert.Equal(t, [][]string{
		{"County", "File_URL", "Local_Path"},
		{"Fulton", "https://f.gov/a.pdf", "downloads/a.pdf"},
	}, readSheet(t, path, DownloadsSheet))
}

func TestWriteEmptyReportKeepsHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewReportWriter(path).Write(context.Background(), &entity.Report{}))

	assert.Equal(t, [][]string{{"County", "List_Page_URL", "List_File_URL", "Status"}}, readSheet(t, path, SourcesSheet))
	assert.Equal(t, [][]string{{"County", "File_URL", "Local_Path"}}, readSheet(t, path, DownloadsSheet))
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	report := &entity.Report{Sources: []entity.SourceRow{{County: "Clayton", ListPageURL: "https://cl.gov", Status: "ERROR: boom"}}}
	require.NoError(t, NewReportWriter(path).Write(context.Background(), report))

	rows := readSheet(t, path, SourcesSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "ERROR: boom", rows[1][3])
}
