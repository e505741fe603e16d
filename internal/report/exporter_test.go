package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

var (
	sampleRows = []model.ReportRow{
		{Date: "2024-01-15", PatientName: "Budi Santoso", Poli: "Umum", MainDiagnosis: "Acute upper respiratory infection, unspecified", ICD10Code: "J06.9"},
		{Date: "2024-01-16", PatientName: "Dewi Lestari", Poli: "Gigi", MainDiagnosis: "Pulpitis", ICD10Code: "K04.0"},
	}
	sampleMeta = model.ReportMeta{
		StartDate: "2024-01-15",
		EndDate:   "2024-01-31",
		PrintedAt: "01/02/2024 10.00",
		PrintedBy: "admin",
	}
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)

	assert.Equal(t, "Laporan_2024-01-01_2024-01-31.pdf", Filename("2024-01-01", "2024-01-31", FormatPDF))
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, sampleRows, sampleMeta))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFPaginates(t *testing.T) {
	rows := make([]model.ReportRow, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, sampleRows[i%2])
	}

	var buf bytes.Buffer
	meta := sampleMeta
	meta.Poli = "Umum"
	require.NoError(t, WritePDF(&buf, rows, meta))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFFooterStaysInsideMargin(t *testing.T) {
	for n := 1; n <= 90; n++ {
		rows := make([]model.ReportRow, 0, n)
		for i := 0; i < n; i++ {
			rows = append(rows, sampleRows[1])
		}

		pdf := renderPDF(rows, sampleMeta)
		require.NoError(t, pdf.Error())
		_, pageH := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		assert.LessOrEqual(t, pdf.GetY(), pageH-bottom, "%d rows", n)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleRows, sampleMeta))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetReport, SheetInfo}, f.GetSheetList())

	rows, err := f.GetRows(SheetReport)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, []string{"15/01/2024", "Budi Santoso", "Umum", "Acute upper respiratory infection, unspecified"}, rows[1])

	width, err := f.GetColWidth(SheetReport, "D")
	require.NoError(t, err)
	assert.Equal(t, float64(50), width)

	poli, err := f.GetCellValue(SheetInfo, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Semua", poli)
	petugas, err := f.GetCellValue(SheetInfo, "B5")
	require.NoError(t, err)
	assert.Equal(t, "admin", petugas)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleRows, sampleMeta))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Tanggal", "Nama Pasien", "Poli", "Diagnosa Utama"}, records[0])
	assert.Equal(t, "Pulpitis", records[2][3])
}
