package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

const (
	DefaultFacility = "PUSKESMAS MERDEKA"
	reportTitle     = "Laporan Kunjungan Pasien"

	SheetReport = "Laporan"
	SheetInfo   = "Info"
	allPoli     = "Semua"
)

var columns = []string{"Tanggal", "Nama Pasien", "Poli", "Diagnosa Utama"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatXLSX, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename is Laporan_<start>_<end>.<ext>.
func Filename(start, end string, f Format) string {
	return fmt.Sprintf("Laporan_%s_%s.%s", start, end, f)
}

// Write renders rows in the given format.
func Write(w io.Writer, f Format, rows []model.ReportRow, meta model.ReportMeta) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, rows, meta)
	case FormatXLSX:
		return WriteXLSX(w, rows, meta)
	case FormatCSV:
		return WriteCSV(w, rows)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

func shortDate(s string) string {
	formatted, err := dateutil.FormatDateString(s, dateutil.Short)
	if err != nil {
		return s
	}
	return formatted
}

func period(meta model.ReportMeta) string {
	return shortDate(meta.StartDate) + " - " + shortDate(meta.EndDate)
}

func facility(meta model.ReportMeta) string {
	if meta.Facility == "" {
		return DefaultFacility
	}
	return meta.Facility
}

func cells(row model.ReportRow) []string {
	return []string{shortDate(row.Date), row.PatientName, row.Poli, row.MainDiagnosis}
}

// WritePDF renders an A4 portrait report with a grid table.
func WritePDF(w io.Writer, rows []model.ReportRow, meta model.ReportMeta) error {
	if err := renderPDF(rows, meta).Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// footerGap and footerH place the printed-by line below the table.
const (
	footerGap = 10.0
	footerH   = 5.0
)

func renderPDF(rows []model.ReportRow, meta model.ReportMeta) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 15, 14)
	pdf.SetAutoPageBreak(false, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 7, tr(facility(meta)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, tr(reportTitle), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Periode: "+period(meta)), "", 1, "L", false, 0, "")
	if meta.Poli != "" {
		pdf.CellFormat(0, 6, tr("Poli: "+meta.Poli), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	widths := []float64{25, 55, 30, 72}
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(41, 128, 185)
		pdf.SetTextColor(255, 255, 255)
		for i, c := range columns {
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	const lineH = 5.0
	_, pageH := pdf.GetPageSize()
	left, _, _, bottom := pdf.GetMargins()
	for _, row := range rows {
		values := cells(row)
		lines := 1
		for i, v := range values {
			values[i] = tr(v)
			if n := len(pdf.SplitText(values[i], widths[i]-2)); n > lines {
				lines = n
			}
		}
		h := float64(lines)*lineH + 1

		if pdf.GetY()+h > pageH-bottom {
			pdf.AddPage()
			header()
		}

		x, y := left, pdf.GetY()
		for i, v := range values {
			pdf.Rect(x, y, widths[i], h, "D")
			pdf.SetXY(x+1, y+0.5)
			pdf.MultiCell(widths[i]-2, lineH, v, "", "L", false)
			x += widths[i]
		}
		pdf.SetXY(left, y+h)
	}

	if pdf.GetY()+footerGap+footerH > pageH-bottom {
		pdf.AddPage()
	} else {
		pdf.Ln(footerGap)
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, footerH, tr(fmt.Sprintf("Dicetak: %s | Petugas: %s", meta.PrintedAt, meta.PrintedBy)), "", 1, "L", false, 0, "")

	return pdf
}

// WriteXLSX renders the rows on the Laporan sheet and the filter on Info.
func WriteXLSX(w io.Writer, rows []model.ReportRow, meta model.ReportMeta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReport); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := setRows(f, SheetReport, columns, rowValues(rows)); err != nil {
		return err
	}
	for col, width := range map[string]float64{"A": 12, "B": 30, "C": 15, "D": 50} {
		if err := f.SetColWidth(SheetReport, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if _, err := f.NewSheet(SheetInfo); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	poli := meta.Poli
	if poli == "" {
		poli = allPoli
	}
	info := [][]interface{}{
		{"Periode", period(meta)},
		{"Poli", poli},
		{"Dicetak", meta.PrintedAt},
		{"Petugas", meta.PrintedBy},
	}
	if err := setRows(f, SheetInfo, []string{"Field", "Value"}, info); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetInfo, "B", "B", 30); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func rowValues(rows []model.ReportRow) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values := cells(row)
		out = append(out, []interface{}{values[0], values[1], values[2], values[3]})
	}
	return out
}

func setRows(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// WriteCSV renders the same columns as the other formats.
func WriteCSV(w io.Writer, rows []model.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(cells(row)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
