package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	timelog "carsplay/internal/timelog/domain"
)

// ReportSummary is the header block of a time report.
type ReportSummary struct {
	From        time.Time
	To          time.Time
	Sessions    int
	TotalAmount float64
	TotalTime   time.Duration
}

// Summarize derives the report header from a log set.
func Summarize(logs []timelog.TimeLog, from, to time.Time) ReportSummary {
	summary := ReportSummary{From: from, To: to, Sessions: len(logs)}
	for _, log := range logs {
		summary.TotalAmount += log.Amount
		summary.TotalTime += time.Duration(log.DurationSeconds) * time.Second
	}
	return summary
}

// BuildTimeReportPDF renders a rental time report as PDF.
func BuildTimeReportPDF(summary ReportSummary, logs []timelog.TimeLog) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rental Time Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if !summary.From.IsZero() || !summary.To.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Period: %s - %s", formatBound(summary.From), formatBound(summary.To)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Sessions: %d", summary.Sessions))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Time: %s", formatDuration(summary.TotalTime)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Amount: %.2f", summary.TotalAmount))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(26, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Employee", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Station", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Minutes", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Start", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "End", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Comment", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, log := range logs {
		pdf.CellFormat(26, 6, log.Start.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(34, 6, log.Username, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, stationLabel(log), "1", 0, "L", false, 0, "")
		pdf.CellFormat(24, 6, fmt.Sprintf("%.2f", log.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d", log.DurationSeconds/60), "1", 0, "R", false, 0, "")
		pdf.CellFormat(24, 6, log.Start.Format("15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, log.End.Format("15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, log.Comment, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildTimeReportXLSX renders a rental time report as XLSX.
func BuildTimeReportXLSX(summary ReportSummary, logs []timelog.TimeLog) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	logsSheet := "sessions"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(logsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Rental Time Report")
	_ = f.SetCellValue(summarySheet, "A3", "From")
	_ = f.SetCellValue(summarySheet, "B3", formatBound(summary.From))
	_ = f.SetCellValue(summarySheet, "A4", "To")
	_ = f.SetCellValue(summarySheet, "B4", formatBound(summary.To))
	_ = f.SetCellValue(summarySheet, "A5", "Sessions")
	_ = f.SetCellValue(summarySheet, "B5", summary.Sessions)
	_ = f.SetCellValue(summarySheet, "A6", "Total Time")
	_ = f.SetCellValue(summarySheet, "B6", formatDuration(summary.TotalTime))
	_ = f.SetCellValue(summarySheet, "A7", "Total Amount")
	_ = f.SetCellValue(summarySheet, "B7", summary.TotalAmount)

	headers := []string{"Date", "Employee", "Station", "Amount", "Minutes", "Start", "End", "Comment"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(logsSheet, cell, header)
	}
	for i, log := range logs {
		row := i + 2
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("A%d", row), log.Start.Format("2006-01-02"))
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("B%d", row), log.Username)
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("C%d", row), stationLabel(log))
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("D%d", row), log.Amount)
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("E%d", row), log.DurationSeconds/60)
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("F%d", row), log.Start.Format("15:04:05"))
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("G%d", row), log.End.Format("15:04:05"))
		_ = f.SetCellValue(logsSheet, fmt.Sprintf("H%d", row), log.Comment)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stationLabel(log timelog.TimeLog) string {
	if log.StationName != "" {
		return fmt.Sprintf("#%d %s", log.StationNumber, log.StationName)
	}
	return log.StationID
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
