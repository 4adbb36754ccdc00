package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFont    = "Helvetica"
	pdfMargin  = 20.0
	lineHeight = 7.0
	dayLayout  = "2006-01-02"
)

type column struct {
	title string
	width float64
	align string
}

// PDFRenderer lays reports out on A4 pages.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (PDFRenderer) RenderBookings(r *BookingReport) ([]byte, error) {
	doc := newDocument("Booking Report")
	doc.line(fmt.Sprintf("Report Period: %s to %s", r.From.Format(dayLayout), r.To.Format(dayLayout)))
	doc.line(fmt.Sprintf("Total Bookings: %d", len(r.Rows)))
	doc.line(fmt.Sprintf("Total Amount: %s", money(r.Total)))
	doc.pdf.Ln(4)

	cols := []column{
		{"ID", 15, "L"}, {"Room", 40, "L"}, {"Guest", 40, "L"},
		{"Check-In", 25, "L"}, {"Status", 25, "L"}, {"Amount", 25, "R"},
	}
	doc.header(cols)
	for _, row := range r.Rows {
		doc.row(cols, []string{
			fmt.Sprint(row.ID),
			row.RoomName,
			row.GuestName,
			row.CheckIn.Format(dayLayout),
			string(row.Status),
			money(row.Amount),
		})
	}
	return doc.bytes()
}

func (PDFRenderer) RenderMonthly(r *MonthlyReport) ([]byte, error) {
	doc := newDocument("Monthly Report - " + r.Month.Format("January 2006"))
	doc.line(fmt.Sprintf("Report Period: %s to %s", r.From.Format(dayLayout), r.To.Format(dayLayout)))
	doc.line(fmt.Sprintf("Total Bookings: %d", r.TotalBookings))
	doc.line(fmt.Sprintf("Total Revenue: %s", money(r.Revenue)))
	doc.line(fmt.Sprintf("Average Booking Value: %s", money(r.AverageValue)))
	doc.pdf.Ln(4)

	doc.pdf.SetFont(pdfFont, "B", 14)
	doc.pdf.CellFormat(0, lineHeight+2, "Booking Status Summary", "", 1, "L", false, 0, "")
	doc.pdf.SetFont(pdfFont, "", 10)
	for _, sc := range r.ByStatus {
		doc.line(fmt.Sprintf("%s: %d", sc.Status, sc.Count))
	}
	return doc.bytes()
}

func (PDFRenderer) RenderUtilities(r *UtilitiesReport) ([]byte, error) {
	doc := newDocument("Water & Electricity Report")
	doc.line(fmt.Sprintf("Report Period: %s to %s", r.From.Format(dayLayout), r.To.Format(dayLayout)))
	doc.line(fmt.Sprintf("Total Rentals: %d", len(r.Rows)))
	doc.line(fmt.Sprintf("Water: %s   Electricity: %s", money(r.TotalWater), money(r.TotalElectricity)))
	doc.pdf.Ln(4)

	cols := []column{
		{"Room", 32, "L"}, {"Tenant", 38, "L"}, {"Water Usage", 25, "R"},
		{"Elec. Usage", 25, "R"}, {"Water Bill", 25, "R"}, {"Elec. Bill", 25, "R"},
	}
	doc.header(cols)
	for _, row := range r.Rows {
		doc.row(cols, []string{
			row.RoomName,
			row.TenantName,
			fmt.Sprintf("%.2f", row.WaterUsage),
			fmt.Sprintf("%.2f", row.ElectricityUsage),
			money(row.WaterBill),
			money(row.ElectricityBill),
		})
	}
	return doc.bytes()
}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFont(pdfFont, "B", 20)
	pdf.SetTextColor(33, 150, 243)
	pdf.CellFormat(0, 12, d.tr(title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(pdfFont, "", 10)
	pdf.Ln(4)
	return d
}

func (d *document) line(text string) {
	d.pdf.CellFormat(0, lineHeight, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) header(cols []column) {
	d.pdf.SetFont(pdfFont, "B", 10)
	for _, c := range cols {
		d.pdf.CellFormat(c.width, lineHeight, c.title, "B", 0, c.align, false, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetFont(pdfFont, "", 10)
}

func (d *document) row(cols []column, values []string) {
	d.pdf.SetDrawColor(200, 200, 200)
	for i, c := range cols {
		d.pdf.CellFormat(c.width, lineHeight, d.tr(values[i]), "B", 0, c.align, false, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetDrawColor(0, 0, 0)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
