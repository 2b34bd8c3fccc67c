package printouts

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	importreceipt "stockreceipter/frontend/receipts/importReceipt"
)

const rowsPerPage = 22

type column struct {
	title string
	width float64
	align string
}

var itemColumns = []column{
	{"#", 10, "C"},
	{"Code", 26, "L"},
	{"Product", 70, "L"},
	{"Qty", 18, "R"},
	{"Cost", 26, "R"},
	{"Amount", 30, "R"},
}

func renderImportReceiptPDF(d importreceipt.Detail, printedAt time.Time) ([]byte, error) {
	pdf, err := buildImportReceiptPDF(d, printedAt)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// buildImportReceiptPDF lays out a receipt header with a code128 barcode of
// the receipt number, followed by the item table and totals.
func buildImportReceiptPDF(d importreceipt.Detail, printedAt time.Time) (*gofpdf.Fpdf, error) {
	number := strings.TrimSpace(d.Receipt.ReceiptNumber)
	if number == "" {
		return nil, fmt.Errorf("receipt has no number")
	}
	barcodePNG, err := renderCode128PNG(number, 1200, 220)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Import Receipt "+number, false)
	pdf.SetAutoPageBreak(false, 0)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "receipt-barcode-" + number
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))

	pages := (len(d.Items) + rowsPerPage - 1) / rowsPerPage
	if pages == 0 {
		pages = 1
	}
	for page := 0; page < pages; page++ {
		pdf.AddPage()
		addHeader(pdf, d, imageName, opt, printedAt, page+1, pages)

		start := page * rowsPerPage
		end := min(start+rowsPerPage, len(d.Items))
		addItemRows(pdf, d.Items[start:end], start)

		if page == pages-1 {
			addTotals(pdf, d)
		}
	}
	return pdf, pdf.Error()
}

func addHeader(pdf *gofpdf.Fpdf, d importreceipt.Detail, imageName string, opt gofpdf.ImageOptions, printedAt time.Time, page, pages int) {
	pageW, _ := pdf.GetPageSize()
	r := d.Receipt

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(12, 12)
	pdf.CellFormat(pageW-24, 10, "IMPORT RECEIPT", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(12)
	pdf.CellFormat(90, 6, "Number: "+r.ReceiptNumber, "", 1, "L", false, 0, "")
	pdf.SetX(12)
	pdf.CellFormat(90, 6, "Status: "+string(r.Status), "", 1, "L", false, 0, "")
	pdf.SetX(12)
	pdf.CellFormat(90, 6, "Warehouse: "+fallback(r.Warehouse, "-"), "", 1, "L", false, 0, "")
	pdf.SetX(12)
	pdf.CellFormat(90, 6, "Import date: "+formatDate(r.ImportDate), "", 1, "L", false, 0, "")
	pdf.SetX(12)
	pdf.CellFormat(90, 6, "Printed: "+printedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")

	imgW, imgH := 80.0, 18.0
	pdf.ImageOptions(imageName, pageW-12-imgW, 14, imgW, imgH, false, opt, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(pageW-12-imgW, 14+imgH+1)
	pdf.CellFormat(imgW, 4, r.ReceiptNumber, "", 0, "C", false, 0, "")
	pdf.SetXY(pageW-12-imgW, 14+imgH+6)
	pdf.CellFormat(imgW, 4, fmt.Sprintf("Page %d / %d", page, pages), "", 0, "R", false, 0, "")

	if note := strings.TrimSpace(r.Note); note != "" {
		pdf.SetXY(12, 56)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(pageW-24, 5, "Note: "+note, "", "L", false)
	}

	pdf.SetXY(12, 68)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range itemColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
}

func addItemRows(pdf *gofpdf.Fpdf, items []importreceipt.ItemView, offset int) {
	pdf.SetFont("Helvetica", "", 9)
	for i, it := range items {
		amount := it.CostPrice.Mul(decimal.NewFromInt(it.Quantity))
		values := []string{
			strconv.Itoa(offset + i + 1),
			it.Code,
			truncateToWidth(pdf, it.ProductName, itemColumns[2].width-2),
			strconv.FormatInt(it.Quantity, 10),
			it.CostPrice.StringFixed(2),
			amount.StringFixed(2),
		}
		pdf.SetX(12)
		for j, c := range itemColumns {
			pdf.CellFormat(c.width, 7, values[j], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func addTotals(pdf *gofpdf.Fpdf, d importreceipt.Detail) {
	r := d.Receipt
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(12)
	pdf.CellFormat(106, 7, fmt.Sprintf("Products: %d", r.TotalProduct), "", 0, "L", false, 0, "")
	pdf.CellFormat(18, 7, strconv.FormatInt(r.Quantity, 10), "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, r.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
}

func truncateToWidth(pdf *gofpdf.Fpdf, text string, maxWidth float64) string {
	if pdf.GetStringWidth(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
