package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"agriedge/internal/model"
	"agriedge/pkg/validator"
)

const PDFFilename = "registrations.pdf"

type reportText struct {
	title, generated, footer string
}

var reportTexts = map[validator.Lang]reportText{
	validator.EN: {"AgriEdge registrations", "Generated at: %s", "Page %d of {nb}"},
	validator.FR: {"Liste des inscriptions AgriEdge", "Généré le: %s", "Page %d sur {nb}"},
}

// column widths in mm for a landscape A4 page, matching ReportHeader
var reportWidths = []float64{38, 52, 36, 28, 60, 34, 29}

// Report renders the printable report.
type Report struct {
	Formatter
	Compress bool
}

// WritePDF writes a paged table of regs with a title, a generation line and
// a "page N of M" footer on every page.
func (r Report) WritePDF(w io.Writer, regs []model.Registration, generatedAt time.Time) error {
	text := reportTexts[r.Lang]

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(text.title, true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf(text.footer, pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	header := r.ReportHeader()
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(188, 214, 48)
		pdf.SetTextColor(0, 0, 0)
		for i, h := range header {
			pdf.CellFormat(reportWidths[i], 7, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(text.title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf(text.generated, generatedAt.In(r.Location).Format(r.Layout))), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	drawHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	const rowHeight = 6

	pdf.SetFont("Helvetica", "", 8)
	for n, row := range r.ReportRows(regs) {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Helvetica", "", 8)
		}
		if n%2 == 1 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for i, cell := range row {
			pdf.CellFormat(reportWidths[i], rowHeight, fit(pdf, tr(cell), reportWidths[i]-2), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fit truncates s with an ellipsis so that it renders within width. s is
// already translated to the single-byte font encoding.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
