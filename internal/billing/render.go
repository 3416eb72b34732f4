package billing

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/money"
)

const dateLayout = "02/01/2006 15:04"

// RenderText formats an invoice as a plain-text ticket.
func RenderText(inv models.Invoice, business models.Settings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", business.BusinessName)
	if business.Phone != "" {
		fmt.Fprintf(&b, "Tel: %s\n", business.Phone)
	}
	if business.Address != "" {
		fmt.Fprintf(&b, "%s\n", business.Address)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Factura #%d\n", inv.Number)
	fmt.Fprintf(&b, "Fecha: %s\n", inv.IssuedAt.Format(dateLayout))
	fmt.Fprintf(&b, "Cliente: %s\n", inv.Customer)
	if inv.Phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", inv.Phone)
	}
	b.WriteString("\nDetalle:\n")
	for _, it := range inv.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s = %s\n", it.Description, it.Quantity, money.Format(it.UnitPrice), money.Format(it.Amount()))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", money.Format(inv.Subtotal))
	fmt.Fprintf(&b, "IVA: %s\n", money.Format(inv.Tax))
	fmt.Fprintf(&b, "Total: %s\n", money.Format(inv.Total))
	return b.String()
}

// pdfAmount avoids the colón sign, which the core PDF fonts cannot encode.
func pdfAmount(d decimal.Decimal) string {
	return "CRC " + strings.TrimPrefix(money.Format(d), money.CurrencySymbol)
}

// RenderPDF writes an A5 invoice to w.
func RenderPDF(w io.Writer, inv models.Invoice, business models.Settings) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(business.BusinessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if business.Phone != "" {
		pdf.CellFormat(contentW, 4, tr("Tel: "+business.Phone), "", 1, "C", false, 0, "")
	}
	if business.Address != "" {
		pdf.CellFormat(contentW, 4, tr(business.Address), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Factura #%d", inv.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Fecha: "+inv.IssuedAt.Format(dateLayout), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Cliente: "+inv.Customer), "", 1, "L", false, 0, "")
	if inv.Phone != "" {
		pdf.CellFormat(contentW, 5, tr("Teléfono: "+inv.Phone), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	col1 := contentW * 0.50
	col2 := contentW * 0.12
	col3 := contentW * 0.19
	col4 := contentW * 0.19

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, tr("Descripción"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Precio", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Monto", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, it := range inv.Items {
		pdf.CellFormat(col1, 5, tr(it.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, pdfAmount(it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, pdfAmount(it.Amount()), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	label := col1 + col2 + col3
	pdf.CellFormat(label, 5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, pdfAmount(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(label, 5, "IVA:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, pdfAmount(inv.Tax), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(label, 6, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, pdfAmount(inv.Total), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write invoice %d: %w", inv.Number, err)
	}
	return nil
}
