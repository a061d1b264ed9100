// Package pdf renders invoices to PDF bytes. It is a pure function of
// already-validated data: one resolved invoice, its patient and the clinic
// record. No validation happens here.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/ivanblascoverdu/facturacion/internal/models"
)

// Renderer produces PDF documents for invoices.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces an A4 invoice document.
func (r *Renderer) Render(inv models.Invoice, patient models.Patient, clinic models.ClinicConfig) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Clinic header
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, translate(clinic.Name))
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, translate(fmt.Sprintf("Factura %s", inv.Number)), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, translate(clinic.Address))
	pdf.Ln(5)
	pdf.Cell(0, 5, translate(fmt.Sprintf("%s · %s", clinic.Phone, clinic.Email)))
	pdf.Ln(5)
	pdf.Cell(0, 5, translate(fmt.Sprintf("NIF: %s", clinic.TaxID)))
	pdf.Ln(10)

	// Patient block
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, translate("Facturar a:"))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, translate(patient.Name))
	pdf.Ln(5)
	if patient.Address != "" {
		pdf.Cell(0, 5, translate(patient.Address))
		pdf.Ln(5)
	}
	if patient.TaxID != "" {
		pdf.Cell(0, 5, translate(fmt.Sprintf("NIF: %s", patient.TaxID)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 5, translate(patient.Email))
	pdf.Ln(10)

	// Dates
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 5, translate(fmt.Sprintf("Fecha de emisión: %s", inv.IssueDate.Format("02/01/2006"))))
	pdf.Cell(95, 5, translate(fmt.Sprintf("Vencimiento: %s", inv.DueDate.Format("02/01/2006"))))
	pdf.Ln(10)

	// Item table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(80, 8, translate("Concepto"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, translate("Cant."), "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, translate("Precio"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(20, 8, translate("IVA %"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, translate("Total"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(80, 8, translate(item.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, translate(fmt.Sprintf("%.2f€", item.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%.0f", item.VATRate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, translate(fmt.Sprintf("%.2f€", item.Total)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(150, 6, translate("Base imponible"), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, translate(fmt.Sprintf("%.2f€", inv.Subtotal)), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 6, translate(fmt.Sprintf("IVA (%.0f%%)", inv.VATRate)), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, translate(fmt.Sprintf("%.2f€", inv.VATAmount)), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 8, translate("Total"), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, translate(fmt.Sprintf("%.2f€", inv.Total)), "", 1, "R", false, 0, "")

	// Payment footer
	if clinic.BankAccount != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(0, 5, translate(fmt.Sprintf("Pago por transferencia a: %s", clinic.BankAccount)))
	}
	if inv.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 9)
		pdf.Cell(0, 5, translate(inv.Notes))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}
