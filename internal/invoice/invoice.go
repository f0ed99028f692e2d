package invoice

import (
	"bytes"
	"fmt"

	"parfum/internal/domain/orders"

	"github.com/jung-kurt/gofpdf"
)

func money(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// Render produces the PDF invoice for an order: header with the order
// number and customer block, one table row per item snapshot, then the
// shipping and grand-total lines.
func Render(o *orders.Order, items []orders.OrderItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", o.OrderNumber), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Parfum")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice for order %s", o.OrderNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", o.CreatedAt.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Bill to")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, o.CustomerName)
	pdf.Ln(6)
	pdf.Cell(0, 6, o.AddressLine1)
	pdf.Ln(6)
	addr := fmt.Sprintf("%s, %s", o.City, o.Country)
	if o.PostalCode != nil && *o.PostalCode != "" {
		addr += " " + *o.PostalCode
	}
	pdf.Cell(0, 6, addr)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("%s / %s", o.CustomerEmail, o.CustomerPhone))
	pdf.Ln(12)

	// Items table
	const (
		wName  = 90.0
		wQty   = 20.0
		wUnit  = 35.0
		wTotal = 35.0
	)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(wName, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(wQty, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(wUnit, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(wTotal, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range items {
		name := it.Name
		if it.VariantLabel != nil && *it.VariantLabel != "" {
			name = fmt.Sprintf("%s (%s)", name, *it.VariantLabel)
		}
		pdf.CellFormat(wName, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(wQty, 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(wUnit, 8, money(it.UnitPriceCents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(wTotal, 8, money(it.TotalCents), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(wName+wQty+wUnit, 8, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(wTotal, 8, money(o.SubtotalCents), "", 1, "R", false, 0, "")

	shippingLabel := money(o.ShippingCents)
	if o.ShippingCents == 0 {
		shippingLabel = "quoted separately"
	}
	pdf.CellFormat(wName+wQty+wUnit, 8, "Shipping", "", 0, "R", false, 0, "")
	pdf.CellFormat(wTotal, 8, shippingLabel, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(wName+wQty+wUnit, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(wTotal, 8, money(o.TotalCents), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
