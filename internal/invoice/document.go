package invoice

import (
	"context"
	"fmt"
	"strings"
)

// Fixed letterhead of the business. The rendered document is the plain-text
// projection handed to downstream exporters.
const (
	businessName    = "Kasthuri Enterprises"
	businessAddress = "Address: No: 332, Napawala, Getaheththa"
	businessTel     = "Tel: 075 9084603 / 077 7065110"
	businessEmail   = "Email: kasthurienterprices2014@gmail.com"
	businessRegNo   = "B.R. NO: EHE/DS/ADM/07/02329"
	chequeNote      = `Please Issue Cheques In Favour of "Kasthuri Enterprises".`
)

// minItemRows pads the item table so short invoices keep the letterhead shape.
const minItemRows = 5

var itemColumnWidths = []int{10, 12, 28, 12, 12, 12, 12}

var itemHeaders = []string{"Date", "Vehicle No.", "Particulars", "Rate", "Held Up", "Advance", "Amount"}

const dateLayout = "02/01/2006"

// RenderDocument produces the printable letterhead layout of an invoice
// from its stored header and items, with no recomputation. It fails with a
// not-found error when the invoice is missing or soft-deleted.
func (s *Service) RenderDocument(ctx context.Context, id int64) (string, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	width := tableWidth()
	var b strings.Builder

	writeCentered(&b, width, businessName)
	writeCentered(&b, width, businessAddress)
	writeCentered(&b, width, businessTel)
	writeCentered(&b, width, businessEmail)
	writeRight(&b, width, businessRegNo)
	b.WriteString(strings.Repeat("=", width) + "\n\n")

	writeCentered(&b, width, "Invoice")
	b.WriteString("\n")
	writeRight(&b, width, "Invoice No: "+inv.InvoiceNo)
	writeRight(&b, width, "Date: "+inv.GenerationDate.Format(dateLayout))
	b.WriteString("\n")
	b.WriteString("Client: " + inv.ClientName + "\n\n")

	sep := rowSeparator()
	b.WriteString(sep)
	b.WriteString(tableRow(itemHeaders...))
	b.WriteString(sep)
	for _, it := range inv.Items {
		b.WriteString(tableRow(
			it.ItemDate.Format(dateLayout),
			it.VehicleRegNo,
			it.Particulars,
			it.Rate.StringFixed(2),
			it.HeldUp.StringFixed(2),
			it.Advance.StringFixed(2),
			it.Balance.StringFixed(2),
		))
	}
	for i := len(inv.Items); i < minItemRows; i++ {
		b.WriteString(tableRow("", "", "", "", "", "", ""))
	}
	b.WriteString(sep)

	label := padRight("Total Amount", width-itemColumnWidths[6]-7)
	b.WriteString("| " + label + " | " + padLeft(inv.TotalAmount.StringFixed(2), itemColumnWidths[6]) + " |\n")
	b.WriteString(sep)

	b.WriteString("\n" + chequeNote + "\n")
	return b.String(), nil
}

// tableWidth is the full printed width of an item row, borders included.
func tableWidth() int {
	w := 1 // leading border
	for _, cw := range itemColumnWidths {
		w += cw + 3 // cell padding and trailing border
	}
	return w
}

func tableRow(cells ...string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if len(cell) > itemColumnWidths[i] {
			cell = cell[:itemColumnWidths[i]]
		}
		// Numeric columns sit flush right, text columns flush left.
		if i >= 3 && cell != "" {
			parts[i] = padLeft(cell, itemColumnWidths[i])
		} else {
			parts[i] = padRight(cell, itemColumnWidths[i])
		}
	}
	return "| " + strings.Join(parts, " | ") + " |\n"
}

func rowSeparator() string {
	parts := make([]string, len(itemColumnWidths))
	for i, w := range itemColumnWidths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+\n"
}

func writeCentered(b *strings.Builder, width int, s string) {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(b, "%s%s\n", strings.Repeat(" ", pad), s)
}

func writeRight(b *strings.Builder, width int, s string) {
	fmt.Fprintf(b, "%s\n", padLeft(s, width))
}

func padRight(s string, w int) string { return fmt.Sprintf("%-*s", w, s) }

func padLeft(s string, w int) string { return fmt.Sprintf("%*s", w, s) }
