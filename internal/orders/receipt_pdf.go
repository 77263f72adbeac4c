package orders

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

func formatMoney(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func renderReceipt(o *Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(235, 235, 235)
	pdf.Text(25, 140, "SALADISH")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Our Saladish - Order Receipt")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Order: "+o.ID)
	pdf.Ln(5)
	pdf.Cell(0, 6, "Placed: "+o.CreatedAt.Format(time.RFC1123))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Payment: "+o.PaymentMethod+"  |  Status: "+o.Status)
	pdf.Ln(8)

	if o.Address != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(20, 20, 20)
		pdf.Cell(0, 6, "Deliver to")
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.Cell(0, 5, o.Address.Name)
		pdf.Ln(4)
		pdf.Cell(0, 5, o.Address.Street)
		pdf.Ln(4)
		pdf.Cell(0, 5, o.Address.City+", "+o.Address.State+" "+o.Address.Zip)
		pdf.Ln(4)
		pdf.Cell(0, 5, "Phone: "+o.Address.Phone)
		pdf.Ln(8)
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 10)

	colW := []float64{92, 24, 16, 24, 26}
	pdf.CellFormat(colW[0], 8, "ITEM", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colW[1], 8, "PORTION", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[2], 8, "QTY", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[3], 8, "PRICE", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colW[4], 8, "LINE", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)

	for _, line := range o.Items {
		lineTotal := line.PriceCents * int64(line.Quantity)
		pdf.CellFormat(colW[0], 7, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 7, line.Portion, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[3], 7, formatMoney(line.PriceCents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], 7, formatMoney(lineTotal), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colW[0]+colW[1]+colW[2]+colW[3], 9, "TOTAL", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colW[4], 9, formatMoney(o.TotalCents), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
