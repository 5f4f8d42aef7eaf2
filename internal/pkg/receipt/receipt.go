package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Data holds everything rendered onto a booking receipt.
type Data struct {
	BookingID      string
	CustomerName   string
	CustomerEmail  string
	HallName       string
	VenueName      string
	Date           string
	StartTime      string
	EndTime        string
	DurationHours  string
	PricePerHour   string
	TotalAmount    string
	PaidAmount     string
	RefundedAmount string
	PaymentMode    string
	Status         string
	Payments       []PaymentLine
	GeneratedAt    time.Time
}

// PaymentLine is a single payment row on the receipt.
type PaymentLine struct {
	Type      string
	Amount    string
	Reference string
	PaidAt    string
}

// Build renders a booking receipt PDF and returns the bytes and a filename.
func Build(d Data) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Receipt No : RCP-"+d.BookingID)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued     : "+d.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Name  : "+safe(d.CustomerName))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Email : "+safe(d.CustomerEmail))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Booking details:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Hall          : " + safe(d.HallName),
		"Venue         : " + safe(d.VenueName),
		"Date          : " + safe(d.Date),
		fmt.Sprintf("Time          : %s - %s (%s h)", safe(d.StartTime), safe(d.EndTime), safe(d.DurationHours)),
		"Price per hour: " + safe(d.PricePerHour),
		"Payment mode  : " + safe(d.PaymentMode),
		"Status        : " + safe(d.Status),
	}
	for _, s := range lines {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if len(d.Payments) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Payments:")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for i, p := range d.Payments {
			pdf.MultiCell(0, 6, fmt.Sprintf("%d) %s  %s  (ref %s, %s)",
				i+1, p.Type, p.Amount, safe(p.Reference), safe(p.PaidAt)), "", "", false)
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total : "+safe(d.TotalAmount))
	pdf.Ln(7)
	pdf.Cell(0, 8, "Paid  : "+safe(d.PaidAmount))
	pdf.Ln(7)
	if d.RefundedAmount != "" && d.RefundedAmount != "0.00" {
		pdf.Cell(0, 8, "Refunded : "+d.RefundedAmount)
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this receipt at the venue on the day of your event.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%s.pdf", d.BookingID)
	return buf.Bytes(), filename, nil
}

func safe(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
