package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking documents (e-ticket and invoice) as PDF.
type DocsService struct {
	Bookings  BookingStore
	Now       func() time.Time
	RequestID string
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s DocsService) load(ctx context.Context, r domain.Requester, id int64) (models.Booking, error) {
	k, err := bookingStore(s.Bookings).GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := domain.Authorize(r, k.UserID); err != nil {
		return models.Booking{}, err
	}
	return k, nil
}

// ETicket returns the PDF bytes and a download filename. Cancelled bookings
// have no ticket.
func (s DocsService) ETicket(ctx context.Context, r domain.Requester, id int64) ([]byte, string, error) {
	k, err := s.load(ctx, r, id)
	if err != nil {
		return nil, "", err
	}
	if k.BookingStatus == models.BookingCancelled {
		return nil, "", domain.ValidationError{Msg: "Booking is cancelled"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%s", k.BookingID))
	return buildETicketPDF(k)
}

func (s DocsService) Invoice(ctx context.Context, r domain.Requester, id int64) ([]byte, string, error) {
	k, err := s.load(ctx, r, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_invoice", fmt.Sprintf("booking_id=%s", k.BookingID))
	return buildInvoicePDF(k, s.now())
}

func busOf(k models.Booking) models.BusSummary {
	if k.Bus != nil {
		return *k.Bus
	}
	return models.BusSummary{}
}

func buildETicketPDF(k models.Booking) ([]byte, string, error) {
	bus := busOf(k)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+k.BookingID, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID     : %s", k.BookingID),
		fmt.Sprintf("Status         : %s / %s", k.BookingStatus, k.PaymentStatus),
		fmt.Sprintf("Bus            : %s (%s)", utils.Safe(bus.BusName, "-"), utils.Safe(bus.BusNumber, "-")),
		fmt.Sprintf("Operator       : %s", utils.Safe(bus.Operator, "-")),
		fmt.Sprintf("Route          : %s -> %s", utils.Safe(bus.From, "-"), utils.Safe(bus.To, "-")),
		fmt.Sprintf("Travel date    : %s", utils.FormatDate(k.TravelDate)),
		fmt.Sprintf("Departure      : %s", utils.Safe(timeHM(bus.DepartureTime), "-")),
		fmt.Sprintf("Arrival        : %s", utils.Safe(timeHM(bus.ArrivalTime), "-")),
		fmt.Sprintf("Contact        : %s / %s", utils.Safe(k.ContactNumber, "-"), utils.Safe(k.Email, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(15, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(85, 8, "Passenger", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Age", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Gender", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Seat", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for i, p := range k.Passengers {
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(85, 7, utils.Safe(p.Name, "-"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Age), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, string(p.Gender), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", p.SeatNumber), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatRupees(k.TotalAmount))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please carry a valid photo ID and show this e-ticket when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(k.BookingID)), nil
}

func buildInvoicePDF(k models.Booking, issued time.Time) ([]byte, string, error) {
	bus := busOf(k)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+k.BookingID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice no   : INV-"+k.BookingID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued       : "+utils.FormatDateTime(issued))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Payment      : "+fmt.Sprintf("%s (%s)", k.PaymentMethod, k.PaymentStatus))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	billed := k.Email
	if k.User != nil {
		billed = fmt.Sprintf("%s <%s>", utils.Safe(k.User.Name, "-"), utils.Safe(k.User.Email, k.Email))
	}
	pdf.Cell(0, 7, utils.Safe(billed, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Phone: "+utils.Safe(k.ContactNumber, "-"))
	pdf.Ln(10)

	seats := k.SeatCount()
	perSeat := 0.0
	if seats > 0 {
		perSeat = utils.RoundMoney(k.TotalAmount / float64(seats))
	}
	desc := fmt.Sprintf("Bus ticket %s -> %s on %s, %s (%s)",
		utils.Safe(bus.From, "-"), utils.Safe(bus.To, "-"),
		utils.FormatDate(k.TravelDate), utils.Safe(bus.BusName, "-"), utils.Safe(bus.BusNumber, "-"),
	)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, desc, "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, fmt.Sprintf("%d x %s", seats, utils.FormatRupees(perSeat)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatRupees(k.TotalAmount))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("INVOICE_%s.pdf", safeFilenamePart(k.BookingID)), nil
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 && v[2] == ':' {
		return v[:5]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
