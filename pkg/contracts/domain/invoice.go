package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents one freight invoice. ContainerID references a Shipment
// but the link is informational — invoices are never joined against the
// shipment filter, so financial aggregates always describe the whole book.
type Invoice struct {
	InvoiceID   string              `json:"invoice_id" csv:"Invoice_ID" validate:"required"`
	ContainerID string              `json:"container_id,omitempty" csv:"Container_ID"`
	Amount      decimal.NullDecimal `json:"amount,omitempty" csv:"Amount"`
	PaidStatus  string              `json:"paid_status,omitempty" csv:"Paid_Status"`
	DueDate     *time.Time          `json:"due_date,omitempty" csv:"Due_Date"`
	PaymentDate *time.Time          `json:"payment_date,omitempty" csv:"Payment_Date"`

	// === DERIVED FIELDS (owned by the enrichment pipeline) ===

	// IsOutstanding marks unpaid or overdue invoices. The match is
	// case-sensitive: payment systems emit these labels verbatim.
	IsOutstanding bool `json:"is_outstanding" csv:"Is_Outstanding"`

	// OverdueFlag marks outstanding invoices whose due date has passed as of
	// the enrichment run.
	OverdueFlag bool `json:"overdue_flag" csv:"Overdue_Flag"`
}

// Paid status labels as they appear in invoice files. Open set; matching is
// exact (case-sensitive).
const (
	PaidStatusPaid    = "Paid"
	PaidStatusUnpaid  = "Unpaid"
	PaidStatusOverdue = "Overdue"
)

// IsPaid reports whether the invoice is settled. Exact match, same as the
// paid-rate KPI.
func (i *Invoice) IsPaid() bool {
	return i.PaidStatus == PaidStatusPaid
}
