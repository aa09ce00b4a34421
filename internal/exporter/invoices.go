package exporter

import (
	"io"
	"sort"

	"seafreight/internal/config"
	"seafreight/pkg/contracts/domain"
)

// InvoiceExporter handles invoice exports, primarily the outstanding-invoice
// report finance pulls after every reload.
type InvoiceExporter struct {
	csvWriter *CSVWriter
}

// NewInvoiceExporter creates a new invoice exporter
func NewInvoiceExporter(paths *config.Paths) *InvoiceExporter {
	return &InvoiceExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportOutstanding streams the outstanding invoices as CSV, earliest due
// date first. Invoices without a due date sort last so the collectable work
// leads the file.
func (e *InvoiceExporter) ExportOutstanding(w io.Writer, invoices []domain.Invoice) error {
	return Encode(w, e.getHeaders(), e.toCSVRecords(invoices))
}

// ExportOutstandingFile writes the outstanding-invoice report to a CSV file
// under the exports directory (or an absolute path).
func (e *InvoiceExporter) ExportOutstandingFile(invoices []domain.Invoice, outputPath string) error {
	return e.csvWriter.WriteSimpleCSV(outputPath, e.getHeaders(), e.toCSVRecords(invoices))
}

func (e *InvoiceExporter) toCSVRecords(invoices []domain.Invoice) [][]string {
	outstanding := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IsOutstanding {
			outstanding = append(outstanding, inv)
		}
	}

	sort.Slice(outstanding, func(i, j int) bool {
		a, b := outstanding[i], outstanding[j]
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.InvoiceID < b.InvoiceID
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case a.DueDate.Equal(*b.DueDate):
			return a.InvoiceID < b.InvoiceID
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})

	records := make([][]string, 0, len(outstanding))
	for _, inv := range outstanding {
		records = append(records, e.recordToCSVRow(inv))
	}
	return records
}

// getHeaders returns the CSV headers for outstanding invoices
func (e *InvoiceExporter) getHeaders() []string {
	return []string{
		"Invoice_ID", "Container_ID", "Amount", "Paid_Status",
		"Due_Date", "Payment_Date", "Overdue_Flag",
	}
}

// recordToCSVRow converts an invoice to a CSV row
func (e *InvoiceExporter) recordToCSVRow(inv domain.Invoice) []string {
	return []string{
		inv.InvoiceID,
		inv.ContainerID,
		formatAmount(inv.Amount),
		inv.PaidStatus,
		formatDate(inv.DueDate),
		formatDate(inv.PaymentDate),
		formatBool(inv.OverdueFlag),
	}
}
