package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"seafreight/internal/config"
	apperrors "seafreight/internal/errors"
	"seafreight/pkg/contracts/domain"
)

// Canonical dataset column names. Header matching is case-insensitive and
// ignores surrounding whitespace; extra columns are ignored and an absent
// column leaves its field zero rather than failing the load.
const (
	colContainerID     = "Container_ID"
	colOriginPort      = "Origin_Port"
	colDestinationPort = "Destination_Port"
	colETA             = "ETA"
	colStatus          = "Status"
	colCostPlanned     = "Cost_Planned"
	colCostActual      = "Cost_Actual"

	colInvoiceID   = "Invoice_ID"
	colAmount      = "Amount"
	colPaidStatus  = "Paid_Status"
	colDueDate     = "Due_Date"
	colPaymentDate = "Payment_Date"

	colLocation     = "Location"
	colQuantity     = "Quantity"
	colInboundDate  = "Inbound_Date"
	colOutboundDate = "Outbound_Date"

	colClientID        = "Client_ID"
	colName            = "Name"
	colDeliveryAddress = "Delivery_Address"
	colPickupDate      = "Pickup_Date"
)

// headerIndex maps normalized header names to column positions. The first
// occurrence wins when a name repeats.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := index[normalized]; !exists {
			index[normalized] = i
		}
	}
	return index
}

// rowReader reads one data row through the header map. Lookups use canonical
// column names; absent columns and short rows read as empty cells.
type rowReader struct {
	index map[string]int
	row   []string
	line  int
}

func (r rowReader) cell(column string) string {
	idx, ok := r.index[strings.ToLower(column)]
	if !ok || idx >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[idx])
}

// empty reports whether every mapped cell is blank. Padding rows and
// spreadsheet leftovers are skipped on this basis.
func (r rowReader) empty() bool {
	for _, idx := range r.index {
		if idx < len(r.row) && strings.TrimSpace(r.row[idx]) != "" {
			return false
		}
	}
	return true
}

// date parses an optional date cell. Empty reads as nil; a non-empty cell
// that does not parse fails the load with row and column context.
func (r rowReader) date(column string) (*time.Time, error) {
	raw := r.cell(column)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(config.DateFormat, raw)
	if err != nil {
		return nil, parseCellError("malformed date", column, raw, r.line, err)
	}
	return &t, nil
}

// amount parses an optional money cell. Thousands separators are stripped
// before parsing; empty reads as the invalid NullDecimal.
func (r rowReader) amount(column string) (decimal.NullDecimal, error) {
	raw := r.cell(column)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, parseCellError("malformed amount", column, raw, r.line, err)
	}
	return decimal.NewNullDecimal(value), nil
}

// integer parses an optional integer cell, empty reading as zero.
func (r rowReader) integer(column string) (int64, error) {
	raw := r.cell(column)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return 0, parseCellError("malformed integer", column, raw, r.line, err)
	}
	return value, nil
}

func parseCellError(message, column, value string, line int, cause error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("%s %q in column %s (row %d)", message, value, column, line),
		cause).
		WithContext("row", line).
		WithContext("column", column).
		WithContext("value", value)
}

func parseShipments(rows [][]string) ([]domain.Shipment, error) {
	if len(rows) == 0 {
		return []domain.Shipment{}, nil
	}
	index := headerIndex(rows[0])

	shipments := make([]domain.Shipment, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r := rowReader{index: index, row: row, line: i + 2}
		if r.empty() {
			continue
		}

		eta, err := r.date(colETA)
		if err != nil {
			return nil, err
		}
		planned, err := r.amount(colCostPlanned)
		if err != nil {
			return nil, err
		}
		actual, err := r.amount(colCostActual)
		if err != nil {
			return nil, err
		}

		shipments = append(shipments, domain.Shipment{
			ContainerID:     r.cell(colContainerID),
			OriginPort:      r.cell(colOriginPort),
			DestinationPort: r.cell(colDestinationPort),
			ETA:             eta,
			Status:          r.cell(colStatus),
			CostPlanned:     planned,
			CostActual:      actual,
		})
	}
	return shipments, nil
}

func parseInvoices(rows [][]string) ([]domain.Invoice, error) {
	if len(rows) == 0 {
		return []domain.Invoice{}, nil
	}
	index := headerIndex(rows[0])

	invoices := make([]domain.Invoice, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r := rowReader{index: index, row: row, line: i + 2}
		if r.empty() {
			continue
		}

		amount, err := r.amount(colAmount)
		if err != nil {
			return nil, err
		}
		dueDate, err := r.date(colDueDate)
		if err != nil {
			return nil, err
		}
		paymentDate, err := r.date(colPaymentDate)
		if err != nil {
			return nil, err
		}

		invoices = append(invoices, domain.Invoice{
			InvoiceID:   r.cell(colInvoiceID),
			ContainerID: r.cell(colContainerID),
			Amount:      amount,
			PaidStatus:  r.cell(colPaidStatus),
			DueDate:     dueDate,
			PaymentDate: paymentDate,
		})
	}
	return invoices, nil
}

func parseWarehouse(rows [][]string) ([]domain.WarehouseEntry, error) {
	if len(rows) == 0 {
		return []domain.WarehouseEntry{}, nil
	}
	index := headerIndex(rows[0])

	entries := make([]domain.WarehouseEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r := rowReader{index: index, row: row, line: i + 2}
		if r.empty() {
			continue
		}

		quantity, err := r.integer(colQuantity)
		if err != nil {
			return nil, err
		}
		inbound, err := r.date(colInboundDate)
		if err != nil {
			return nil, err
		}
		outbound, err := r.date(colOutboundDate)
		if err != nil {
			return nil, err
		}

		entries = append(entries, domain.WarehouseEntry{
			Location:     r.cell(colLocation),
			Quantity:     quantity,
			InboundDate:  inbound,
			OutboundDate: outbound,
		})
	}
	return entries, nil
}

func parseClients(rows [][]string) ([]domain.ClientRecord, error) {
	if len(rows) == 0 {
		return []domain.ClientRecord{}, nil
	}
	index := headerIndex(rows[0])

	clients := make([]domain.ClientRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r := rowReader{index: index, row: row, line: i + 2}
		if r.empty() {
			continue
		}

		pickup, err := r.date(colPickupDate)
		if err != nil {
			return nil, err
		}

		clients = append(clients, domain.ClientRecord{
			ClientID:        r.cell(colClientID),
			Name:            r.cell(colName),
			DeliveryAddress: r.cell(colDeliveryAddress),
			Status:          r.cell(colStatus),
			PickupDate:      pickup,
		})
	}
	return clients, nil
}
