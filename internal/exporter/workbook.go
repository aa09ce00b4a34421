package exporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "seafreight/internal/errors"
	"seafreight/pkg/contracts/domain"
)

// Workbook sheet names, one per collection plus the KPI summary.
const (
	sheetShipments = "Shipments"
	sheetInvoices  = "Invoices"
	sheetWarehouse = "Warehouse"
	sheetClients   = "Clients"
	sheetKPIs      = "KPIs"
)

// WorkbookExporter renders a dataset as an XLSX workbook with one sheet per
// collection and a KPI summary sheet. Money cells are written as numbers so
// spreadsheet formulas keep working.
type WorkbookExporter struct{}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// ExportWorkbook streams the workbook to the given writer. The KPI sheet
// reflects whatever snapshot the caller passes, typically the current filter
// selection; a nil snapshot leaves the sheet with headers only.
func (e *WorkbookExporter) ExportWorkbook(w io.Writer, dataset *domain.Dataset, kpis *domain.KpiSnapshot) error {
	f, err := e.build(dataset, kpis)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return apperrors.NewExportError("write workbook", err)
	}
	return nil
}

// ExportWorkbookFile writes the workbook to disk, for the batch tool.
func (e *WorkbookExporter) ExportWorkbookFile(dataset *domain.Dataset, kpis *domain.KpiSnapshot, outputPath string) error {
	f, err := e.build(dataset, kpis)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("save workbook to %s", outputPath), err)
	}
	return nil
}

func (e *WorkbookExporter) build(dataset *domain.Dataset, kpis *domain.KpiSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetShipments); err != nil {
		f.Close()
		return nil, apperrors.NewExportError("create workbook sheets", err)
	}
	for _, name := range []string{sheetInvoices, sheetWarehouse, sheetClients, sheetKPIs} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, apperrors.NewExportError("create workbook sheets", err)
		}
	}

	sheets := []struct {
		name    string
		headers []interface{}
		rows    [][]interface{}
	}{
		{sheetShipments, shipmentSheetHeaders(), shipmentSheetRows(dataset.Shipments)},
		{sheetInvoices, invoiceSheetHeaders(), invoiceSheetRows(dataset.Invoices)},
		{sheetWarehouse, warehouseSheetHeaders(), warehouseSheetRows(dataset.Warehouse)},
		{sheetClients, clientSheetHeaders(), clientSheetRows(dataset.Clients)},
		{sheetKPIs, []interface{}{"Metric", "Value"}, kpiSheetRows(kpis)},
	}
	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows); err != nil {
			f.Close()
			return nil, apperrors.NewExportError(fmt.Sprintf("write sheet %s", sheet.name), err)
		}
	}

	idx, err := f.GetSheetIndex(sheetShipments)
	if err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// writeSheet fills one sheet: headers in row 1, data from row 2.
func writeSheet(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// amountCell emits a numeric cell when the value is present and an empty
// cell when it is not, keeping "unknown" distinct from zero in the sheet.
func amountCell(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}

func shipmentSheetHeaders() []interface{} {
	return []interface{}{
		"Container_ID", "Origin_Port", "Destination_Port", "ETA", "Status",
		"Cost_Planned", "Cost_Actual", "Delivered_Date", "On_Time",
		"Cost_Variance", "Variance_%", "Route",
	}
}

func shipmentSheetRows(shipments []domain.Shipment) [][]interface{} {
	sorted := sortShipments(shipments)
	rows := make([][]interface{}, 0, len(sorted))
	for _, s := range sorted {
		rows = append(rows, []interface{}{
			s.ContainerID,
			s.OriginPort,
			s.DestinationPort,
			formatDate(s.ETA),
			s.Status,
			amountCell(s.CostPlanned),
			amountCell(s.CostActual),
			formatDate(s.DeliveredDate),
			formatOptionalBool(s.OnTime),
			amountCell(s.CostVariance),
			amountCell(s.VariancePct),
			s.Route,
		})
	}
	return rows
}

func invoiceSheetHeaders() []interface{} {
	return []interface{}{
		"Invoice_ID", "Container_ID", "Amount", "Paid_Status",
		"Due_Date", "Payment_Date", "Is_Outstanding", "Overdue_Flag",
	}
}

func invoiceSheetRows(invoices []domain.Invoice) [][]interface{} {
	sorted := make([]domain.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].InvoiceID < sorted[j].InvoiceID
	})

	rows := make([][]interface{}, 0, len(sorted))
	for _, inv := range sorted {
		rows = append(rows, []interface{}{
			inv.InvoiceID,
			inv.ContainerID,
			amountCell(inv.Amount),
			inv.PaidStatus,
			formatDate(inv.DueDate),
			formatDate(inv.PaymentDate),
			inv.IsOutstanding,
			inv.OverdueFlag,
		})
	}
	return rows
}

func warehouseSheetHeaders() []interface{} {
	return []interface{}{"Location", "Quantity", "Inbound_Date", "Outbound_Date"}
}

// warehouseSheetRows keeps register order; warehouse rows have no natural key.
func warehouseSheetRows(entries []domain.WarehouseEntry) [][]interface{} {
	rows := make([][]interface{}, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []interface{}{
			entry.Location,
			entry.Quantity,
			formatDate(entry.InboundDate),
			formatDate(entry.OutboundDate),
		})
	}
	return rows
}

func clientSheetHeaders() []interface{} {
	return []interface{}{"Client_ID", "Name", "Delivery_Address", "Status", "Pickup_Date"}
}

func clientSheetRows(clients []domain.ClientRecord) [][]interface{} {
	sorted := make([]domain.ClientRecord, len(clients))
	copy(sorted, clients)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ClientID < sorted[j].ClientID
	})

	rows := make([][]interface{}, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, []interface{}{
			c.ClientID,
			c.Name,
			c.DeliveryAddress,
			c.Status,
			formatDate(c.PickupDate),
		})
	}
	return rows
}

func kpiSheetRows(kpis *domain.KpiSnapshot) [][]interface{} {
	if kpis == nil {
		return nil
	}
	return [][]interface{}{
		{"Total Shipments", kpis.TotalShipments},
		{"Delayed %", kpis.DelayedPct},
		{"Planned Cost", kpis.PlannedCost.InexactFloat64()},
		{"Actual Cost", kpis.ActualCost.InexactFloat64()},
		{"Cost Variance", kpis.CostVariance.InexactFloat64()},
		{"Variance %", kpis.VariancePct},
		{"Paid Rate %", kpis.PaidRate},
		{"Outstanding Amount", kpis.OutstandingAmount.InexactFloat64()},
		{"On Hand", kpis.OnHand},
		{"On-Time SLA %", kpis.SLAPct},
	}
}
