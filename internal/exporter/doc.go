// Package exporter provides dataset export functionality for SeaFreight360.
//
// This package contains four main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// ShipmentExporter: Exports enriched shipments (source plus derived columns)
// to CSV, streaming to HTTP responses or writing files for the batch tool.
//
// InvoiceExporter: Exports the outstanding-invoice report sorted by due date.
//
// WorkbookExporter and ChartRenderer: Render the full dataset as an XLSX
// workbook (one sheet per collection plus a KPI sheet) and draw the status
// breakdown and route variance charts as PNG images.
//
// Example usage:
//
//	// Stream filtered shipments to an HTTP response
//	shipmentExporter := exporter.NewShipmentExporter(paths)
//	err := shipmentExporter.ExportShipments(w, view.Shipments)
//
//	// Write the outstanding-invoice report to the exports directory
//	invoiceExporter := exporter.NewInvoiceExporter(paths)
//	err = invoiceExporter.ExportOutstandingFile(snapshot.Invoices, "outstanding.csv")
//
//	// Render the status breakdown chart
//	renderer := exporter.NewChartRenderer()
//	err = renderer.RenderStatusBreakdown(w, aggregates.StatusBreakdown)
package exporter
