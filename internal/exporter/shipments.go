package exporter

import (
	"fmt"
	"io"
	"sort"

	"seafreight/internal/config"
	"seafreight/pkg/contracts/domain"
)

// ShipmentExporter handles enriched shipment exports
type ShipmentExporter struct {
	csvWriter *CSVWriter
}

// NewShipmentExporter creates a new shipment exporter
func NewShipmentExporter(paths *config.Paths) *ShipmentExporter {
	return &ShipmentExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportShipments streams the given shipments as CSV, source columns first
// and derived columns after, ordered by container for stable output.
func (e *ShipmentExporter) ExportShipments(w io.Writer, shipments []domain.Shipment) error {
	return Encode(w, e.getHeaders(), e.toCSVRecords(shipments))
}

// ExportShipmentsFile writes the shipments to a CSV file under the exports
// directory (or an absolute path).
func (e *ShipmentExporter) ExportShipmentsFile(shipments []domain.Shipment, outputPath string) error {
	return e.csvWriter.WriteSimpleCSV(outputPath, e.getHeaders(), e.toCSVRecords(shipments))
}

// ExportShipmentsStreaming writes shipments through the stream writer. The
// batch tool uses this path where the enriched set is unbounded.
func (e *ShipmentExporter) ExportShipmentsStreaming(shipments []domain.Shipment, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, e.getHeaders())
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for _, s := range sortShipments(shipments) {
		if err := stream.WriteRecord(e.recordToCSVRow(s)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

// sortShipments returns a copy ordered by container id. The caller's slice
// is a live snapshot view and must stay untouched.
func sortShipments(shipments []domain.Shipment) []domain.Shipment {
	sorted := make([]domain.Shipment, len(shipments))
	copy(sorted, shipments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ContainerID < sorted[j].ContainerID
	})
	return sorted
}

func (e *ShipmentExporter) toCSVRecords(shipments []domain.Shipment) [][]string {
	sorted := sortShipments(shipments)
	records := make([][]string, 0, len(sorted))
	for _, s := range sorted {
		records = append(records, e.recordToCSVRow(s))
	}
	return records
}

// getHeaders returns the CSV headers for enriched shipments, matching the
// ingestion column contract plus the derived columns.
func (e *ShipmentExporter) getHeaders() []string {
	return []string{
		"Container_ID", "Origin_Port", "Destination_Port", "ETA", "Status",
		"Cost_Planned", "Cost_Actual", "Delivered_Date", "On_Time",
		"Cost_Variance", "Variance_%", "Route",
	}
}

// recordToCSVRow converts an enriched shipment to a CSV row
func (e *ShipmentExporter) recordToCSVRow(s domain.Shipment) []string {
	return []string{
		s.ContainerID,
		s.OriginPort,
		s.DestinationPort,
		formatDate(s.ETA),
		s.Status,
		formatAmount(s.CostPlanned),
		formatAmount(s.CostActual),
		formatDate(s.DeliveredDate),
		formatOptionalBool(s.OnTime),
		formatAmount(s.CostVariance),
		formatPercent(s.VariancePct),
		s.Route,
	}
}
