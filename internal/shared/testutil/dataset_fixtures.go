package testutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Canonical dataset file names used by the loader and the bundled defaults.
const (
	ShipmentsFileName = "shipments.csv"
	InvoicesFileName  = "invoices.csv"
	WarehouseFileName = "warehouse.csv"
	ClientsFileName   = "clients.csv"
)

// DatasetFixtures provides sample dataset files for ingestion and service tests
type DatasetFixtures struct {
	TestDataDir string
}

// NewDatasetFixtures creates a new fixtures manager
func NewDatasetFixtures(testDataDir string) *DatasetFixtures {
	return &DatasetFixtures{
		TestDataDir: testDataDir,
	}
}

// ShipmentsCSV returns a shipments file covering every status class,
// a missing ETA and a row without recorded costs.
func (f *DatasetFixtures) ShipmentsCSV() string {
	return `Container_ID,Origin_Port,Destination_Port,ETA,Status,Cost_Planned,Cost_Actual
CNT-0001,Shanghai,Rotterdam,2025-07-14,Delivered,2400.00,2580.00
CNT-0002,Singapore,Hamburg,2025-07-18,In Transit,1900.00,1900.00
CNT-0003,Shanghai,Rotterdam,2025-07-21,Delayed,2400.00,2720.00
CNT-0004,Busan,Los Angeles,2025-07-12,Pending Customs,3100.00,3150.00
CNT-0005,Ningbo,Felixstowe,,Delivered,2050.00,1995.00
CNT-0006,Singapore,Hamburg,2025-07-25,Delivered,,
CNT-0007,Busan,Los Angeles,2025-08-02,In Transit,3100.00,3060.00
`
}

// InvoicesCSV returns an invoices file with paid, unpaid and overdue rows,
// one missing amount and one missing due date.
func (f *DatasetFixtures) InvoicesCSV() string {
	return `Invoice_ID,Container_ID,Amount,Paid_Status,Due_Date,Payment_Date
INV-1001,CNT-0001,2580.00,Paid,2025-07-20,2025-07-18
INV-1002,CNT-0002,1900.00,Unpaid,2025-08-15,
INV-1003,CNT-0003,2720.00,Overdue,2025-07-01,
INV-1004,CNT-0004,,Unpaid,2025-09-10,
INV-1005,CNT-0005,1995.00,Paid,2025-07-30,2025-07-29
INV-1006,CNT-0007,3060.00,Unpaid,,
`
}

// WarehouseCSV returns warehouse register rows including an open entry
// with no outbound date.
func (f *DatasetFixtures) WarehouseCSV() string {
	return `Location,Quantity,Inbound_Date,Outbound_Date
Rotterdam DC,120,2025-06-28,2025-07-15
Hamburg Hub,85,2025-07-02,
Rotterdam DC,60,2025-07-09,2025-07-22
Felixstowe Yard,200,2025-07-11,
`
}

// ClientsCSV returns client delivery rows across active and on-hold states.
func (f *DatasetFixtures) ClientsCSV() string {
	return `Client_ID,Name,Delivery_Address,Status,Pickup_Date
CL-001,Nordsee Imports,Hafenstrasse 12 Hamburg,Active,2025-07-19
CL-002,Delta Retail BV,Maasvlakte 4 Rotterdam,Active,2025-07-23
CL-003,Albion Traders,Dock Rd 9 Felixstowe,On Hold,
CL-004,Pacific Line LLC,Harbor Blvd 77 Los Angeles,Active,2025-08-01
`
}

// WriteAll materializes the four canonical files under TestDataDir and
// returns their paths keyed by file name.
func (f *DatasetFixtures) WriteAll() (map[string]string, error) {
	files := map[string]string{
		ShipmentsFileName: f.ShipmentsCSV(),
		InvoicesFileName:  f.InvoicesCSV(),
		WarehouseFileName: f.WarehouseCSV(),
		ClientsFileName:   f.ClientsCSV(),
	}

	paths := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(f.TestDataDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write fixture %s: %w", name, err)
		}
		paths[name] = path
	}
	return paths, nil
}

// WriteShipments writes only the shipments fixture and returns its path.
func (f *DatasetFixtures) WriteShipments() (string, error) {
	path := filepath.Join(f.TestDataDir, ShipmentsFileName)
	if err := os.WriteFile(path, []byte(f.ShipmentsCSV()), 0644); err != nil {
		return "", fmt.Errorf("write fixture %s: %w", ShipmentsFileName, err)
	}
	return path, nil
}
