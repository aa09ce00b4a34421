package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafreight/internal/config"
	"seafreight/internal/shared/testutil"
	"seafreight/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestDatasetFiles(t *testing.T) {
	paths := &config.Paths{
		DataDir:      "/opt/seafreight/data",
		ShipmentsCSV: "/opt/seafreight/data/shipments.csv",
		InvoicesCSV:  "/opt/seafreight/data/invoices.csv",
		WarehouseCSV: "/opt/seafreight/data/warehouse.csv",
		ClientsCSV:   "/opt/seafreight/data/clients.csv",
	}

	t.Run("defaults to the bundled files", func(t *testing.T) {
		files, err := datasetFiles("", paths)
		require.NoError(t, err)

		require.Len(t, files, 4)
		assert.Equal(t, paths.ShipmentsCSV, files[config.CollectionShipments])
		assert.Equal(t, paths.ClientsCSV, files[config.CollectionClients])
	})

	t.Run("explicit directory discovers the canonical names", func(t *testing.T) {
		inDir := t.TempDir()
		_, err := testutil.NewDatasetFixtures(inDir).WriteAll()
		require.NoError(t, err)

		files, err := datasetFiles(inDir, paths)
		require.NoError(t, err)

		require.Len(t, files, 4)
		assert.Equal(t, filepath.Join(inDir, "shipments.csv"), files[config.CollectionShipments])
		assert.Equal(t, filepath.Join(inDir, "invoices.csv"), files[config.CollectionInvoices])
		assert.Equal(t, filepath.Join(inDir, "warehouse.csv"), files[config.CollectionWarehouse])
		assert.Equal(t, filepath.Join(inDir, "clients.csv"), files[config.CollectionClients])
	})

	t.Run("explicit directory without the collections fails", func(t *testing.T) {
		_, err := datasetFiles(t.TempDir(), paths)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing collections")
	})
}

func TestRunEnrichment(t *testing.T) {
	dataDir := t.TempDir()
	_, err := testutil.NewDatasetFixtures(dataDir).WriteAll()
	require.NoError(t, err)

	outDir := t.TempDir()
	paths := &config.Paths{DataDir: dataDir, ExportsDir: outDir}
	files, err := datasetFiles(dataDir, paths)
	require.NoError(t, err)

	t.Run("full run writes the enriched CSV and reports KPIs", func(t *testing.T) {
		opts := enrichOptions{
			outPath:  filepath.Join(outDir, "enriched.csv"),
			seed:     42,
			onTime:   0.75,
			maxDelay: 5,
		}

		summary, err := runEnrichment(context.Background(), testLogger(), paths, files, opts)
		require.NoError(t, err)

		assert.Equal(t, 7, summary.Counts.Shipments)
		assert.Equal(t, 6, summary.Counts.Invoices)
		assert.Equal(t, 4, summary.Counts.Warehouse)
		assert.Equal(t, 4, summary.Counts.Clients)
		assert.Len(t, summary.ContentHash, 64)
		assert.Equal(t, 7, summary.KPIs.TotalShipments)
		assert.Equal(t, opts.outPath, summary.OutPath)

		content, err := os.ReadFile(opts.outPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Container_ID")
		assert.Contains(t, string(content), "CNT-0001")
		// Header plus one line per shipment.
		assert.GreaterOrEqual(t, strings.Count(string(content), "\n"), 8)
	})

	t.Run("identical inputs share a content hash", func(t *testing.T) {
		first, err := runEnrichment(context.Background(), testLogger(), paths, files, enrichOptions{
			outPath: filepath.Join(outDir, "first.csv"), seed: 42, onTime: 0.75, maxDelay: 5,
		})
		require.NoError(t, err)

		second, err := runEnrichment(context.Background(), testLogger(), paths, files, enrichOptions{
			outPath: filepath.Join(outDir, "second.csv"), seed: 42, onTime: 0.75, maxDelay: 5,
		})
		require.NoError(t, err)

		assert.Equal(t, first.ContentHash, second.ContentHash)
	})

	t.Run("missing input files abort the run", func(t *testing.T) {
		emptyDir := t.TempDir()
		missing := map[string]string{
			config.CollectionShipments: filepath.Join(emptyDir, config.ShipmentsFileName),
			config.CollectionInvoices:  filepath.Join(emptyDir, config.InvoicesFileName),
			config.CollectionWarehouse: filepath.Join(emptyDir, config.WarehouseFileName),
			config.CollectionClients:   filepath.Join(emptyDir, config.ClientsFileName),
		}

		_, err := runEnrichment(context.Background(), testLogger(), paths, missing, enrichOptions{
			outPath: filepath.Join(outDir, "never.csv"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load dataset")
		assert.ErrorIs(t, err, fs.ErrNotExist)

		_, statErr := os.Stat(filepath.Join(outDir, "never.csv"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestPrintSummary(t *testing.T) {
	summary := &enrichSummary{
		Counts:      domain.DatasetCounts{Shipments: 7, Invoices: 6, Warehouse: 4, Clients: 4},
		ContentHash: strings.Repeat("ab", 32),
		KPIs: domain.KpiSnapshot{
			TotalShipments:    7,
			DelayedPct:        28.57,
			CostVariance:      decimal.New(455, 0),
			VariancePct:       3.04,
			PaidRate:          33.33,
			OutstandingAmount: decimal.New(7680, 0),
			OnHand:            285,
			SLAPct:            50,
		},
		OutPath: "/tmp/exports/enriched.csv",
		Elapsed: 125 * time.Millisecond,
	}

	var buf strings.Builder
	printSummary(&buf, summary)
	out := buf.String()

	assert.Contains(t, out, "7 shipments, 6 invoices, 4 warehouse, 4 clients")
	assert.Contains(t, out, "abababababab")
	assert.Contains(t, out, "28.57% of shipments")
	assert.Contains(t, out, "455.00 (3.04% over plan)")
	assert.Contains(t, out, "33.33%, outstanding 7680.00")
	assert.Contains(t, out, "285 units, SLA 50.00%")
	assert.Contains(t, out, "/tmp/exports/enriched.csv")
}
