package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPaths tests the GetPaths function with various scenarios
func TestGetPaths(t *testing.T) {
	t.Run("basic path resolution", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)
		require.NotNil(t, paths)

		// Verify all paths are absolute
		assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.DataDir), "DataDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.ExportsDir), "ExportsDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.WebDir), "WebDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.LogsDir), "LogsDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.ShipmentsCSV), "ShipmentsCSV should be absolute")

		// Verify paths are correctly related to executable dir
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "exports"), paths.ExportsDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "web"), paths.WebDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
	})

	t.Run("consistent calls return same paths", func(t *testing.T) {
		paths1, err1 := GetPaths()
		require.NoError(t, err1)

		paths2, err2 := GetPaths()
		require.NoError(t, err2)

		assert.Equal(t, paths1.ExecutableDir, paths2.ExecutableDir)
		assert.Equal(t, paths1.DataDir, paths2.DataDir)
		assert.Equal(t, paths1.ShipmentsCSV, paths2.ShipmentsCSV)
	})

	t.Run("nested directory structure", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(paths.WebDir, "static"), paths.StaticDir)
	})

	t.Run("bundled dataset files", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		// All dataset files should live in the data directory
		assert.True(t, strings.HasPrefix(paths.ShipmentsCSV, paths.DataDir))
		assert.True(t, strings.HasPrefix(paths.InvoicesCSV, paths.DataDir))
		assert.True(t, strings.HasPrefix(paths.WarehouseCSV, paths.DataDir))
		assert.True(t, strings.HasPrefix(paths.ClientsCSV, paths.DataDir))

		// Check specific filenames
		assert.Equal(t, "shipments.csv", filepath.Base(paths.ShipmentsCSV))
		assert.Equal(t, "invoices.csv", filepath.Base(paths.InvoicesCSV))
		assert.Equal(t, "warehouse.csv", filepath.Base(paths.WarehouseCSV))
		assert.Equal(t, "clients.csv", filepath.Base(paths.ClientsCSV))
	})
}

// TestEnsureDirectories tests directory creation functionality
func TestEnsureDirectories(t *testing.T) {
	// Create a temporary directory for testing
	tempDir := t.TempDir()

	// Create a mock Paths struct pointing to our temp directory
	paths := &Paths{
		ExecutableDir: tempDir,
		DataDir:       filepath.Join(tempDir, "data"),
		ExportsDir:    filepath.Join(tempDir, "exports"),
		LogsDir:       filepath.Join(tempDir, "logs"),
		WebDir:        filepath.Join(tempDir, "web"),
		StaticDir:     filepath.Join(tempDir, "web", "static"),
	}

	t.Run("creates all directories", func(t *testing.T) {
		err := paths.EnsureDirectories()
		require.NoError(t, err)

		// Verify all directories exist
		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.ExportsDir)
		assert.DirExists(t, paths.LogsDir)
		assert.DirExists(t, paths.WebDir)
		assert.DirExists(t, paths.StaticDir)
	})

	t.Run("idempotent - can be called multiple times", func(t *testing.T) {
		// First call
		err1 := paths.EnsureDirectories()
		require.NoError(t, err1)

		// Second call should not fail
		err2 := paths.EnsureDirectories()
		require.NoError(t, err2)

		// Directories should still exist
		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.LogsDir)
	})

	t.Run("handles existing directories", func(t *testing.T) {
		// Pre-create some directories
		require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
		require.NoError(t, os.MkdirAll(paths.WebDir, 0755))

		// EnsureDirectories should not fail
		err := paths.EnsureDirectories()
		require.NoError(t, err)

		// All directories should exist
		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.ExportsDir)
		assert.DirExists(t, paths.WebDir)
		assert.DirExists(t, paths.StaticDir)
	})
}

// TestPathHelperMethods tests various path helper methods
func TestPathHelperMethods(t *testing.T) {
	paths := &Paths{
		ExecutableDir: "/app",
		DataDir:       "/app/data",
		ExportsDir:    "/app/exports",
		LogsDir:       "/app/logs",
		WebDir:        "/app/web",
		StaticDir:     "/app/web/static",
		ShipmentsCSV:  "/app/data/shipments.csv",
		InvoicesCSV:   "/app/data/invoices.csv",
		WarehouseCSV:  "/app/data/warehouse.csv",
		ClientsCSV:    "/app/data/clients.csv",
	}

	t.Run("GetRelativePath", func(t *testing.T) {
		path := paths.GetRelativePath("config.yaml")
		assert.Equal(t, filepath.Join("/app", "config.yaml"), path)
	})

	t.Run("GetDatasetPath", func(t *testing.T) {
		path := paths.GetDatasetPath("shipments.csv")
		assert.Equal(t, filepath.Join("/app/data", "shipments.csv"), path)
	})

	t.Run("GetExportPath", func(t *testing.T) {
		path := paths.GetExportPath("shipments_filtered.csv")
		assert.Equal(t, filepath.Join("/app/exports", "shipments_filtered.csv"), path)
	})

	t.Run("GetLogPath", func(t *testing.T) {
		path := paths.GetLogPath("app.log")
		assert.Equal(t, filepath.Join("/app/logs", "app.log"), path)
	})

	t.Run("GetWebFilePath", func(t *testing.T) {
		path := paths.GetWebFilePath("index.html")
		assert.Equal(t, filepath.Join("/app/web", "index.html"), path)
	})

	t.Run("GetStaticFilePath", func(t *testing.T) {
		path := paths.GetStaticFilePath("dashboard.js")
		assert.Equal(t, filepath.Join("/app/web/static", "dashboard.js"), path)
	})

	t.Run("DatasetFiles", func(t *testing.T) {
		files := paths.DatasetFiles()
		require.Len(t, files, 4)
		assert.Equal(t, paths.ShipmentsCSV, files[CollectionShipments])
		assert.Equal(t, paths.InvoicesCSV, files[CollectionInvoices])
		assert.Equal(t, paths.WarehouseCSV, files[CollectionWarehouse])
		assert.Equal(t, paths.ClientsCSV, files[CollectionClients])
	})
}

// TestGetStampedExportPath tests timestamped export path generation
func TestGetStampedExportPath(t *testing.T) {
	paths := &Paths{
		ExportsDir: "/app/exports",
	}

	tests := []struct {
		prefix    string
		extension string
		expected  string
	}{
		{"shipments", "csv", "shipments_20240115_143005.csv"},
		{"dashboard", "xlsx", "dashboard_20240115_143005.xlsx"},
		{"status_breakdown", "png", "status_breakdown_20240115_143005.png"},
	}

	stamp := mustParseTime(t, "2024-01-15T14:30:05")

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			path := paths.GetStampedExportPath(tt.prefix, tt.extension, stamp)
			assert.Equal(t, tt.expected, filepath.Base(path))
			assert.Contains(t, path, "exports")
		})
	}
}

// TestFileExists tests file existence checks
func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("existing file returns true", func(t *testing.T) {
		testFile := filepath.Join(tempDir, "test.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("test"), 0644))

		assert.True(t, FileExists(testFile))
	})

	t.Run("non-existing file returns false", func(t *testing.T) {
		nonExistentFile := filepath.Join(tempDir, "does-not-exist.txt")
		assert.False(t, FileExists(nonExistentFile))
	})

	t.Run("directory returns true", func(t *testing.T) {
		assert.True(t, FileExists(tempDir))
	})
}

// TestValidateDatasetFiles tests dataset file validation functionality
func TestValidateDatasetFiles(t *testing.T) {
	tempDir := t.TempDir()

	paths := &Paths{
		ShipmentsCSV: filepath.Join(tempDir, "shipments.csv"),
		InvoicesCSV:  filepath.Join(tempDir, "invoices.csv"),
		WarehouseCSV: filepath.Join(tempDir, "warehouse.csv"),
		ClientsCSV:   filepath.Join(tempDir, "clients.csv"),
	}

	t.Run("all files missing", func(t *testing.T) {
		err := paths.ValidateDatasetFiles()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Shipments")
		assert.Contains(t, err.Error(), "Invoices")
		assert.Contains(t, err.Error(), "Warehouse")
		assert.Contains(t, err.Error(), "Clients")
	})

	t.Run("some files missing", func(t *testing.T) {
		// Create shipments and invoices only
		require.NoError(t, os.WriteFile(paths.ShipmentsCSV, []byte("Container_ID\n"), 0644))
		require.NoError(t, os.WriteFile(paths.InvoicesCSV, []byte("Invoice_ID\n"), 0644))

		err := paths.ValidateDatasetFiles()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Warehouse")
		assert.Contains(t, err.Error(), "Clients")
		assert.NotContains(t, err.Error(), "Shipments")
		assert.NotContains(t, err.Error(), "Invoices")
	})

	t.Run("all files present", func(t *testing.T) {
		require.NoError(t, os.WriteFile(paths.ShipmentsCSV, []byte("Container_ID\n"), 0644))
		require.NoError(t, os.WriteFile(paths.InvoicesCSV, []byte("Invoice_ID\n"), 0644))
		require.NoError(t, os.WriteFile(paths.WarehouseCSV, []byte("Location\n"), 0644))
		require.NoError(t, os.WriteFile(paths.ClientsCSV, []byte("Client_ID\n"), 0644))

		err := paths.ValidateDatasetFiles()
		assert.NoError(t, err)
	})
}

// TestWindowsPathHandling tests Windows-specific path scenarios
func TestWindowsPathHandling(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("Skipping Windows-specific tests on non-Windows platform")
	}

	t.Run("handles different drive letters", func(t *testing.T) {
		paths := &Paths{
			ExecutableDir: `C:\Program Files\SeaFreight360`,
			DataDir:       `D:\FreightData`,
		}

		// Verify paths can handle different drives
		assert.Equal(t, `C:\Program Files\SeaFreight360`, paths.ExecutableDir)
		assert.Equal(t, `D:\FreightData`, paths.DataDir)
	})

	t.Run("handles UNC paths", func(t *testing.T) {
		paths := &Paths{
			ExecutableDir: `\\server\share\SeaFreight360`,
			DataDir:       `\\server\share\SeaFreight360\data`,
			WebDir:        `\\server\share\SeaFreight360\web`,
		}

		webPath := paths.GetWebFilePath("index.html")
		assert.Contains(t, webPath, `\\server\share\SeaFreight360`)
		assert.Contains(t, webPath, "web")
		assert.Equal(t, "index.html", filepath.Base(webPath))
	})

	t.Run("handles spaces in paths", func(t *testing.T) {
		paths := &Paths{
			ExecutableDir: `C:\Program Files\Sea Freight Dashboard`,
			DataDir:       `C:\Program Files\Sea Freight Dashboard\data`,
			ExportsDir:    `C:\Program Files\Sea Freight Dashboard\exports`,
		}

		exportPath := paths.GetExportPath("shipments.csv")
		assert.Contains(t, exportPath, "Sea Freight Dashboard")
		assert.Contains(t, exportPath, "exports")
		assert.Equal(t, "shipments.csv", filepath.Base(exportPath))
	})
}

// TestPathErrorHandling tests error scenarios
func TestPathErrorHandling(t *testing.T) {
	t.Run("EnsureDirectories with permission errors", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("Permission testing is complex on Windows")
		}

		// Create a directory with no write permissions
		tempDir := t.TempDir()
		readOnlyDir := filepath.Join(tempDir, "readonly")
		require.NoError(t, os.Mkdir(readOnlyDir, 0555))

		paths := &Paths{
			DataDir: filepath.Join(readOnlyDir, "data"),
		}

		err := paths.EnsureDirectories()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create directory")
	})
}

// TestConfigurationIntegration tests integration with Config struct
func TestConfigurationIntegration(t *testing.T) {
	cfg := Default()

	t.Run("GetDataDir uses centralized paths", func(t *testing.T) {
		dataDir := cfg.GetDataDir()
		assert.NotEmpty(t, dataDir)
		assert.True(t, filepath.IsAbs(dataDir))
	})

	t.Run("GetExportsDir uses centralized paths", func(t *testing.T) {
		exportsDir := cfg.GetExportsDir()
		assert.NotEmpty(t, exportsDir)
		assert.True(t, filepath.IsAbs(exportsDir))
	})

	t.Run("GetWebDir uses centralized paths", func(t *testing.T) {
		webDir := cfg.GetWebDir()
		assert.NotEmpty(t, webDir)
		assert.True(t, filepath.IsAbs(webDir))
	})

	t.Run("GetLogsDir uses centralized paths", func(t *testing.T) {
		logsDir := cfg.GetLogsDir()
		assert.NotEmpty(t, logsDir)
		assert.True(t, filepath.IsAbs(logsDir))
	})
}

// TestPathValidation tests path validation in config
func TestPathValidation(t *testing.T) {
	cfg := Default()

	t.Run("ValidatePaths creates directories", func(t *testing.T) {
		err := cfg.ValidatePaths()
		// The error might occur if we don't have permissions, which is OK for tests
		if err != nil {
			assert.Contains(t, err.Error(), "failed to")
		}
	})

	t.Run("resolvePaths updates config", func(t *testing.T) {
		originalExeDir := cfg.Paths.ExecutableDir
		err := cfg.resolvePaths()
		assert.NoError(t, err)

		// After resolution, ExecutableDir should be set
		assert.NotEmpty(t, cfg.Paths.ExecutableDir)
		if originalExeDir == "" {
			assert.NotEqual(t, originalExeDir, cfg.Paths.ExecutableDir)
		}
	})
}

// Helper function to parse a timestamp used in stamped export paths
func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", value)
	require.NoError(t, err)
	return parsed
}

func BenchmarkGetPaths(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := GetPaths()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPathHelpers(b *testing.B) {
	paths := &Paths{
		ExecutableDir: "/app",
		DataDir:       "/app/data",
		ExportsDir:    "/app/exports",
	}

	for i := 0; i < b.N; i++ {
		_ = paths.GetDatasetPath("shipments.csv")
		_ = paths.GetExportPath("shipments.csv")
	}
}
