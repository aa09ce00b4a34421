package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	ExportsDir    string
	LogsDir       string

	// Bundled dataset files (defaults loaded when no upload replaces them)
	ShipmentsCSV string
	InvoicesCSV  string
	WarehouseCSV string
	ClientsCSV   string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exe)

	// Log the resolved executable directory for debugging
	if logger := slog.Default(); logger != nil {
		logger.Info("Resolved executable directory",
			slog.String("exe_path", exe),
			slog.String("exe_dir", exeDir))
	}

	// All paths are relative to the executable directory
	// This ensures the application works correctly whether run from dev/ or dist/
	// Directory structure:
	// dist/
	//   ├── data/        (bundled dataset CSVs; uploads replace them in memory only)
	//   │   ├── shipments.csv
	//   │   ├── invoices.csv
	//   │   ├── warehouse.csv
	//   │   └── clients.csv
	//   ├── exports/     (generated CSV/XLSX/PNG artifacts)
	//   ├── logs/        (application logs)
	//   └── web/         (dashboard assets)

	dataDir := filepath.Join(exeDir, "data")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		ExportsDir:    filepath.Join(exeDir, "exports"),
		WebDir:        filepath.Join(exeDir, "web"),
		StaticDir:     filepath.Join(exeDir, "web", "static"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		// Bundled dataset files (data directory)
		ShipmentsCSV: filepath.Join(dataDir, ShipmentsFileName),
		InvoicesCSV:  filepath.Join(dataDir, InvoicesFileName),
		WarehouseCSV: filepath.Join(dataDir, WarehouseFileName),
		ClientsCSV:   filepath.Join(dataDir, ClientsFileName),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.LogsDir,
		p.WebDir,
		p.StaticDir,
	}

	// Log directory creation
	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		// Log successful directory creation
		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetDatasetPath returns the path of a dataset file in the data directory
func (p *Paths) GetDatasetPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// DatasetFiles returns the four bundled dataset file paths keyed by collection name
func (p *Paths) DatasetFiles() map[string]string {
	return map[string]string{
		CollectionShipments: p.ShipmentsCSV,
		CollectionInvoices:  p.InvoicesCSV,
		CollectionWarehouse: p.WarehouseCSV,
		CollectionClients:   p.ClientsCSV,
	}
}

// GetWebFilePath returns the path to a web file
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// GetExportPath returns the path for a generated export artifact
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetStampedExportPath returns a timestamped export path
// (e.g. shipments_20240115_150405.csv)
func (p *Paths) GetStampedExportPath(prefix, extension string, t time.Time) string {
	filename := fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102_150405"), extension)
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("exports", p.ExportsDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("dataset_files",
			slog.String("shipments", p.ShipmentsCSV),
			slog.String("invoices", p.InvoicesCSV),
			slog.String("warehouse", p.WarehouseCSV),
			slog.String("clients", p.ClientsCSV),
		))
}

// ValidateDatasetFiles checks that the bundled dataset files exist and returns
// detailed error information when any are missing
func (p *Paths) ValidateDatasetFiles() error {
	requiredFiles := []struct {
		name string
		path string
	}{
		{"Shipments", p.ShipmentsCSV},
		{"Invoices", p.InvoicesCSV},
		{"Warehouse", p.WarehouseCSV},
		{"Clients", p.ClientsCSV},
	}

	var missingFiles []string
	for _, file := range requiredFiles {
		if !FileExists(file.path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", file.name, file.path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
