// Package validation checks dataset input files and export destinations
// before the pipeline touches them, so a bad path fails with a clear message
// instead of a half-finished run.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"seafreight/internal/config"
)

// FileValidator validates the files a batch run reads and writes.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator. A nil logger falls back to
// slog.Default.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "validation")),
	}
}

// ValidateDatasetFile checks that path names a readable dataset file: it
// must exist, be a regular file, carry a supported extension (.csv or
// .xlsx), be non-empty and stay under the batch size cap.
func (v *FileValidator) ValidateDatasetFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("dataset file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("stat dataset file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("dataset path %s is a directory, expected a file", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".xlsx":
	default:
		return fmt.Errorf("dataset file %s has unsupported extension %q (want .csv or .xlsx)", path, ext)
	}

	if info.Size() == 0 {
		return fmt.Errorf("dataset file %s is empty", path)
	}
	if info.Size() > config.MaxDatasetFileBytes {
		return fmt.Errorf("dataset file %s is %d bytes, over the %d byte limit",
			path, info.Size(), int64(config.MaxDatasetFileBytes))
	}

	return nil
}

// ValidateDatasetFiles validates every collection file of a load. All
// failures are reported at once, in collection-name order, so one fix-run
// cycle surfaces every bad input.
func (v *FileValidator) ValidateDatasetFiles(files map[string]string) error {
	collections := make([]string, 0, len(files))
	for collection := range files {
		collections = append(collections, collection)
	}
	sort.Strings(collections)

	var problems []string
	for _, collection := range collections {
		if err := v.ValidateDatasetFile(files[collection]); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", collection, err))
			v.logger.Warn("Dataset file failed validation",
				slog.String("collection", collection),
				slog.String("path", files[collection]),
				slog.String("error", err.Error()))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("dataset validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateOutputPath checks that an export destination is writable: the
// parent directory is created if missing, and the path itself must not name
// an existing directory.
func (v *FileValidator) ValidateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory, expected a file", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	return nil
}
