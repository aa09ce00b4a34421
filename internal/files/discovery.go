package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"seafreight/internal/config"
)

// datasetExtensions lists the file formats the loader decodes, in preference
// order: a CSV next to an XLSX of the same collection wins.
var datasetExtensions = []string{".csv", ".xlsx"}

// FileInfo describes one discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery resolves dataset files inside a directory.
type Discovery struct {
	baseDir string
}

// NewDiscovery creates a discovery rooted at baseDir. Relative directories
// passed to its methods resolve against this root.
func NewDiscovery(baseDir string) *Discovery {
	return &Discovery{baseDir: baseDir}
}

// resolve turns a possibly relative directory into an absolute one.
func (d *Discovery) resolve(dir string) string {
	if dir == "" {
		return d.baseDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.baseDir, dir)
}

// FindDatasetFiles locates the four collection files under dir and returns
// their paths keyed by collection name. Each collection resolves to its
// canonical base name (shipments, invoices, warehouse, clients) with the
// first extension present on disk; a collection with no file at all fails
// the lookup, naming every missing collection.
func (d *Discovery) FindDatasetFiles(dir string) (map[string]string, error) {
	fullDir := d.resolve(dir)

	info, err := os.Stat(fullDir)
	if err != nil {
		return nil, fmt.Errorf("dataset directory %s: %w", fullDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %s is not a directory", fullDir)
	}

	found := make(map[string]string, 4)
	var missing []string
	for _, collection := range []string{
		config.CollectionShipments,
		config.CollectionInvoices,
		config.CollectionWarehouse,
		config.CollectionClients,
	} {
		path, ok := firstExisting(fullDir, collection)
		if !ok {
			missing = append(missing, collection)
			continue
		}
		found[collection] = path
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset directory %s is missing collections: %s",
			fullDir, strings.Join(missing, ", "))
	}
	return found, nil
}

// firstExisting returns the collection file with the preferred extension.
func firstExisting(dir, collection string) (string, bool) {
	for _, ext := range datasetExtensions {
		path := filepath.Join(dir, collection+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ListFiles returns the regular files under dir carrying one of the given
// extensions (all files when none are given), newest first.
func (d *Discovery) ListFiles(dir string, extensions ...string) ([]FileInfo, error) {
	fullDir := d.resolve(dir)

	entries, err := os.ReadDir(fullDir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", fullDir, err)
	}

	var result []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if len(extensions) > 0 && !hasExtension(entry.Name(), extensions) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result = append(result, FileInfo{
			Path:    filepath.Join(fullDir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ModTime.After(result[j].ModTime)
	})
	return result, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range extensions {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}
