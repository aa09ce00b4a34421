// Package ingest turns raw dataset files into domain collections. It reads
// the four freight files (shipments, invoices, warehouse, clients) from CSV
// or XLSX, parses dates and amounts eagerly, and reports the SHA-256 content
// hash that keys enrichment memoization. Records keep their file order;
// downstream derivations depend on it.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"seafreight/internal/config"
	apperrors "seafreight/internal/errors"
	"seafreight/pkg/contracts/domain"
)

// utf8BOM prefixes CSV files saved by Excel; it must not leak into the first
// header name.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// collectionOrder fixes the byte order of the content hash so identical
// inputs always produce the same hash regardless of upload field order.
var collectionOrder = []string{
	config.CollectionShipments,
	config.CollectionInvoices,
	config.CollectionWarehouse,
	config.CollectionClients,
}

// Source is one raw dataset input: the collection it fills, the original
// file name (its extension selects the decoder) and the file content.
type Source struct {
	Collection string
	Filename   string
	Data       []byte
}

// LoadResult carries a parsed dataset together with the SHA-256 content hash
// over the raw bytes of all four inputs. Two loads of identical files share
// one hash and therefore one enrichment run.
type LoadResult struct {
	Dataset     domain.Dataset
	ContentHash string
}

// Loader parses dataset files into domain collections.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "ingest")),
	}
}

// Load parses the four collections concurrently. Sources must cover each
// collection exactly once; the transport layer fills gaps with bundled
// defaults before calling. The first parse failure aborts the load.
func (l *Loader) Load(ctx context.Context, sources []Source) (*LoadResult, error) {
	ordered, err := orderSources(sources)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &LoadResult{ContentHash: contentHash(ordered)}

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range ordered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := decodeTable(src.Filename, src.Data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", src.Collection, err)
			}
			switch src.Collection {
			case config.CollectionShipments:
				result.Dataset.Shipments, err = parseShipments(rows)
			case config.CollectionInvoices:
				result.Dataset.Invoices, err = parseInvoices(rows)
			case config.CollectionWarehouse:
				result.Dataset.Warehouse, err = parseWarehouse(rows)
			case config.CollectionClients:
				result.Dataset.Clients, err = parseClients(rows)
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", src.Collection, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := result.Dataset.Counts()
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("shipments", counts.Shipments),
		slog.Int("invoices", counts.Invoices),
		slog.Int("warehouse", counts.Warehouse),
		slog.Int("clients", counts.Clients),
		slog.String("content_hash", result.ContentHash[:12]),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// LoadFromFiles reads dataset files from disk and parses them. The map keys
// are collection names, typically config.Paths.DatasetFiles() for the
// bundled defaults.
func (l *Loader) LoadFromFiles(ctx context.Context, files map[string]string) (*LoadResult, error) {
	sources := make([]Source, 0, len(files))
	for collection, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewStorageError(
				fmt.Sprintf("read %s file", collection), err).
				WithContext("path", path)
		}
		sources = append(sources, Source{
			Collection: collection,
			Filename:   filepath.Base(path),
			Data:       data,
		})
	}
	return l.Load(ctx, sources)
}

// orderSources validates that each collection appears exactly once and
// returns the sources in canonical collection order.
func orderSources(sources []Source) ([]Source, error) {
	byName := make(map[string]Source, len(sources))
	for _, src := range sources {
		switch src.Collection {
		case config.CollectionShipments, config.CollectionInvoices,
			config.CollectionWarehouse, config.CollectionClients:
		default:
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("unknown collection %q", src.Collection))
		}
		if _, dup := byName[src.Collection]; dup {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("duplicate collection %q", src.Collection))
		}
		byName[src.Collection] = src
	}

	ordered := make([]Source, 0, len(collectionOrder))
	for _, name := range collectionOrder {
		src, ok := byName[name]
		if !ok {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("missing collection %q", name))
		}
		ordered = append(ordered, src)
	}
	return ordered, nil
}

// contentHash computes the SHA-256 over the raw bytes of all inputs in
// canonical order. Collection names separate the segments so moving bytes
// between files cannot collide.
func contentHash(ordered []Source) string {
	h := sha256.New()
	for _, src := range ordered {
		h.Write([]byte(src.Collection))
		h.Write([]byte{0})
		h.Write(src.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// decodeTable turns a raw file into rows. The file extension picks the
// decoder; a missing extension is treated as CSV.
func decodeTable(filename string, data []byte) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case "", ".csv":
		return decodeCSV(data)
	case ".xlsx":
		return decodeXLSX(data)
	default:
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("unsupported file format %q", ext), nil)
	}
}

func decodeCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	// Rows may carry fewer or more cells than the header; the row reader
	// treats out-of-range cells as empty.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed CSV", err)
	}
	return rows, nil
}

func decodeXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewParsingError("malformed XLSX workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}

	// First sheet only; the header contract matches the CSV files.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("read sheet %q", sheets[0]), err)
	}
	return rows, nil
}
