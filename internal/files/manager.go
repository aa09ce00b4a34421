package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"seafreight/internal/config"
)

// Manager keeps the exports directory tidy. Every batch run writes a new
// stamped artifact; the manager caps how many of them stay on disk.
type Manager struct {
	paths     *config.Paths
	discovery *Discovery
	logger    *slog.Logger
}

// NewManager creates a manager over the application paths. A nil logger
// falls back to slog.Default.
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:     paths,
		discovery: NewDiscovery(paths.ExportsDir),
		logger:    logger.With(slog.String("component", "files")),
	}
}

// ListExports returns the export artifacts on disk, newest first.
func (m *Manager) ListExports() ([]FileInfo, error) {
	return m.discovery.ListFiles("")
}

// PruneExports deletes the oldest export artifacts beyond keep, returning
// how many were removed. A non-positive keep removes nothing; a missing
// exports directory counts as already empty.
func (m *Manager) PruneExports(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	exports, err := m.ListExports()
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(exports) <= keep {
		return 0, nil
	}

	removed := 0
	for _, stale := range exports[keep:] {
		if err := os.Remove(stale.Path); err != nil {
			return removed, fmt.Errorf("remove stale export %s: %w", stale.Path, err)
		}
		removed++
		m.logger.Debug("Removed stale export",
			slog.String("file", stale.Name),
			slog.Int64("size", stale.Size))
	}

	if removed > 0 {
		m.logger.Info("Pruned exports directory",
			slog.Int("removed", removed),
			slog.Int("kept", keep))
	}
	return removed, nil
}
