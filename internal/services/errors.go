package services

import "errors"

// Sentinel errors the HTTP layer maps to status codes via errors.Is.
var (
	// ErrSnapshotNotReady means no dataset has been loaded yet. Handlers
	// answer 503 so clients retry after the bundled load finishes.
	ErrSnapshotNotReady = errors.New("no dataset loaded")

	// ErrNoData means the current selection produced nothing to serve, for
	// endpoints that cannot render an empty result (chart images).
	ErrNoData = errors.New("no data for the current selection")

	// ErrInvalidInput covers malformed filter or upload parameters that get
	// past request validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWebSocketUpgrade is returned when the connection upgrade fails.
	ErrWebSocketUpgrade = errors.New("websocket upgrade failed")
)
