package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"seafreight/internal/infrastructure"
	"seafreight/pkg/contracts/domain"
	"seafreight/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to them.
// The dashboard protocol is one-way: the server pushes dataset_reloaded
// events after an upload swaps the snapshot, everything else travels over
// the HTTP API. Clients that fall behind are disconnected rather than
// buffered without bound.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound frames to fan out
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	// metrics is optional; a nil hub still works, it just reports nothing.
	metrics *infrastructure.Metrics

	totalConnections int64
	messagesSent     int64
	droppedClients   int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger, metrics *infrastructure.Metrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's goroutines
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
	go h.reportStats()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}

			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			if h.metrics != nil {
				h.metrics.ClientConnected()
			}

			h.sendWelcome(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := context.Background()
				if client.traceID != "" {
					ctx = infrastructure.WithTraceID(ctx, client.traceID)
				}

				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))

				if h.metrics != nil {
					h.metrics.ClientDisconnected()
				}
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// sendWelcome pushes the connection acknowledgement to a newly registered
// client. A full send buffer at this point means the client never read a
// single frame; it is logged and the welcome dropped.
func (h *Hub) sendWelcome(ctx context.Context, client *Client) {
	frame := events.Message{
		Type:      events.MessageTypeConnected,
		Data:      events.Connected{Status: "connected", ClientID: client.id},
		Timestamp: time.Now(),
		TraceID:   client.traceID,
	}

	jsonData, err := json.Marshal(frame)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling welcome message",
			slog.String("error", err.Error()))
		return
	}

	select {
	case client.send <- jsonData:
		h.logger.DebugContext(ctx, "Sent welcome message to client",
			slog.String("client_id", client.id))
	default:
		h.logger.WarnContext(ctx, "Failed to send welcome message, client buffer full",
			slog.String("client_id", client.id))
	}
}

// fanOut delivers one frame to every registered client. Clients whose send
// buffer is full are dropped; the write pump has stalled and the next reload
// event supersedes anything still queued.
func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("Broadcasting message to clients",
		slog.Int("client_count", len(clients)),
		slog.Int("message_size", len(message)))

	successCount := 0
	for _, client := range clients {
		select {
		case client.send <- message:
			successCount++
		default:
			h.mu.Lock()
			close(client.send)
			delete(h.clients, client)
			h.droppedClients++
			h.mu.Unlock()

			if h.metrics != nil {
				h.metrics.ClientDisconnected()
			}

			h.logger.Warn("Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	h.mu.Lock()
	h.messagesSent += int64(successCount)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordBroadcast(successCount)
	}

	if successCount < len(clients) {
		h.logger.Warn("Some clients failed to receive broadcast",
			slog.Int("success_count", successCount),
			slog.Int("fail_count", len(clients)-successCount))
	}
}

// BroadcastDatasetReloaded announces the snapshot that just became active so
// connected dashboards refetch their current view.
func (h *Hub) BroadcastDatasetReloaded(info domain.SnapshotInfo) {
	h.BroadcastDatasetReloadedWithTrace(info, "")
}

// BroadcastDatasetReloadedWithTrace carries the upload request's trace ID
// into the broadcast frame so client refetches correlate with the reload.
func (h *Hub) BroadcastDatasetReloadedWithTrace(info domain.SnapshotInfo, traceID string) {
	h.broadcastJSON(events.Message{
		Type:      events.MessageTypeDatasetReloaded,
		Data:      events.NewDatasetReloaded(info),
		Timestamp: time.Now(),
		TraceID:   traceID,
	})

	h.logger.Info("Dataset reload broadcast queued",
		slog.String("snapshot_id", info.ID),
		slog.Int("shipments", info.Rows.Shipments),
		slog.Int("invoices", info.Rows.Invoices),
		slog.Int("warehouse", info.Rows.Warehouse),
		slog.Int("clients", info.Rows.Clients))
}

// broadcastJSON marshals a frame and hands it to the fan-out loop.
func (h *Hub) broadcastJSON(frame events.Message) {
	jsonData, err := json.Marshal(frame)
	if err != nil {
		ctx := context.Background()
		if frame.TraceID != "" {
			ctx = infrastructure.WithTraceID(ctx, frame.TraceID)
		}
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(frame.Type)))
		return
	}

	h.broadcast <- jsonData
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// reportStats periodically logs hub activity.
func (h *Hub) reportStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return

		case <-ticker.C:
			h.mu.RLock()
			activeClients := len(h.clients)
			total := h.totalConnections
			sent := h.messagesSent
			dropped := h.droppedClients
			h.mu.RUnlock()

			h.logger.Info("WebSocket hub stats",
				slog.Int("active_clients", activeClients),
				slog.Int64("total_connections", total),
				slog.Int64("messages_sent", sent),
				slog.Int64("dropped_clients", dropped))
		}
	}
}

// Stats returns current hub counters for the health endpoint.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"dropped_clients":   h.droppedClients,
	}
}
