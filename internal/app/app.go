package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	"seafreight/internal/config"
	apierrors "seafreight/internal/errors"
	"seafreight/internal/infrastructure"
	custommw "seafreight/internal/middleware"
	"seafreight/internal/services"
	transport "seafreight/internal/transport/http"
	ws "seafreight/internal/websocket"
)

const (
	// Version is the application version, overridable at build time with
	// -ldflags "-X seafreight/internal/app.Version=...".
	Version = "1.0.0"

	// AppName is the human-readable application name used in logs.
	AppName = "SeaFreight360"
)

// Build information, stamped at startup when not injected by the build.
var (
	BuildTime = time.Now().Format(time.RFC3339)
	BuildID   = generateBuildID()
)

// generateBuildID derives a short identifier from version and build time so
// log lines and /api/version responses can be matched to a binary.
func generateBuildID() string {
	sum := sha256.Sum256([]byte(Version + "-" + BuildTime))
	return hex.EncodeToString(sum[:])[:12]
}

// Application owns the HTTP server, the WebSocket hub and the service layer.
// Construct it with NewApplication and drive it with Run, or with Start and
// Stop when the caller manages signals itself.
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Router   *chi.Mux
	Server   *http.Server
	Hub      *ws.Hub
	Logger   *slog.Logger
	Metrics  *infrastructure.Metrics
	Services *ServiceContainer
}

// ServiceContainer holds the initialized services for dependency injection
// into handlers and for direct access in tests.
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads configuration, initializes logging, services and the
// router, and returns an application ready to Start.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Starting "+AppName,
		slog.String("version", Version),
		slog.String("build_id", BuildID),
		slog.String("build_time", BuildTime),
		slog.Int("port", cfg.Server.Port))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	paths.LogPathResolution()

	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the WebSocket hub, the dashboard service and the
// health service. The hub doubles as the dashboard's reload notifier.
func (a *Application) initializeServices() error {
	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()
	a.Hub = hub

	dashboard := services.NewDashboardService(a.Logger, a.Config, a.Paths, hub, a.Metrics)
	health := services.NewHealthServiceWithBuildInfo(a.Logger, Version, BuildTime, BuildID, dashboard, hub)

	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Health:    health,
	}
	return nil
}

// setupRouter builds the chi router. RequestID and RealIP run on every
// route, including the WebSocket upgrade; neither wraps the ResponseWriter,
// which keeps the connection hijack available to the upgrader. Everything
// heavier lives in a group that the /ws and /metrics endpoints bypass.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StripSlashes)

	if config.GetFeatureFlag("websocket") {
		r.Get(config.WebSocketEndpoint, a.handleWebSocket)
	}

	// Prometheus scrapes bypass logging and rate limiting.
	if config.GetFeatureFlag("metrics") {
		r.Method(http.MethodGet, config.MetricsEndpoint, a.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.CORS(a.corsConfig()))
		r.Use(custommw.Compress(5))

		if a.Config.Security.RateLimit.Enabled {
			limiter := custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger)
			r.Use(limiter.Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.mountStaticAssets(r)

	a.Router = r
}

// setupAPIRoutes mounts the JSON API under /api. Read endpoints share the
// server read timeout; dataset reloads and exports get longer budgets since
// they parse, enrich or render a full dataset in-request.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := transport.NewHealthHandler(a.Services.Health, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/stats", healthHandler.Stats)
			r.Get("/version", healthHandler.Version)

			dashboardHandler := transport.NewDashboardHandler(a.Services.Dashboard, a.Logger, errorHandler)
			r.Mount("/dashboard", dashboardHandler.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(config.ReloadTimeout, a.Logger))

			datasetHandler := transport.NewDatasetHandler(
				a.Services.Dashboard, a.Paths, a.Logger, errorHandler,
				a.Config.Server.MaxUploadBytes)
			r.Mount("/dataset", datasetHandler.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(config.ExportTimeout, a.Logger))

			exportHandler := transport.NewExportHandler(
				a.Services.Dashboard, a.Paths, a.Metrics, a.Logger, errorHandler)
			r.Mount("/export", exportHandler.Routes())
		})
	})
}

// mountStaticAssets serves the dashboard frontend from the web directory
// when one is present next to the binary. chi routes the more specific /api
// and /ws paths first, so the catch-all only sees asset requests.
func (a *Application) mountStaticAssets(r chi.Router) {
	info, err := os.Stat(a.Paths.WebDir)
	if err != nil || !info.IsDir() {
		a.Logger.Debug("No web directory; static assets disabled",
			slog.String("web_dir", a.Paths.WebDir))
		return
	}

	fileServer := http.FileServer(http.Dir(a.Paths.WebDir))
	r.Handle("/*", fileServer)
	a.Logger.Info("Serving static assets", slog.String("web_dir", a.Paths.WebDir))
}

// corsConfig builds the CORS allowlist: the server's own origin always, the
// dev-server origins in development, and the configured extra origins when
// CORS is enabled.
func (a *Application) corsConfig() custommw.CORSConfig {
	allowed := []string{fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)}

	if a.developmentMode() {
		allowed = append(allowed,
			"http://localhost:3000",
			"http://127.0.0.1:3000")
	}

	if a.Config.Security.EnableCORS {
		allowed = append(allowed, a.Config.Security.AllowedOrigins...)
	}

	return custommw.CORSConfig{
		AllowedOrigins:   allowed,
		AllowCredentials: true,
		// Content-Disposition carries the export filenames; browsers hide it
		// from scripts unless exposed.
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// developmentMode reports whether the server runs with relaxed origin
// checks. The config flag wins; GO_ENV covers ad-hoc local runs.
func (a *Application) developmentMode() bool {
	if a.Config.Logging.Development {
		return true
	}
	return os.Getenv("GO_ENV") == "development"
}

// handleWebSocket upgrades the connection and hands it to the hub. The
// upgrade happens outside the heavy middleware group, so origin checking is
// done here instead of by the CORS middleware.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}
	ctx := infrastructure.WithTraceID(r.Context(), reqID)
	allowedOrigins := a.corsConfig().AllowedOrigins

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no Origin header.
				return true
			}
			if a.developmentMode() {
				return true
			}
			for _, candidate := range allowedOrigins {
				if origin == candidate {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "WebSocket origin rejected",
				slog.String("origin", origin),
				slog.String("remote_addr", r.RemoteAddr))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.ErrorContext(ctx, "WebSocket upgrade failed",
				slog.Int("status", status),
				slog.Any("error", reason))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The Error hook already wrote the handshake response.
		return
	}

	ws.ServeWSWithTrace(a.Hub, conn, reqID)
}

// createServer builds the http.Server. The write timeout is raised to the
// export budget when needed: workbook and chart downloads stream for longer
// than a dashboard read.
func (a *Application) createServer() {
	writeTimeout := a.Config.Server.WriteTimeout
	if writeTimeout < config.ExportTimeout {
		writeTimeout = config.ExportTimeout
	}

	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the HTTP listener and loads the bundled dataset. A listen
// failure cancels the supplied context so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.Info("HTTP server starting",
		slog.String("addr", a.Server.Addr),
		slog.String("dashboard", config.DashboardEndpoint),
		slog.String("dataset", config.DatasetEndpoint),
		slog.String("export", config.ExportEndpoint),
		slog.String("websocket", config.WebSocketEndpoint))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("HTTP server failed", slog.Any("error", err))
			cancel()
		}
	}()

	a.loadStartupDataset(ctx)

	return nil
}

// loadStartupDataset loads the bundled dataset files so the dashboard has
// data before the first upload. Failure is not fatal: every data endpoint
// answers a snapshot-not-ready problem until a reload succeeds.
func (a *Application) loadStartupDataset(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, config.ReloadTimeout)
	defer cancel()

	info, err := a.Services.Dashboard.LoadBundled(loadCtx)
	if err != nil {
		a.Logger.Warn("Bundled dataset load failed; waiting for an upload",
			slog.Any("error", err),
			slog.String("data_dir", a.Paths.DataDir))
		return
	}

	a.Logger.Info("Bundled dataset loaded",
		slog.String("snapshot_id", info.ID),
		slog.Int("shipments", info.Rows.Shipments),
		slog.Int("invoices", info.Rows.Invoices),
		slog.Int("warehouse", info.Rows.Warehouse),
		slog.Int("clients", info.Rows.Clients))
}

// Stop drains in-flight requests within the shutdown timeout, then stops
// the WebSocket hub.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("Server shutdown failed", slog.Any("error", err))
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Hub.Stop()

	a.Logger.Info("Server stopped")
	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	select {
	case sig := <-sigChan:
		a.Logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Warn("Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
