package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafreight/internal/config"
	"seafreight/internal/infrastructure"
	"seafreight/internal/services"
	"seafreight/internal/shared/testutil"
)

// setupTestEnvironment points the config at a test port, keeps log noise
// down and plants the bundled dataset fixtures next to the test binary,
// which is where GetPaths resolves the data directory from.
func setupTestEnvironment(t *testing.T, port int) {
	t.Helper()

	t.Setenv("SEAFREIGHT_SERVER_PORT", fmt.Sprintf("%d", port))
	t.Setenv("SEAFREIGHT_LOGGING_LEVEL", "error")
	t.Setenv("SEAFREIGHT_LOGGING_FILE_PATH", filepath.Join(t.TempDir(), "app.log"))

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	dataDir := filepath.Join(filepath.Dir(exe), "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	_, err = testutil.NewDatasetFixtures(dataDir).WriteAll()
	require.NoError(t, err)
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestApplication(t *testing.T, port int) *Application {
	t.Helper()

	setupTestEnvironment(t, port)

	app, err := NewApplication()
	require.NoError(t, err)
	require.NotNil(t, app)
	t.Cleanup(app.Hub.Stop)

	return app
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func(t *testing.T)
		wantErr       bool
		errorContains string
	}{
		{
			name:     "successful initialization",
			setupEnv: func(t *testing.T) {},
		},
		{
			name: "invalid port fails validation",
			setupEnv: func(t *testing.T) {
				t.Setenv("SEAFREIGHT_SERVER_PORT", "-1")
			},
			wantErr:       true,
			errorContains: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t, 8097)
			tt.setupEnv(t)

			app, err := NewApplication()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, app)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, app)
			defer app.Hub.Stop()

			assert.NotNil(t, app.Config)
			assert.NotNil(t, app.Paths)
			assert.NotNil(t, app.Logger)
			assert.NotNil(t, app.Router)
			assert.NotNil(t, app.Server)
			assert.NotNil(t, app.Hub)
			assert.NotNil(t, app.Metrics)
			require.NotNil(t, app.Services)
			assert.NotNil(t, app.Services.Dashboard)
			assert.NotNil(t, app.Services.Health)
		})
	}
}

func TestApplication_setupRouter(t *testing.T) {
	app := newTestApplication(t, 8097)

	server := httptest.NewServer(app.Router)
	defer server.Close()

	t.Run("health endpoint answers before any dataset load", func(t *testing.T) {
		resp, err := http.Get(server.URL + config.HealthEndpoint)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"status":"ok"`)
		assert.Contains(t, string(body), `"version":"`+Version+`"`)
	})

	t.Run("readiness flips once the bundled dataset is loaded", func(t *testing.T) {
		resp, err := http.Get(server.URL + config.HealthEndpoint + "/ready")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		_, err = app.Services.Dashboard.LoadBundled(context.Background())
		require.NoError(t, err)

		resp, err = http.Get(server.URL + config.HealthEndpoint + "/ready")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("dashboard routes are mounted", func(t *testing.T) {
		_, err := app.Services.Dashboard.LoadBundled(context.Background())
		require.NoError(t, err)

		resp, err := http.Get(server.URL + config.DashboardEndpoint + "/kpis")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"total_shipments":7`)
	})

	t.Run("dataset and export routes are mounted", func(t *testing.T) {
		_, err := app.Services.Dashboard.LoadBundled(context.Background())
		require.NoError(t, err)

		resp, err := http.Get(server.URL + config.DatasetEndpoint + "/snapshot")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(server.URL + config.ExportEndpoint + "/shipments.csv")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	})

	t.Run("api responses carry the middleware headers", func(t *testing.T) {
		resp, err := http.Get(server.URL + config.VersionEndpoint)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("request id from the caller is echoed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+config.VersionEndpoint, nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-ID", "corr-1234")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "corr-1234", resp.Header.Get("X-Request-ID"))
	})

	t.Run("metrics endpoint is exposed", func(t *testing.T) {
		resp, err := http.Get(server.URL + config.MetricsEndpoint)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "websocket_active_connections")
	})

	t.Run("plain GET on the websocket endpoint is rejected", func(t *testing.T) {
		resp, err := http.Get(server.URL + config.WebSocketEndpoint)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown api route returns 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/nope")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestApplication_handleWebSocket(t *testing.T) {
	app := newTestApplication(t, 8097)

	server := httptest.NewServer(http.HandlerFunc(app.handleWebSocket))
	defer server.Close()

	t.Run("upgrade succeeds and the hub sends a welcome frame", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, frame, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(frame, &msg))
		assert.Equal(t, "connected", msg.Type)
	})

	t.Run("disallowed origin is refused outside development", func(t *testing.T) {
		cfg := *app.Config
		cfg.Logging.Development = false
		strict := &Application{
			Config: &cfg,
			Paths:  app.Paths,
			Logger: createTestLogger(),
			Hub:    app.Hub,
		}

		strictServer := httptest.NewServer(http.HandlerFunc(strict.handleWebSocket))
		defer strictServer.Close()

		wsURL := "ws" + strings.TrimPrefix(strictServer.URL, "http")
		header := http.Header{"Origin": []string{"http://evil.example"}}

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.Error(t, err)
		if conn != nil {
			conn.Close()
		}
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestApplication_corsConfig(t *testing.T) {
	app := newTestApplication(t, 8097)

	t.Run("own origin is always allowed", func(t *testing.T) {
		cors := app.corsConfig()
		assert.Contains(t, cors.AllowedOrigins,
			fmt.Sprintf("http://localhost:%d", app.Config.Server.Port))
	})

	t.Run("development adds the dev server origins", func(t *testing.T) {
		app.Config.Logging.Development = true
		cors := app.corsConfig()
		assert.Contains(t, cors.AllowedOrigins, "http://localhost:3000")
		assert.Contains(t, cors.AllowedOrigins, "http://127.0.0.1:3000")
	})

	t.Run("configured origins are appended when CORS is enabled", func(t *testing.T) {
		app.Config.Security.EnableCORS = true
		app.Config.Security.AllowedOrigins = []string{"https://dashboard.example.com"}
		cors := app.corsConfig()
		assert.Contains(t, cors.AllowedOrigins, "https://dashboard.example.com")
	})

	t.Run("export filenames stay readable from scripts", func(t *testing.T) {
		cors := app.corsConfig()
		assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
		assert.Contains(t, cors.ExposedHeaders, "X-Request-ID")
		assert.True(t, cors.AllowCredentials)
	})
}

func TestApplication_developmentMode(t *testing.T) {
	app := newTestApplication(t, 8097)

	t.Run("config flag wins", func(t *testing.T) {
		app.Config.Logging.Development = true
		assert.True(t, app.developmentMode())
	})

	t.Run("GO_ENV covers ad-hoc runs", func(t *testing.T) {
		app.Config.Logging.Development = false
		t.Setenv("GO_ENV", "development")
		assert.True(t, app.developmentMode())
	})

	t.Run("production by default", func(t *testing.T) {
		app.Config.Logging.Development = false
		t.Setenv("GO_ENV", "")
		assert.False(t, app.developmentMode())
	})
}

func TestApplication_createServer(t *testing.T) {
	app := newTestApplication(t, 8097)

	assert.Equal(t, ":8097", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, app.Config.Server.IdleTimeout, app.Server.IdleTimeout)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)

	// The default write timeout is shorter than an export is allowed to
	// take, so the server budget stretches to the export budget.
	assert.Equal(t, config.ExportTimeout, app.Server.WriteTimeout)
}

func TestApplication_loadStartupDataset(t *testing.T) {
	t.Run("bundled fixtures load on startup", func(t *testing.T) {
		app := newTestApplication(t, 8097)

		app.loadStartupDataset(context.Background())

		info, err := app.Services.Dashboard.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, 7, info.Rows.Shipments)
		assert.Equal(t, 6, info.Rows.Invoices)
		assert.Equal(t, 4, info.Rows.Warehouse)
		assert.Equal(t, 4, info.Rows.Clients)
	})

	t.Run("missing bundled files leave the snapshot not ready", func(t *testing.T) {
		setupTestEnvironment(t, 8097)

		cfg, err := config.Load()
		require.NoError(t, err)

		missing := t.TempDir()
		app := &Application{
			Config: cfg,
			Paths: &config.Paths{
				DataDir:      missing,
				ShipmentsCSV: filepath.Join(missing, "shipments.csv"),
				InvoicesCSV:  filepath.Join(missing, "invoices.csv"),
				WarehouseCSV: filepath.Join(missing, "warehouse.csv"),
				ClientsCSV:   filepath.Join(missing, "clients.csv"),
			},
			Logger:  createTestLogger(),
			Metrics: infrastructure.NewMetrics(),
		}
		require.NoError(t, app.initializeServices())
		defer app.Hub.Stop()

		app.loadStartupDataset(context.Background())

		_, err = app.Services.Dashboard.Snapshot()
		assert.ErrorIs(t, err, services.ErrSnapshotNotReady)
	})
}

func TestApplication_mountStaticAssets(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	webDir := filepath.Join(filepath.Dir(exe), "web")
	require.NoError(t, os.MkdirAll(webDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(webDir, "index.html"),
		[]byte("<html><body>freight dashboard</body></html>"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(webDir, "styles.css"),
		[]byte("body { margin: 0 }"), 0o644))

	app := newTestApplication(t, 8097)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	t.Run("assets are served from the web directory", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/styles.css")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "margin")
	})

	t.Run("root serves the dashboard index", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "freight dashboard")
	})

	t.Run("api routes win over the catch-all", func(t *testing.T) {
		resp, err := http.Get(server.URL + config.VersionEndpoint)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), Version)
	})
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, 8098)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	waitForServer(t, app.Config.Server.Port)

	t.Run("startup load makes the server ready", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d%s/ready",
			app.Config.Server.Port, config.HealthEndpoint))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("graceful stop drains the listener", func(t *testing.T) {
		require.NoError(t, app.Stop(context.Background()))

		_, err := http.Get(fmt.Sprintf("http://localhost:%d%s",
			app.Config.Server.Port, config.HealthEndpoint))
		assert.Error(t, err)
	})
}

func TestApplication_Run(t *testing.T) {
	app := newTestApplication(t, 8099)

	runErr := make(chan error, 1)
	go func() {
		runErr <- app.Run()
	}()

	waitForServer(t, app.Config.Server.Port)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not shut down after SIGTERM")
	}
}

func TestGenerateBuildID(t *testing.T) {
	assert.Len(t, BuildID, 12)
	for _, r := range BuildID {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

// waitForServer polls the health endpoint until the listener answers.
func waitForServer(t *testing.T, port int) {
	t.Helper()

	url := fmt.Sprintf("http://localhost:%d%s", port, config.HealthEndpoint)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server on port %d did not come up", port)
}
