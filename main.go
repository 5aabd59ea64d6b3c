// Command gridbattle starts the Grid Battle server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, the session store, the
// countdown tick, debug logging, version output, and optional ngrok
// tunneling for easy external access during development.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/gridbattle/api"
	"github.com/wricardo/mcp-training/gridbattle/game/config"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
	"github.com/wricardo/mcp-training/gridbattle/game/session"
	"github.com/wricardo/mcp-training/gridbattle/transport/mcp"
	"github.com/wricardo/mcp-training/gridbattle/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Battle Server"
)

const (
	secretEnv      = "GRIDBATTLE_SECRET"
	tokenTTL       = 24 * time.Hour
	sessionMaxAge  = 24 * time.Hour
	cleanupEvery   = time.Hour
	databaseName   = "gridbattle.db"
	sessionsSubdir = "sessions"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing match configurations")
	store        = flag.String("store", "file", "Session store: memory, file or sqlite")
	dataDir      = flag.String("data-dir", "data", "Directory for persisted sessions")
	tick         = flag.Duration("tick", time.Second, "Countdown tick interval")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault returns the default configuration directory.
// It first honors the CONFIG_DIR environment variable, then falls back to "configs".
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                        # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -store sqlite          # Persist sessions in data/%s\n", os.Args[0], databaseName)
		fmt.Fprintf(os.Stderr, "  %s -tick 500ms            # Faster countdowns\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090         # Run MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// app holds the long-lived services shared by every mode
type app struct {
	service    service.GameService
	sessions   *session.Manager
	closeStore func() error
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr == nil {
		logger.Info("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logger.Warn("error loading .env file", zap.Error(envErr))
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", mode))

	a, err := initializeServices(logger)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}
	tokens := api.NewTokenIssuer(resolveSecret(logger), tokenTTL)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(a, tokens, logger)

	case "server", "http":
		runHTTPServer(a, tokens, logger)

	default:
		logger.Fatal("unknown mode, use 'server' (default) or 'stdio-mcp'", zap.String("mode", mode))
	}
}

// newLogger returns a development logger in debug mode and a production
// logger otherwise. Both write to stderr, which keeps stdout free for the
// MCP stdio transport.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// resolveSecret returns the token signing secret. Without GRIDBATTLE_SECRET
// a random one is generated, so tokens do not survive a restart.
func resolveSecret(logger *zap.Logger) string {
	if secret := os.Getenv(secretEnv); secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Fatal("failed to generate token secret", zap.Error(err))
	}
	logger.Warn("no token secret configured, player tokens will not survive a restart", zap.String("env", secretEnv))
	return hex.EncodeToString(buf)
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(a *app, tokens *api.TokenIssuer, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	apiServer := api.NewServer(a.service, hub, tokens, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		countdownLoop(ctx, a.service, apiServer, *tick, logger)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, a.sessions, cleanupEvery, logger)
	}()

	addr := fmt.Sprintf("%s:%d", *host, *port)

	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, mainRouter, logger)
		}()
	}

	sig := <-stop
	logger.Info("shutting down", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	a.shutdown(logger)
	logger.Info("server stopped")
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, handler http.Handler, logger *zap.Logger) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("🚀 ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?session=<session_id>"),
		zap.String("mcp", ngrokURL+"/mcp"))

	go func() {
		<-ctx.Done()
		tun.Close()
	}()
	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// initializeServices wires the config manager, the session store and the
// game service, then restores persisted sessions.
func initializeServices(logger *zap.Logger) (*app, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closeStore, err := openStore(*store, *dataDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s session store: %w", *store, err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, logger)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	return &app{
		service:    service.NewGameService(sessionManager, configManager, logger),
		sessions:   sessionManager,
		closeStore: closeStore,
	}, nil
}

// openStore builds the session store named by kind. The memory store
// returns a nil persistence.
func openStore(kind, dir string, configs service.ConfigManager) (session.SessionPersistence, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case "memory":
		return nil, noop, nil
	case "file":
		fp, err := session.NewFilePersistence(filepath.Join(dir, sessionsSubdir), configs)
		if err != nil {
			return nil, nil, err
		}
		return fp, noop, nil
	case "sqlite":
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		sp, err := session.NewSQLitePersistence(filepath.Join(dir, databaseName), configs)
		if err != nil {
			return nil, nil, err
		}
		return sp, sp.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", kind)
	}
}

// shutdown saves every session and closes the store
func (a *app) shutdown(logger *zap.Logger) {
	if err := a.sessions.SaveAllSessions(); err != nil {
		logger.Warn("failed to save sessions", zap.Error(err))
	}
	if err := a.closeStore(); err != nil {
		logger.Warn("failed to close session store", zap.Error(err))
	}
}

// countdownLoop ticks every counting-down match once per interval and
// broadcasts what changed
func countdownLoop(ctx context.Context, svc service.GameService, apiServer *api.Server, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			results, err := svc.TickAll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("countdown tick failed", zap.Error(err))
			}
			if len(results) > 0 {
				logger.Debug("countdown tick", zap.Int("sessions", len(results)))
				apiServer.BroadcastResults(ctx, results)
			}
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(a *app, tokens *api.TokenIssuer, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var baseURL string
	var httpServer *http.Server

	externalURL := "http://localhost:8080"
	logger.Info("checking for external API server", zap.String("url", externalURL))

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		logger.Info("external API server found, using it for MCP", zap.String("url", externalURL))
		baseURL = externalURL
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Fatal("failed to get available port", zap.Error(err))
		}
		internalAddr := listener.Addr().String()
		logger.Info("starting internal HTTP server for MCP stdio", zap.String("addr", internalAddr))

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		apiServer := api.NewServer(a.service, hub, tokens, logger)
		go countdownLoop(ctx, a.service, apiServer, *tick, logger)
		go sessionCleanupRoutine(ctx, a.sessions, cleanupEvery, logger)

		httpServer = &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		logger.Error("MCP stdio server error", zap.Error(err))
	}

	cancel()
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}
	a.shutdown(logger)
}
