// Command toyrobot serves a single toy robot on a 6x6 board.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, WebSocket
//     state stream, Prometheus metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from TOYROBOT_* environment variables (optionally via .env);
// flags override them. An ngrok tunnel can be enabled for external access
// during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/toy-robot/api"
	"github.com/wricardo/toy-robot/config"
	"github.com/wricardo/toy-robot/game/service"
	"github.com/wricardo/toy-robot/game/store"
	"github.com/wricardo/toy-robot/transport/mcp"
	"github.com/wricardo/toy-robot/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = api.AppName
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(&cfg).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host (TOYROBOT_HOST)"},
		&cli.StringFlag{Name: "port", Usage: "HTTP server port (TOYROBOT_PORT)"},
		&cli.StringFlag{Name: "store", Usage: "State store driver: sqlite or memory (TOYROBOT_STORE_DRIVER)"},
		&cli.StringFlag{Name: "dsn", Usage: "SQLite data source (TOYROBOT_SQLITE_DSN)"},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging (TOYROBOT_DEBUG)"},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (NGROK_ENABLED)"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (NGROK_AUTHTOKEN)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (NGROK_DOMAIN)"},
	}
}

// newApp builds the command tree around cfg; flags are applied before any
// mode runs.
func newApp(cfg *config.Config) *cli.Command {
	serverCmd := &cli.Command{
		Name:    "server",
		Aliases: []string{"http"},
		Usage:   "Run HTTP server with API, WebSocket, metrics and MCP endpoint",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServerMode(ctx, cmd, cfg)
		},
	}

	return &cli.Command{
		Name:    "toyrobot",
		Usage:   AppName,
		Version: Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			serverCmd,
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := applyFlags(cmd, cfg); err != nil {
						return err
					}
					setupLogging(cfg.Debug)

					rt, err := initializeServices(*cfg)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					defer rt.Close()

					return runStdioMCPWithInternalServer(ctx, *cfg, rt)
				},
			},
		},
		Action: serverCmd.Action,
	}
}

func runServerMode(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	setupLogging(cfg.Debug)

	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	rt, err := initializeServices(*cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer rt.Close()

	return runHTTPServer(ctx, *cfg, rt)
}

// applyFlags overrides environment settings with explicitly set flags
func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port, err := strconv.Atoi(cmd.String("port"))
		if err != nil {
			return fmt.Errorf("%w: port %q", config.ErrInvalidConfig, cmd.String("port"))
		}
		cfg.Port = port
	}
	if cmd.IsSet("store") {
		cfg.StoreDriver = cmd.String("store")
	}
	if cmd.IsSet("dsn") {
		cfg.SQLiteDSN = cmd.String("dsn")
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	return cfg.Validate()
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// services holds the wired components shared by both modes
type services struct {
	store    store.Store
	service  service.UnitService
	hub      *websocket.Hub
	registry *prometheus.Registry
}

// Close releases the state store
func (rt *services) Close() {
	if err := rt.store.Close(); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
}

// initializeServices opens the store and wires the hub and metrics into the
// unit service. The hub's event loop is started here.
func initializeServices(cfg config.Config) (*services, error) {
	st, err := store.Open(cfg.StoreDriver, cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	log.Printf("Using %s state store", cfg.StoreDriver)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := websocket.NewHub()
	go hub.Run()

	svc := service.NewUnitService(st,
		service.WithObserver(hub),
		service.WithMetrics(service.NewMetrics(registry)),
	)

	return &services{
		store:    st,
		service:  svc,
		hub:      hub,
		registry: registry,
	}, nil
}

// newHandler mounts the API at root and the MCP proxy at /mcp
func newHandler(rt *services, baseURL string) http.Handler {
	apiServer := api.NewServer(rt.service, rt.hub, api.WithGatherer(rt.registry))
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return mainRouter
}

// mcpHandler serves single JSON-RPC messages over HTTP POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
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

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer serves until ctx is canceled, then shuts down gracefully.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg config.Config, rt *services) error {
	addr := cfg.Addr()
	handler := newHandler(rt, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("Metrics: http://%s/metrics", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg.Ngrok, handler)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Printf("Shutting down...")
	case err = <-serveErr:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Println("Server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is canceled
func runNgrok(ctx context.Context, cfg config.NgrokConfig, handler http.Handler) {
	if cfg.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		log.Printf("Using custom ngrok domain: %s", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// externalAPIAvailable reports whether a server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; otherwise it
// starts an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg config.Config, rt *services) error {
	externalURL := fmt.Sprintf("http://%s", cfg.Addr())
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	if externalAPIAvailable(externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		baseURL = fmt.Sprintf("http://%s", internalAddr)

		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{
			Handler: api.NewServer(rt.service, rt.hub),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
