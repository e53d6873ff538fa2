// server is the Home Assistant MCP server binary. It exposes entity
// query tools and hass:// resources over stdio for MCP clients, over
// HTTP for proxies and dashboards, or as an interactive console.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fredcamaral/gomcp-sdk/protocol"

	"hass-mcp-server/internal/config"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/mcp"
	"hass-mcp-server/internal/repl"
)

const methodOptions = "OPTIONS"

func main() {
	var (
		mode = flag.String("mode", "stdio", "Server mode: stdio, http or repl")
		addr = flag.String("addr", ":9080", "HTTP server address (when mode=http)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(logging.ParseLogLevel(cfg.Logging.Level))
	logging.SetDefaultLogger(logger)

	hassServer, err := mcp.NewHassServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := hassServer.Close(); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "stdio":
		if err := hassServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP server failed", "error", err.Error())
		}

	case "http":
		if err := runHTTPServer(ctx, cfg, hassServer, *addr, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("HTTP server failed", "error", err.Error())
		}

	case "repl":
		console := repl.NewREPL(hassServer.Resolver(), logger)
		if err := console.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Console failed", "error", err.Error())
		}

	default:
		log.Fatalf("Invalid mode: %s. Use 'stdio', 'http' or 'repl'", *mode)
	}
}

// runHTTPServer serves MCP-over-HTTP on /mcp, an SSE stream on /sse,
// and mounts the REST API router for everything else.
func runHTTPServer(ctx context.Context, cfg *config.Config, hassServer *mcp.HassServer, addr string, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", mcpHandler(hassServer, logger))
	mux.HandleFunc("/sse", sseHandler(hassServer, logger))
	if cfg.API.Enabled {
		mux.Handle("/", hassServer.APIRouter(cfg).Handler())
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err.Error())
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// mcpHandler serves MCP JSON-RPC over HTTP for proxy clients.
func mcpHandler(hassServer *mcp.HassServer, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, "+methodOptions)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Content-Type", "application/json")

		if r.Method == methodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req protocol.JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		resp := hassServer.HandleRequest(r.Context(), &req)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.ErrorContext(r.Context(), "Error encoding response", "error", err.Error())
		}
	}
}

// sseHandler accepts JSON-RPC over POST and keeps a heartbeat stream
// open on GET for clients that prefer server-sent events.
func sseHandler(hassServer *mcp.HassServer, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == methodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, "+methodOptions)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Cache-Control")
			w.WriteHeader(http.StatusOK)
			return
		}

		if r.Method == http.MethodPost {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Content-Type", "application/json")

			var req protocol.JSONRPCRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON-RPC request", http.StatusBadRequest)
				return
			}
			resp := hassServer.HandleRequest(r.Context(), &req)
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				logger.ErrorContext(r.Context(), "Error encoding SSE response", "error", err.Error())
			}
			return
		}

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		_, _ = fmt.Fprintf(w, "data: {\"type\":\"connected\",\"server\":\"hass-mcp\",\"protocols\":[\"json-rpc\",\"sse\"]}\n\n")
		flusher.Flush()

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_, _ = fmt.Fprintf(w, "data: {\"type\":\"heartbeat\",\"timestamp\":\"%s\"}\n\n", time.Now().UTC().Format(time.RFC3339))
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}
