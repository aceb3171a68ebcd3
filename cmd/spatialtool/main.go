package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dhartgo/spatialcore/internal/mcpserver"
)

func main() {
	mcpMode := flag.String("mcp-mode", "stdio", "MCP transport: stdio or http")
	mcpAddr := flag.String("mcp-addr", ":7090", "Listen address for the MCP server when -mcp-mode=http")
	metricsAddr := flag.String("metrics-addr", ":9090", "Listen address for the /metrics and /healthz endpoints")

	flag.Parse()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: *metricsAddr, Handler: mux}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("metrics listening on %s", *metricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server: %v", err)
		}
	}()

	server := mcpserver.NewMCPServer()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		switch *mcpMode {
		case "stdio":
			log.Printf("mcp server listening on stdio")
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				log.Fatalf("mcp server: %v", err)
			}
		case "http":
			log.Printf("mcp server listening on %s", *mcpAddr)
			handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
			if err := http.ListenAndServe(*mcpAddr, handler); err != nil {
				log.Fatalf("mcp http server: %v", err)
			}
		default:
			log.Fatalf("unknown -mcp-mode %q, want stdio or http", *mcpMode)
		}
	}()

	<-shutdownChan
	log.Printf("shutting down")

	cancel()
	if err := metricsSrv.Shutdown(context.Background()); err != nil {
		log.Printf("metrics server shutdown: %v", err)
	}
}
