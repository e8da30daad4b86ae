// Package web serves the side-car's operator API.
package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nfvsec/nmtd/internal/adapters/reporting"
	"github.com/nfvsec/nmtd/internal/adapters/web/handlers"
	"github.com/nfvsec/nmtd/internal/adapters/web/websocket"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/core/services/policy"
	"github.com/nfvsec/nmtd/internal/core/services/risk"
	"github.com/nfvsec/nmtd/internal/core/services/scheduler"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr       string
	APIKeyHash string
	WSManager  *websocket.WSManager

	RiskHandler    *handlers.RiskHandler
	PolicyHandler  *handlers.PolicyHandler
	CatalogHandler *handlers.CatalogHandler
	AuditHandler   *handlers.AuditHandler
	ReportHandler  *handlers.ReportHandler

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(
	addr string,
	apiKeyHash string,
	client ports.CatalogClient,
	sched *scheduler.Scheduler,
	matcher *risk.Matcher,
	gateway *policy.Gateway,
	events ports.EventRepository,
	exporter *reporting.PDFExporter,
) *Server {
	return &Server{
		Addr:       addr,
		APIKeyHash: apiKeyHash,
		WSManager:  websocket.NewWSManager(sched.Snapshot),

		RiskHandler:    handlers.NewRiskHandler(matcher),
		PolicyHandler:  handlers.NewPolicyHandler(gateway),
		CatalogHandler: handlers.NewCatalogHandler(client, sched),
		AuditHandler:   handlers.NewAuditHandler(events),
		ReportHandler:  handlers.NewReportHandler(events, exporter),
	}
}

// Run starts the server and the schedule broadcaster.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)
	instrumentedHandler := otelhttp.NewHandler(handler, "nmtd-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
