package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/chart"
	"github.com/navillusj/ASX-Share-Monitor/internal/monitor"
	"github.com/navillusj/ASX-Share-Monitor/internal/view"
)

// Server exposes the monitor's views over HTTP: the aggregate table, per
// symbol detail, chart series with hover hit-testing, and the mutation
// endpoints (symbols, settings, manual refresh).
type Server struct {
	coord *monitor.Coordinator
	addr  string
	srv   *http.Server

	mu        sync.Mutex
	tableSort view.TableSort
	// One hover record per chart, keyed by chart id ("overlay" or the
	// symbol). Created on first hover, torn down with the symbol.
	hovers map[string]*chart.Hover
}

// NewServer creates the HTTP presentation server.
func NewServer(addr string, coord *monitor.Coordinator) *Server {
	return &Server{
		coord:     coord,
		addr:      addr,
		tableSort: view.DefaultTableSort(),
		hovers:    make(map[string]*chart.Hover),
	}
}

// Start runs the server until it is shut down. Blocks.
func (s *Server) Start() error {
	s.srv = &http.Server{Addr: s.addr, Handler: s.routes()}
	log.Printf("[INFO] http server listening on %s", s.addr)

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /table", s.handleTable)
	mux.HandleFunc("POST /table/sort", s.handleSortClick)

	mux.HandleFunc("GET /symbols", s.handleListSymbols)
	mux.HandleFunc("POST /symbols", s.handleAddSymbol)
	mux.HandleFunc("DELETE /symbols/{symbol}", s.handleRemoveSymbol)
	mux.HandleFunc("GET /symbols/{symbol}", s.handleDetail)
	mux.HandleFunc("POST /symbols/{symbol}/visibility", s.handleToggleVisibility)

	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("GET /chart/hover", s.handleHover)

	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("PUT /settings", s.handlePutSettings)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) sortState() view.TableSort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableSort
}

func (s *Server) hoverRecord(chartID string) *chart.Hover {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hovers[chartID]
	if !ok {
		h = &chart.Hover{}
		s.hovers[chartID] = h
	}
	return h
}

func (s *Server) dropHover(chartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hovers, chartID)
}
