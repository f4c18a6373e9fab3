package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/chart"
	"github.com/navillusj/ASX-Share-Monitor/internal/model"
	"github.com/navillusj/ASX-Share-Monitor/internal/monitor"
	"github.com/navillusj/ASX-Share-Monitor/internal/view"
)

const overlayChartID = "overlay"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type tableResponse struct {
	Rows   []view.Row     `json:"rows"`
	Sort   view.TableSort `json:"sort"`
	Status monitor.Status `json:"status"`
}

// handleTable serves the aggregate table in the current sort order. With
// ?format=text it renders the fixed-width text table instead of JSON.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snaps := s.coord.Snapshots()
	vis := s.coord.Visibility()
	sortState := s.sortState()
	rows := view.BuildRows(snaps, vis, sortState)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(view.RenderTable(rows))); err != nil {
			log.Printf("[ERROR] writing table: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{Rows: rows, Sort: sortState, Status: s.coord.Status()})
}

// handleSortClick applies a header click to the persistent sort state.
func (s *Server) handleSortClick(w http.ResponseWriter, r *http.Request) {
	col := r.URL.Query().Get("column")
	if !view.ValidColumn(col) {
		writeError(w, http.StatusBadRequest, "unknown sort column: "+col)
		return
	}
	s.mu.Lock()
	s.tableSort.Click(col)
	sortState := s.tableSort
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, sortState)
}

type symbolsResponse struct {
	Symbols    []string        `json:"symbols"`
	Visibility map[string]bool `json:"visibility"`
}

func (s *Server) handleListSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, symbolsResponse{
		Symbols:    s.coord.Symbols(),
		Visibility: s.coord.Visibility(),
	})
}

type addSymbolRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
	var req addSymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	canonical, err := s.coord.AddSymbol(req.Symbol)
	switch {
	case errors.Is(err, monitor.ErrAlreadyTracked):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"symbol": canonical})
}

func (s *Server) handleRemoveSymbol(w http.ResponseWriter, r *http.Request) {
	sym := model.NormalizeSymbol(r.PathValue("symbol"))
	err := s.coord.RemoveSymbol(sym)
	switch {
	case errors.Is(err, monitor.ErrNotTracked):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.dropHover(sym)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	sym := model.NormalizeSymbol(r.PathValue("symbol"))
	if !slices.Contains(s.coord.Symbols(), sym) {
		writeError(w, http.StatusNotFound, "symbol is not being monitored")
		return
	}
	visible := s.coord.ToggleVisibility(sym)
	writeJSON(w, http.StatusOK, map[string]any{"symbol": sym, "visible": visible})
}

type detailResponse struct {
	Row    view.Row      `json:"row"`
	Series *chart.Series `json:"series,omitempty"`
	Range  string        `json:"range"`
}

// handleDetail serves one symbol's row plus its single-line chart series.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	sym := model.NormalizeSymbol(r.PathValue("symbol"))
	snap, ok := s.coord.Snapshot(sym)
	if !ok {
		writeError(w, http.StatusNotFound, "symbol is not being monitored")
		return
	}
	vis := s.coord.Visibility()
	resp := detailResponse{Row: view.BuildRow(snap, vis[sym]), Range: snap.Range}
	if series, ok := chart.BuildSingle(snap); ok {
		resp.Series = &series
	}
	writeJSON(w, http.StatusOK, resp)
}

type chartResponse struct {
	Series   []chart.Series `json:"series"`
	Range    string         `json:"range"`
	Timezone string         `json:"timezone"`
	XMin     time.Time      `json:"x_min,omitzero"`
	XMax     time.Time      `json:"x_max,omitzero"`
}

// handleChart serves the visible-symbol overlay chart: one series per visible
// symbol with clean data, plus the padded x-axis extent.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snaps := s.coord.Snapshots()
	vis := s.coord.Visibility()
	settings := s.coord.Settings()

	series := chart.BuildOverlay(snaps, vis)
	resp := chartResponse{Series: series, Range: settings.TimeRange, Timezone: settings.Timezone}
	if min, max, ok := chart.XRange(series); ok {
		resp.XMin, resp.XMax = min, max
	}
	writeJSON(w, http.StatusOK, resp)
}

type hoverResponse struct {
	Hover   chart.Hover `json:"hover"`
	Tooltip string      `json:"tooltip,omitempty"`
}

// handleHover runs a hit-test against the overlay chart (or one symbol's
// chart with ?symbol=) and updates that chart's hover record. Passing
// clear=true deactivates it instead.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	chartID := overlayChartID
	var series []chart.Series
	snaps := s.coord.Snapshots()
	if sym := q.Get("symbol"); sym != "" {
		chartID = model.NormalizeSymbol(sym)
		snap, ok := snaps[chartID]
		if !ok {
			writeError(w, http.StatusNotFound, "symbol is not being monitored")
			return
		}
		if single, ok := chart.BuildSingle(snap); ok {
			series = []chart.Series{single}
		}
	} else {
		series = chart.BuildOverlay(snaps, s.coord.Visibility())
	}

	record := s.hoverRecord(chartID)
	if q.Get("clear") == "true" {
		record.Clear()
		writeJSON(w, http.StatusOK, hoverResponse{Hover: *record})
		return
	}

	at, err := time.Parse(time.RFC3339, q.Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "at must be an RFC 3339 timestamp")
		return
	}
	window := 30 * time.Second
	if raw := q.Get("window"); raw != "" {
		window, err = time.ParseDuration(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid window duration")
			return
		}
	}

	hit, ok := chart.HitTest(series, at, window)
	if !ok {
		record.Clear()
		writeJSON(w, http.StatusOK, hoverResponse{Hover: *record})
		return
	}
	record.Update(hit)

	settings := s.coord.Settings()
	rng := model.LookupTimeRange(settings.TimeRange)
	axis := chart.NewAxis(rng, settings.Timezone)
	tooltip := ""
	if snap, ok := snaps[hit.Label]; ok {
		tooltip = chart.Tooltip(hit, snap, axis, time.Now())
	}
	writeJSON(w, http.StatusOK, hoverResponse{Hover: *record, Tooltip: tooltip})
}

// handleRefresh requests an out-of-band fetch cycle.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.coord.RequestRefresh(monitor.TriggerManual) {
		writeError(w, http.StatusServiceUnavailable, "refresh queue is full")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh requested"})
}

type settingsPayload struct {
	TimeRange string `json:"time_range"`
	Timezone  string `json:"timezone"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cur := s.coord.Settings()
	writeJSON(w, http.StatusOK, settingsPayload{TimeRange: cur.TimeRange, Timezone: cur.Timezone})
}

// handlePutSettings updates the display settings. Fields left empty keep
// their current value; a changed value triggers a refresh cycle.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next := s.coord.Settings()
	if req.TimeRange != "" {
		next.TimeRange = req.TimeRange
	}
	if req.Timezone != "" {
		next.Timezone = req.Timezone
	}
	if err := s.coord.ApplySettings(next); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsPayload{TimeRange: next.TimeRange, Timezone: next.Timezone})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Status())
}
