package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/collector"
	"github.com/navillusj/ASX-Share-Monitor/internal/model"
	"github.com/navillusj/ASX-Share-Monitor/internal/monitor"
	"github.com/navillusj/ASX-Share-Monitor/internal/recorder"
	"github.com/navillusj/ASX-Share-Monitor/internal/store"
	"github.com/navillusj/ASX-Share-Monitor/internal/view"
)

var historyStart = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

func minutePoints(closes ...float64) []model.PricePoint {
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Time: historyStart.Add(time.Duration(i) * time.Minute), Close: c}
	}
	return pts
}

func newTestServer(t *testing.T, symbols ...string) (*httptest.Server, *monitor.Coordinator) {
	t.Helper()
	dir := t.TempDir()
	symPath := filepath.Join(dir, "my_stocks.txt")
	if len(symbols) > 0 {
		if err := os.WriteFile(symPath, []byte(strings.Join(symbols, "\n")+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	symStore, err := store.NewSymbolStore(symPath)
	if err != nil {
		t.Fatal(err)
	}
	setStore := store.NewSettingsStore(filepath.Join(dir, "timezone.txt"))
	fetcher := &collector.MockFetcher{
		Quote:   model.LiveQuote{Price: 42, Open: 40},
		History: minutePoints(40, 41, 42),
	}
	coord := monitor.New(collector.NewCollector(fetcher), symStore, setStore, recorder.NewNoopRecorder(), monitor.Options{
		Workers:      2,
		RefreshEvery: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := coord.Start(ctx); err != nil {
		cancel()
		t.Fatal(err)
	}
	// Workers only exit once the context ends, so cancel before Stop or
	// Pool.Wait never returns.
	t.Cleanup(func() {
		cancel()
		coord.Stop()
	})
	waitCtx, waitCancel := context.WithTimeout(ctx, 3*time.Second)
	defer waitCancel()
	if err := coord.WaitFirstBatch(waitCtx); err != nil {
		t.Fatalf("waiting for first batch: %v", err)
	}

	srv := NewServer(":0", coord)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts, coord
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestTableEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "BBB.AX", "AAA.AX")

	resp, err := http.Get(ts.URL + "/table")
	if err != nil {
		t.Fatal(err)
	}
	var table tableResponse
	decodeBody(t, resp, &table)

	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0].Symbol != "AAA.AX" || table.Rows[1].Symbol != "BBB.AX" {
		t.Errorf("default order should be ticker ascending, got %s, %s", table.Rows[0].Symbol, table.Rows[1].Symbol)
	}
	if table.Sort.Column != view.ColTicker || table.Sort.Desc {
		t.Errorf("unexpected default sort state: %+v", table.Sort)
	}
	if table.Status.State != monitor.StateOK {
		t.Errorf("expected ok status, got %+v", table.Status)
	}
}

func TestTableTextFormat(t *testing.T) {
	ts, _ := newTestServer(t, "AAA.AX")

	resp, err := http.Get(ts.URL + "/table?format=text")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %s", ct)
	}
	if !strings.Contains(string(body), "AAA.AX") {
		t.Errorf("text table missing symbol:\n%s", body)
	}
}

func TestSortClick(t *testing.T) {
	ts, _ := newTestServer(t, "AAA.AX")

	resp := doJSON(t, http.MethodPost, ts.URL+"/table/sort?column=price", nil)
	var st view.TableSort
	decodeBody(t, resp, &st)
	if st.Column != view.ColPrice || st.Desc {
		t.Fatalf("first click should sort price ascending, got %+v", st)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/table/sort?column=price", nil)
	decodeBody(t, resp, &st)
	if st.Column != view.ColPrice || !st.Desc {
		t.Fatalf("second click should flip to descending, got %+v", st)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/table/sort?column=bogus", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown column should be rejected, got %d", resp.StatusCode)
	}
}

func TestAddSymbol(t *testing.T) {
	ts, coord := newTestServer(t, "AAA.AX")

	resp := doJSON(t, http.MethodPost, ts.URL+"/symbols", addSymbolRequest{Symbol: "cba"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var added map[string]string
	decodeBody(t, resp, &added)
	if added["symbol"] != "CBA.AX" {
		t.Errorf("expected canonical CBA.AX, got %q", added["symbol"])
	}
	if !coord.Visibility()["CBA.AX"] {
		t.Error("added symbol should start visible")
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/symbols", addSymbolRequest{Symbol: "CBA.AX"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate add should conflict, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/symbols", addSymbolRequest{Symbol: "   "})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank symbol should be rejected, got %d", resp.StatusCode)
	}
}

func TestRemoveSymbol(t *testing.T) {
	ts, coord := newTestServer(t, "AAA.AX", "BBB.AX")

	resp := doJSON(t, http.MethodDelete, ts.URL+"/symbols/BBB.AX", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if _, ok := coord.Snapshot("BBB.AX"); ok {
		t.Error("removed symbol still has a snapshot")
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/symbols/BBB.AX", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("removing unknown symbol should 404, got %d", resp.StatusCode)
	}
}

func TestToggleVisibility(t *testing.T) {
	ts, _ := newTestServer(t, "AAA.AX")

	resp := doJSON(t, http.MethodPost, ts.URL+"/symbols/AAA.AX/visibility", nil)
	var out map[string]any
	decodeBody(t, resp, &out)
	if out["visible"] != false {
		t.Errorf("first toggle should hide, got %v", out["visible"])
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/symbols/ZZZ.AX/visibility", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("toggling unknown symbol should 404, got %d", resp.StatusCode)
	}
}

func TestDetailEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "AAA.AX")

	resp, err := http.Get(ts.URL + "/symbols/AAA.AX")
	if err != nil {
		t.Fatal(err)
	}
	var detail detailResponse
	decodeBody(t, resp, &detail)
	if detail.Row.Symbol != "AAA.AX" {
		t.Errorf("unexpected row symbol %q", detail.Row.Symbol)
	}
	if detail.Series == nil || len(detail.Series.Points) != 3 {
		t.Errorf("expected 3-point series, got %+v", detail.Series)
	}

	resp, err = http.Get(ts.URL + "/symbols/NOPE.AX")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown symbol detail should 404, got %d", resp.StatusCode)
	}
}

func TestChartEndpoint(t *testing.T) {
	ts, coord := newTestServer(t, "AAA.AX", "BBB.AX")
	coord.ToggleVisibility("BBB.AX")

	resp, err := http.Get(ts.URL + "/chart")
	if err != nil {
		t.Fatal(err)
	}
	var out chartResponse
	decodeBody(t, resp, &out)

	if len(out.Series) != 1 || out.Series[0].Label != "AAA.AX" {
		t.Fatalf("hidden symbols must be excluded, got %+v", out.Series)
	}
	if out.Range != model.DefaultTimeRange {
		t.Errorf("unexpected range %q", out.Range)
	}
	if !out.XMin.Before(out.Series[0].Points[0].Time) {
		t.Error("x-range should be padded beyond the first sample")
	}
}

func TestHoverEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "AAA.AX")

	at := historyStart.Add(time.Minute).Format(time.RFC3339)
	resp, err := http.Get(ts.URL + "/chart/hover?at=" + at + "&window=30s")
	if err != nil {
		t.Fatal(err)
	}
	var out hoverResponse
	decodeBody(t, resp, &out)

	if !out.Hover.Active || out.Hover.Label != "AAA.AX" {
		t.Fatalf("expected active hover on AAA.AX, got %+v", out.Hover)
	}
	if out.Hover.Point.Price != 41 {
		t.Errorf("expected hit on the 10:01 sample, got %+v", out.Hover.Point)
	}
	if !strings.Contains(out.Tooltip, "AAA.AX") {
		t.Errorf("tooltip missing symbol:\n%s", out.Tooltip)
	}

	resp, err = http.Get(ts.URL + "/chart/hover?clear=true")
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &out)
	if out.Hover.Active {
		t.Errorf("clear should deactivate hover, got %+v", out.Hover)
	}

	resp, err = http.Get(ts.URL + "/chart/hover?at=not-a-time")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad timestamp should be rejected, got %d", resp.StatusCode)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	ts, coord := newTestServer(t, "AAA.AX")

	resp, err := http.Get(ts.URL + "/settings")
	if err != nil {
		t.Fatal(err)
	}
	var cur settingsPayload
	decodeBody(t, resp, &cur)
	if cur.TimeRange != model.DefaultTimeRange || cur.Timezone != model.DefaultTimezone {
		t.Fatalf("unexpected defaults: %+v", cur)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/settings", settingsPayload{TimeRange: "7 Days"})
	decodeBody(t, resp, &cur)
	if cur.TimeRange != "7 Days" {
		t.Errorf("time range not applied: %+v", cur)
	}
	if got := coord.Settings(); got.TimeRange != "7 Days" || got.Timezone != model.DefaultTimezone {
		t.Errorf("partial update clobbered settings: %+v", got)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/settings", settingsPayload{Timezone: "Mars/Olympus"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid timezone should be rejected, got %d", resp.StatusCode)
	}
}

func TestRefreshAndStatus(t *testing.T) {
	ts, _ := newTestServer(t, "AAA.AX")

	resp := doJSON(t, http.MethodPost, ts.URL+"/refresh", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	var st monitor.Status
	decodeBody(t, resp, &st)
	if st.State == "" {
		t.Error("status state should never be empty")
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health check failed with %d", resp.StatusCode)
	}
}
