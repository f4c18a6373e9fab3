package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/navillusj/ASX-Share-Monitor/internal/collector"
	"github.com/navillusj/ASX-Share-Monitor/internal/model"
	"github.com/navillusj/ASX-Share-Monitor/internal/recorder"
	"github.com/navillusj/ASX-Share-Monitor/internal/store"
)

// Fetch trigger labels, recorded with every cycle.
const (
	TriggerStartup  = "startup"
	TriggerTimer    = "timer"
	TriggerManual   = "manual"
	TriggerSettings = "settings"
	TriggerSymbols  = "symbols"
)

// Status states for the user-visible status line.
const (
	StateReady    = "ready"
	StateFetching = "fetching"
	StateOK       = "ok"
	StateError    = "error"
)

// Status is the current user-visible fetch state.
type Status struct {
	State      string    `json:"state"`
	Message    string    `json:"message"`
	LastUpdate time.Time `json:"last_update,omitzero"`
}

var (
	// ErrAlreadyTracked is returned when adding a symbol that is already
	// monitored.
	ErrAlreadyTracked = errors.New("symbol is already being monitored")
	// ErrNotTracked is returned when removing an unknown symbol.
	ErrNotTracked = errors.New("symbol is not being monitored")
)

// batchResult carries one completed fetch batch back to the merge loop.
type batchResult struct {
	gen      uint64
	trigger  string
	rng      string
	snaps    []model.Snapshot
	duration time.Duration
}

// Coordinator owns the tracked-symbol set, the snapshot table, and the
// visibility map. Fetch batches execute on the worker pool; their results
// are merged exclusively by the single run goroutine, so two overlapping
// cycles can never interleave their writes.
type Coordinator struct {
	collector *collector.Collector
	symbols   *store.SymbolStore
	settings  *store.SettingsStore
	rec       recorder.Recorder

	pool    *Pool
	cron    *cron.Cron
	results chan batchResult

	refreshEvery time.Duration
	retain       time.Duration

	mu         sync.RWMutex
	snapshots  map[string]model.Snapshot
	visibility map[string]bool
	status     Status
	appliedGen uint64

	gen atomic.Uint64

	firstOnce  sync.Once
	firstBatch chan struct{}
}

// Options tunes the coordinator. Zero values get sensible defaults.
type Options struct {
	Workers      int
	RefreshEvery time.Duration
	// Retain bounds how long recorded history is kept before the daily
	// prune job removes it.
	Retain time.Duration
}

// New creates a Coordinator. Start must be called before any refresh runs.
func New(col *collector.Collector, symbols *store.SymbolStore, settings *store.SettingsStore, rec recorder.Recorder, opts Options) *Coordinator {
	if opts.Workers < 1 {
		opts.Workers = 5
	}
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = 30 * time.Second
	}
	if opts.Retain <= 0 {
		opts.Retain = 30 * 24 * time.Hour
	}
	return &Coordinator{
		collector:    col,
		symbols:      symbols,
		settings:     settings,
		rec:          rec,
		pool:         NewPool(opts.Workers, opts.Workers*2),
		cron:         cron.New(),
		results:      make(chan batchResult, opts.Workers),
		refreshEvery: opts.RefreshEvery,
		retain:       opts.Retain,
		snapshots:    make(map[string]model.Snapshot),
		visibility:   make(map[string]bool),
		status:       Status{State: StateReady, Message: fmt.Sprintf("Ready | Auto-Refresh: %s", opts.RefreshEvery)},
		firstBatch:   make(chan struct{}),
	}
}

// Start launches the workers, the merge loop, and the periodic refresh, then
// requests the initial fetch. It returns immediately.
func (c *Coordinator) Start(ctx context.Context) error {
	c.pool.Start(ctx)
	go c.run(ctx)

	if _, err := c.cron.AddFunc(fmt.Sprintf("@every %s", c.refreshEvery), func() {
		c.RequestRefresh(TriggerTimer)
	}); err != nil {
		return fmt.Errorf("register refresh timer: %w", err)
	}
	if _, err := c.cron.AddFunc("@daily", func() {
		if err := c.rec.PruneBefore(time.Now().Add(-c.retain)); err != nil {
			log.Printf("[ERROR] prune recorder: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("register prune job: %w", err)
	}
	c.cron.Start()
	log.Println("[INFO] refresh coordinator started")

	c.RequestRefresh(TriggerStartup)
	return nil
}

// Stop halts the timer and waits for workers to exit. The context passed to
// Start must be cancelled first or the wait never finishes. In-flight
// batches are abandoned: the merge loop has already stopped consuming
// results, and senders fall through on context cancellation rather than
// touching anything after shutdown.
func (c *Coordinator) Stop() {
	c.cron.Stop()
	c.pool.Wait()
	log.Println("[INFO] refresh coordinator stopped")
}

// run is the merge loop: the only goroutine that applies fetch results.
func (c *Coordinator) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] merge loop stopped")
			return
		case res := <-c.results:
			c.applyBatch(res)
		}
	}
}

// RequestRefresh enqueues a fetch cycle for the full tracked set. Returns
// false when the queue is saturated with pending cycles.
func (c *Coordinator) RequestRefresh(trigger string) bool {
	symbols := c.symbols.Symbols()
	if len(symbols) == 0 {
		c.setStatus(Status{State: StateReady, Message: "No stocks to monitor."})
		return true
	}
	rng := model.LookupTimeRange(c.settings.Get().TimeRange)
	gen := c.gen.Add(1)

	// Set before Submit: a fast batch can merge immediately, and its OK
	// status must not be overwritten by a stale "fetching" line.
	c.setStatus(Status{State: StateFetching, Message: "Fetching data..."})

	ok := c.pool.Submit(func(ctx context.Context) {
		started := time.Now()
		snaps := c.collector.CollectBatch(ctx, symbols, rng)
		select {
		case c.results <- batchResult{
			gen:      gen,
			trigger:  trigger,
			rng:      rng.Label,
			snaps:    snaps,
			duration: time.Since(started),
		}:
		case <-ctx.Done():
			// Shutdown mid-cycle: drop the result silently.
		}
	})
	if !ok {
		log.Printf("[WARN] refresh queue full, dropping %s trigger", trigger)
		return false
	}

	log.Printf("[INFO] refresh requested (gen=%d, trigger=%s, range=%s, symbols=%d)",
		gen, trigger, rng.Label, len(symbols))
	return true
}

// applyBatch merges one batch into the snapshot table. Batches carry the
// generation of the refresh request that produced them; anything older than
// the newest applied generation is discarded so overlapping cycles resolve
// deterministically instead of racing to last-write-wins.
func (c *Coordinator) applyBatch(res batchResult) {
	c.mu.Lock()
	if res.gen < c.appliedGen {
		c.mu.Unlock()
		log.Printf("[WARN] discarding stale fetch result (gen=%d, applied=%d)", res.gen, c.appliedGen)
		return
	}
	c.appliedGen = res.gen

	// A batch can predate a RemoveSymbol that landed while it was in
	// flight; merging such a symbol would resurrect it until restart.
	kept := res.snaps[:0]
	var failed int
	for _, snap := range res.snaps {
		if !c.symbols.Contains(snap.Symbol) {
			continue
		}
		kept = append(kept, snap)
		c.snapshots[snap.Symbol] = snap
		if _, seen := c.visibility[snap.Symbol]; !seen {
			c.visibility[snap.Symbol] = true
		}
		if snap.Errored() {
			failed++
		}
	}
	res.snaps = kept

	now := time.Now()
	if failed == len(res.snaps) && failed > 0 {
		c.status = Status{State: StateError, Message: "All symbol fetches failed.", LastUpdate: now}
	} else if failed > 0 {
		c.status = Status{
			State:      StateOK,
			Message:    fmt.Sprintf("Data loaded with %d error(s) | Last update: %s", failed, now.Format("15:04:05")),
			LastUpdate: now,
		}
	} else {
		c.status = Status{
			State:      StateOK,
			Message:    fmt.Sprintf("Data loaded successfully | Last update: %s", now.Format("15:04:05")),
			LastUpdate: now,
		}
	}
	c.mu.Unlock()

	log.Printf("[INFO] merged fetch batch (gen=%d, symbols=%d, errors=%d, took=%s)",
		res.gen, len(res.snaps), failed, res.duration.Round(time.Millisecond))

	if err := c.rec.RecordCycle(&recorder.CycleEvent{
		Generation: res.gen,
		Trigger:    res.trigger,
		Range:      res.rng,
		Symbols:    len(res.snaps),
		Errors:     failed,
		Duration:   res.duration,
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	if err := c.rec.RecordSnapshots(res.snaps); err != nil {
		log.Printf("[ERROR] record snapshots: %v", err)
	}

	c.firstOnce.Do(func() { close(c.firstBatch) })
}

// WaitFirstBatch blocks until the initial fetch has been merged or ctx ends.
func (c *Coordinator) WaitFirstBatch(ctx context.Context) error {
	select {
	case <-c.firstBatch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddSymbol normalizes and adds a ticker, persists the set, and triggers a
// refresh for the newcomer.
func (c *Coordinator) AddSymbol(raw string) (string, error) {
	sym, added, err := c.symbols.Add(raw)
	if err != nil {
		return "", err
	}
	if !added {
		return sym, ErrAlreadyTracked
	}

	c.mu.Lock()
	c.visibility[sym] = true
	c.mu.Unlock()

	log.Printf("[INFO] added symbol %s", sym)
	c.RequestRefresh(TriggerSymbols)
	return sym, nil
}

// RemoveSymbol drops a ticker from the tracked set, its snapshot, and its
// visibility entry, persisting immediately.
func (c *Coordinator) RemoveSymbol(raw string) error {
	sym := model.NormalizeSymbol(raw)
	removed, err := c.symbols.Remove(sym)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotTracked
	}

	c.mu.Lock()
	delete(c.snapshots, sym)
	delete(c.visibility, sym)
	c.mu.Unlock()

	log.Printf("[INFO] removed symbol %s", sym)
	return nil
}

// ToggleVisibility flips whether a symbol's line appears on the combined
// chart. Returns the new state.
func (c *Coordinator) ToggleVisibility(symbol string) bool {
	sym := model.NormalizeSymbol(symbol)
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.visibility[sym]
	if !ok {
		cur = true
	}
	c.visibility[sym] = !cur
	return !cur
}

// ApplySettings validates, persists, and applies new display settings,
// triggering a refresh when either field changed.
func (c *Coordinator) ApplySettings(next store.Settings) error {
	prev := c.settings.Get()
	if err := c.settings.Set(next); err != nil {
		return err
	}
	if next != prev {
		log.Printf("[INFO] settings changed (range=%s, tz=%s), triggering fetch", next.TimeRange, next.Timezone)
		c.RequestRefresh(TriggerSettings)
	}
	return nil
}

// Settings returns the current display settings.
func (c *Coordinator) Settings() store.Settings { return c.settings.Get() }

// Symbols returns the tracked set, sorted.
func (c *Coordinator) Symbols() []string { return c.symbols.Symbols() }

// Snapshots returns a copy of the snapshot table.
func (c *Coordinator) Snapshots() map[string]model.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]model.Snapshot, len(c.snapshots))
	for k, v := range c.snapshots {
		out[k] = v
	}
	return out
}

// Snapshot returns one symbol's snapshot.
func (c *Coordinator) Snapshot(symbol string) (model.Snapshot, bool) {
	sym := model.NormalizeSymbol(symbol)
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.snapshots[sym]
	return s, ok
}

// Visibility returns a copy of the chart-visibility map. Symbols absent from
// the map default to visible.
func (c *Coordinator) Visibility() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.visibility))
	for k, v := range c.visibility {
		out[k] = v
	}
	return out
}

// Status returns the current status line state.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Coordinator) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}
