package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// DefaultSymbols seeds the watchlist when no symbols file exists yet.
var DefaultSymbols = []string{"BHP.AX", "PL8.AX"}

// SymbolStore owns the persisted tracked-symbol set. The set is kept sorted,
// deduplicated, and uppercased, and the file is rewritten completely after
// every mutation.
type SymbolStore struct {
	mu       sync.Mutex
	filePath string
	symbols  []string
}

// NewSymbolStore loads the symbol list from filePath, seeding defaults when
// the file does not exist.
func NewSymbolStore(filePath string) (*SymbolStore, error) {
	s := &SymbolStore{filePath: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read symbols: %w", err)
		}
		s.symbols = append([]string(nil), DefaultSymbols...)
		return s, nil
	}
	s.symbols = model.NormalizeSymbolSet(strings.Split(string(data), "\n"))
	return s, nil
}

// Symbols returns a copy of the tracked set.
func (s *SymbolStore) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...)
}

// Contains reports whether symbol is already tracked. The input is
// normalized first.
func (s *SymbolStore) Contains(symbol string) bool {
	sym := model.NormalizeSymbol(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(sym) >= 0
}

// Add normalizes and inserts a symbol, persisting immediately. Returns the
// canonical form and whether the set changed.
func (s *SymbolStore) Add(symbol string) (string, bool, error) {
	sym := model.NormalizeSymbol(symbol)
	if sym == "" {
		return "", false, fmt.Errorf("empty symbol")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(sym) >= 0 {
		return sym, false, nil
	}
	s.symbols = model.NormalizeSymbolSet(append(s.symbols, sym))
	if err := s.save(); err != nil {
		return sym, true, err
	}
	return sym, true, nil
}

// Remove deletes a symbol and persists. Returns whether the set changed.
func (s *SymbolStore) Remove(symbol string) (bool, error) {
	sym := model.NormalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(sym)
	if i < 0 {
		return false, nil
	}
	s.symbols = append(s.symbols[:i], s.symbols[i+1:]...)
	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// Save rewrites the symbols file. Called on shutdown so the persisted set
// always matches the in-memory set even if a mutation-time save failed.
func (s *SymbolStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *SymbolStore) index(sym string) int {
	for i, t := range s.symbols {
		if t == sym {
			return i
		}
	}
	return -1
}

func (s *SymbolStore) save() error {
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create symbols dir: %w", err)
		}
	}
	data := strings.Join(s.symbols, "\n")
	if err := os.WriteFile(s.filePath, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write symbols: %w", err)
	}
	return nil
}
