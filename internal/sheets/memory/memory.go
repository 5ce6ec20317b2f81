package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ports "wealth/internal/sheets"
)

// Store is an in-process alert ledger.
type Store struct {
	mu    sync.Mutex
	items []ports.AlertRecord
}

var (
	_ ports.AlertRecorder = (*Store)(nil)
	_ ports.AlertLister   = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Record stores the alert and returns a synthetic row reference.
func (s *Store) Record(_ context.Context, r ports.AlertRecord) (string, error) {
	if r.BudgetID == "" {
		return "", fmt.Errorf("alert record without budget ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListAlerts returns the records for month in insertion order.
func (s *Store) ListAlerts(_ context.Context, month string) ([]ports.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ports.AlertRecord
	for _, r := range s.items {
		if strings.EqualFold(r.Month, strings.TrimSpace(month)) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len reports how many alerts have been recorded.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
