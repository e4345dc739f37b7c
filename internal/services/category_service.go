package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"wealthflow/internal/advisor"
	"wealthflow/internal/cache"
	"wealthflow/internal/core"
)

// ErrSuggestionBusy is returned when the form already has a suggestion in flight.
var ErrSuggestionBusy = errors.New("category suggestion already in progress")

type CategoryAdvisor interface {
	SuggestCategory(ctx context.Context, description string) string
	Enabled() bool
}

type Suggestion struct {
	Category string `json:"category"`
	// Suggested is false when the input does not qualify for a suggestion.
	Suggested bool `json:"suggested"`
	Cached    bool `json:"cached"`
}

// CategoryService suggests categories for expense descriptions. Each form
// has at most one request in flight; overlapping requests are dropped.
type CategoryService struct {
	advisor CategoryAdvisor
	cache   *cache.LRUCache[string]

	mu   sync.Mutex
	busy map[string]bool
}

func NewCategoryService(a CategoryAdvisor, c *cache.LRUCache[string]) *CategoryService {
	return &CategoryService{advisor: a, cache: c, busy: make(map[string]bool)}
}

func (s *CategoryService) Suggest(ctx context.Context, formID string, txType core.TransactionType, description string) (Suggestion, error) {
	description = strings.TrimSpace(description)
	if txType != core.Expense || description == "" {
		return Suggestion{}, nil
	}

	key := strings.ToLower(description)
	if s.cache != nil {
		if c, ok := s.cache.Get(key); ok {
			return Suggestion{Category: c, Suggested: true, Cached: true}, nil
		}
	}

	if !s.acquire(formID) {
		slog.DebugContext(ctx, "Dropping overlapping category suggestion", "form", formID)
		return Suggestion{}, ErrSuggestionBusy
	}
	defer s.release(formID)

	category := s.advisor.SuggestCategory(ctx, description)
	if s.cache != nil && s.advisor.Enabled() && category != advisor.FallbackCategory {
		s.cache.Set(key, category)
	}
	return Suggestion{Category: category, Suggested: true}, nil
}

// Busy reports whether formID has a request in flight.
func (s *CategoryService) Busy(formID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[formID]
}

func (s *CategoryService) acquire(formID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[formID] {
		return false
	}
	s.busy[formID] = true
	return true
}

func (s *CategoryService) release(formID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, formID)
}
