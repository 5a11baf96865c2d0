package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"roomlink-be/internal/model"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/repository/memory"
	"roomlink-be/internal/repository/unitofwork"
)

// ISuggestionService matches chat text against the keyword-hint table.
// A hint is advisory enrichment: lookup failures degrade to "no hint" and
// must never fail the chat broadcast.
type ISuggestionService interface {
	Lookup(ctx context.Context, session *model.Session, text string) string
}

type suggestionService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.SuggestionCache
	logger     logger.ILogger

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// Built-in fallback triggers, consulted when no table entry matches.
var fallbackTaskbar = regexp.MustCompile(`\btaskbar\b`)

const fallbackTaskbarTip = "Tip: Win+T to focus taskbar."

func NewSuggestionService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ISuggestionService {
	return &suggestionService{
		uowFactory: uowFactory,
		cache:      memory.NewSuggestionCache(30 * time.Second),
		logger:     log,
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// Lookup returns the first matching hint for text, or "".
// First-match-wins over a fixed-order table keeps this deterministic and
// cheap; keywords only fire as whole words so "run" does not hit "running".
func (s *suggestionService) Lookup(ctx context.Context, session *model.Session, text string) string {
	if session == nil || !session.IsSuggestionsEnabled {
		return ""
	}

	lowered := strings.ToLower(text)

	entries, err := s.snapshot(ctx)
	if err != nil {
		s.logger.Warn("SuggestionService", "Hint table unavailable, skipping suggestion", map[string]interface{}{"error": err.Error()})
		entries = nil
	}

	for _, entry := range entries {
		if s.pattern(entry.Keyword).MatchString(lowered) {
			return fmt.Sprintf("Tip: %s - %s", entry.Suggestion, entry.Description)
		}
	}

	if fallbackTaskbar.MatchString(lowered) {
		return fallbackTaskbarTip
	}

	return ""
}

// snapshot hands each lookup an immutable slice; table updates show up on the
// next cache refresh without racing in-flight matches.
func (s *suggestionService) snapshot(ctx context.Context) ([]model.CommandSuggestion, error) {
	if entries, ok := s.cache.Get(); ok {
		return entries, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.SuggestionRepository().AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(entries)
	return entries, nil
}

func (s *suggestionService) pattern(keyword string) *regexp.Regexp {
	key := strings.ToLower(keyword)

	s.mu.Lock()
	defer s.mu.Unlock()
	if re, ok := s.patterns[key]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\b`)
	s.patterns[key] = re
	return re
}
