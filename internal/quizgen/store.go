package quizgen

import (
	"slices"
	"sync"

	"github.com/emandor/learn2play_service/internal/model"
)

// Store holds the most recent successfully generated quiz. Writers replace
// the whole slice; readers always get their own copy.
type Store struct {
	mu    sync.RWMutex
	items []model.QuizItem
}

func NewStore() *Store { return &Store{} }

func (s *Store) Replace(items []model.QuizItem) {
	cp := slices.Clone(items)
	s.mu.Lock()
	s.items = cp
	s.mu.Unlock()
}

func (s *Store) Latest() []model.QuizItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
