package memory

import (
	"context"
	"sync"
	"time"

	"giveaway-settlement/internal/features/quiz/models"
	"giveaway-settlement/internal/features/quiz/repository"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Store is an in-process quiz store for tests and single-node development.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	keys     map[string]entry[models.AnswerKey]
	sessions map[string]entry[models.Session]
}

func New() *Store {
	return &Store{
		now:      time.Now,
		keys:     make(map[string]entry[models.AnswerKey]),
		sessions: make(map[string]entry[models.Session]),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Put(_ context.Context, key *models.AnswerKey, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.QuizID] = entry[models.AnswerKey]{value: *key, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Take(_ context.Context, quizID string) (*models.AnswerKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.keys[quizID]
	delete(s.keys, quizID)
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, repository.ErrNotFound
	}
	return &e.value, nil
}

func (s *Store) SaveSession(_ context.Context, sessionID string, sess *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = entry[models.Session]{value: *sess, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) TakeSession(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, repository.ErrNotFound
	}
	return &e.value, nil
}

// HasAnswerKey reports whether an unexpired key is stored.
func (s *Store) HasAnswerKey(quizID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.keys[quizID]
	return ok && s.now().Before(e.expiresAt)
}
