package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-settlement/internal/features/quiz/models"
)

// ErrNotFound means the entry expired, was never written, or was already taken.
var ErrNotFound = errors.New("quiz state not found")

// AnswerKeyStore keeps answer keys until they are read once.
type AnswerKeyStore interface {
	Put(ctx context.Context, key *models.AnswerKey, ttl time.Duration) error
	// Take returns the key and removes it in one step.
	Take(ctx context.Context, quizID string) (*models.AnswerKey, error)
}

// SessionStore keeps the join session between issuing and submitting a quiz.
type SessionStore interface {
	SaveSession(ctx context.Context, sessionID string, s *models.Session, ttl time.Duration) error
	TakeSession(ctx context.Context, sessionID string) (*models.Session, error)
}

// Store is the full transient quiz state.
type Store interface {
	AnswerKeyStore
	SessionStore
}
