package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"giveaway-settlement/internal/features/quiz/models"
	"giveaway-settlement/internal/features/quiz/repository"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefixAnswers = "quiz:"
	keyPrefixSession = "quiz_session:"
)

type redisRepository struct {
	client redis.Cmdable
}

func NewRedisQuizRepository(client redis.Cmdable) repository.Store {
	return &redisRepository{client: client}
}

func makeAnswersKey(quizID string) string {
	return keyPrefixAnswers + quizID
}

func makeSessionKey(sessionID string) string {
	return keyPrefixSession + sessionID
}

func (r *redisRepository) Put(ctx context.Context, key *models.AnswerKey, ttl time.Duration) error {
	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal answer key: %w", err)
	}
	if err := r.client.Set(ctx, makeAnswersKey(key.QuizID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store answer key: %w", err)
	}
	return nil
}

func (r *redisRepository) Take(ctx context.Context, quizID string) (*models.AnswerKey, error) {
	data, err := r.client.GetDel(ctx, makeAnswersKey(quizID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to take answer key: %w", err)
	}

	var key models.AnswerKey
	if err := json.Unmarshal(data, &key); err != nil {
		// a corrupt entry is as good as a missing one; it has been removed already
		return nil, repository.ErrNotFound
	}
	return &key, nil
}

func (r *redisRepository) SaveSession(ctx context.Context, sessionID string, s *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz session: %w", err)
	}
	if err := r.client.Set(ctx, makeSessionKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store quiz session: %w", err)
	}
	return nil
}

func (r *redisRepository) TakeSession(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := r.client.GetDel(ctx, makeSessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to take quiz session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}
