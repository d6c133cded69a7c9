package redis

import (
	"context"
	"testing"
	"time"

	"giveaway-settlement/internal/features/quiz/models"
	"giveaway-settlement/internal/features/quiz/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (repository.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisQuizRepository(client), mr
}

func TestAnswerKey_ReadOnce(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	key := &models.AnswerKey{QuizID: "q1", Answers: []models.Answer{{QuestionID: "a", Answer: "Water"}}}
	require.NoError(t, store.Put(ctx, key, time.Minute))
	assert.True(t, mr.Exists("quiz:q1"))

	got, err := store.Take(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, key, got)
	assert.False(t, mr.Exists("quiz:q1"))

	_, err = store.Take(ctx, "q1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAnswerKey_Expires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.AnswerKey{QuizID: "q2"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Take(ctx, "q2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAnswerKey_Corrupt(t *testing.T) {
	store, mr := newStore(t)
	require.NoError(t, mr.Set("quiz:q3", "{not json"))

	_, err := store.Take(context.Background(), "q3")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, mr.Exists("quiz:q3"))
}

func TestSession(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	s := &models.Session{GiveawayID: "g1", QuizID: "q1", AccountNumber: "0123456789"}
	require.NoError(t, store.SaveSession(ctx, "sess", s, time.Minute))

	got, err := store.TakeSession(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = store.TakeSession(ctx, "sess")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
