package service

import (
	"context"
	stderrors "errors"
	"math/rand"
	"testing"
	"time"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/features/quiz/models"
	"giveaway-settlement/internal/features/quiz/repository/memory"
	"giveaway-settlement/internal/platform/opentdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	questions []opentdb.Question
	err       error
}

func (f *fakeProvider) FetchQuestions(context.Context, int) ([]opentdb.Question, error) {
	return f.questions, f.err
}

type fakeEligibility struct {
	granted []string
	err     error
}

func (f *fakeEligibility) GrantEligibility(_ context.Context, giveawayID, account string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.granted = append(f.granted, giveawayID+"/"+account)
	return true, nil
}

func trivia() []opentdb.Question {
	return []opentdb.Question{
		{Question: "H2O?", CorrectAnswer: "Water", IncorrectAnswers: []string{"Salt", "Sugar", "Sand"}},
		{Question: "Mona Lisa?", CorrectAnswer: "Leonardo", IncorrectAnswers: []string{"Picasso", "Monet", "Dali"}},
		{Question: "Capital?", CorrectAnswer: "Abuja", IncorrectAnswers: []string{"Lagos", "Kano", "Ibadan"}},
		{Question: "2+2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5", "22"}},
	}
}

func newTestService(provider *fakeProvider, elig *fakeEligibility) (QuizService, *memory.Store) {
	store := memory.New()
	svc := NewQuizService(provider, store, elig, rand.New(rand.NewSource(1)), time.Minute, zap.NewNop(), nil)
	return svc, store
}

// answer picks the correct option for the first n questions and a wrong one for the rest.
func answer(quiz *models.Quiz, n int) []models.Answer {
	correct := map[string]bool{"Water": true, "Leonardo": true, "Abuja": true, "4": true}
	var out []models.Answer
	for i, q := range quiz.Questions {
		for _, o := range q.Options {
			if correct[o] == (i < n) {
				out = append(out, models.Answer{QuestionID: q.ID, Answer: o})
				break
			}
		}
	}
	return out
}

func TestIssue(t *testing.T) {
	svc, store := newTestService(&fakeProvider{questions: trivia()}, &fakeEligibility{})

	quiz, err := svc.Issue(context.Background(), "sess", "g1", "0123456789", 9)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 4)
	for _, q := range quiz.Questions {
		assert.Len(t, q.Options, 4)
		assert.NotEmpty(t, q.ID)
	}
	assert.True(t, store.HasAnswerKey(quiz.ID))
}

func TestIssue_ProviderUnavailable(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{err: stderrors.New("boom")}, &fakeEligibility{})

	_, err := svc.Issue(context.Background(), "sess", "g1", "0123456789", 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeQuizUnavailable))
}

func TestSubmit_PassGrantsEligibility(t *testing.T) {
	elig := &fakeEligibility{}
	svc, store := newTestService(&fakeProvider{questions: trivia()}, elig)
	ctx := context.Background()

	quiz, err := svc.Issue(ctx, "sess", "g1", "0123456789", 0)
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "g1", "sess", quiz.ID, answer(quiz, 2))
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 50, res.Percent)
	assert.Equal(t, []string{"g1/0123456789"}, elig.granted)
	assert.False(t, store.HasAnswerKey(quiz.ID))
}

func TestSubmit_FailClearsState(t *testing.T) {
	elig := &fakeEligibility{}
	svc, store := newTestService(&fakeProvider{questions: trivia()}, elig)
	ctx := context.Background()

	quiz, err := svc.Issue(ctx, "sess", "g1", "0123456789", 0)
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "g1", "sess", quiz.ID, answer(quiz, 1))
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 25, res.Percent)
	assert.Empty(t, elig.granted)
	assert.False(t, store.HasAnswerKey(quiz.ID))

	_, err = svc.Submit(ctx, "g1", "sess", quiz.ID, answer(quiz, 4))
	assert.True(t, errors.HasCode(err, errors.ErrCodeQuizExpired), "a scored quiz cannot be replayed")
}

func TestSubmit_ExpiredKey(t *testing.T) {
	elig := &fakeEligibility{}
	svc, store := newTestService(&fakeProvider{questions: trivia()}, elig)
	ctx := context.Background()

	quiz, err := svc.Issue(ctx, "sess", "g1", "0123456789", 0)
	require.NoError(t, err)
	_, err = store.Take(ctx, quiz.ID)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "g1", "sess", quiz.ID, answer(quiz, 4))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeQuizExpired, appErr.Code)
	assert.True(t, appErr.IsValidation())
	assert.Empty(t, elig.granted)

	_, err = store.TakeSession(ctx, "sess")
	assert.Error(t, err, "session is cleared on a validation failure too")
}

func TestSubmit_TamperedQuizID(t *testing.T) {
	elig := &fakeEligibility{}
	svc, store := newTestService(&fakeProvider{questions: trivia()}, elig)
	ctx := context.Background()

	quiz, err := svc.Issue(ctx, "sess", "g1", "0123456789", 0)
	require.NoError(t, err)

	other, err := svc.Issue(ctx, "sess-other", "g1", "0123456789", 0)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "g1", "sess", other.ID, answer(other, 4))
	assert.True(t, errors.HasCode(err, errors.ErrCodeQuizExpired))
	assert.Empty(t, elig.granted)
	assert.False(t, store.HasAnswerKey(quiz.ID))
	assert.False(t, store.HasAnswerKey(other.ID), "the submitted key is cleared too")
}

func TestSubmit_OtherGiveawayRejected(t *testing.T) {
	elig := &fakeEligibility{}
	svc, store := newTestService(&fakeProvider{questions: trivia()}, elig)
	ctx := context.Background()

	quiz, err := svc.Issue(ctx, "sess", "g2", "0123456789", 0)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "g1", "sess", quiz.ID, answer(quiz, 4))
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	assert.Empty(t, elig.granted)
	assert.False(t, store.HasAnswerKey(quiz.ID))
}

func TestSubmit_GrantFailure(t *testing.T) {
	elig := &fakeEligibility{err: errors.NewDatabaseError("mark eligible", stderrors.New("down"))}
	svc, _ := newTestService(&fakeProvider{questions: trivia()}, elig)
	ctx := context.Background()

	quiz, err := svc.Issue(ctx, "sess", "g1", "0123456789", 0)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "g1", "sess", quiz.ID, answer(quiz, 4))
	assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseError))
}
