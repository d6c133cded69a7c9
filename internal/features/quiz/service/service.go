package service

import (
	"context"
	stderrors "errors"
	"time"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/metrics"
	"giveaway-settlement/internal/features/quiz/models"
	"giveaway-settlement/internal/features/quiz/repository"
	"giveaway-settlement/internal/utils/random"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type quizService struct {
	provider    QuestionProvider
	store       repository.Store
	eligibility Eligibility
	rnd         random.Source
	ttl         time.Duration
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewQuizService(
	provider QuestionProvider,
	store repository.Store,
	eligibility Eligibility,
	rnd random.Source,
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) QuizService {
	return &quizService{
		provider:    provider,
		store:       store,
		eligibility: eligibility,
		rnd:         rnd,
		ttl:         ttl,
		logger:      logger,
		metrics:     m,
	}
}

func errQuizExpired() *errors.AppError {
	return errors.New(errors.ErrCodeQuizExpired, "Quiz expired or was already submitted. Please join again to get a new quiz")
}

func (s *quizService) Issue(ctx context.Context, sessionID, giveawayID, accountNumber string, category int) (*models.Quiz, error) {
	if sessionID == "" {
		return nil, errors.NewValidationError("session_id", "Session ID is required")
	}

	questions, err := s.provider.FetchQuestions(ctx, category)
	if err != nil {
		s.logger.Warn("Failed to fetch quiz questions",
			zap.String("giveaway_id", giveawayID),
			zap.Int("category", category),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, errors.ErrCodeQuizUnavailable, "Unable to get quiz at the moment. Please try again after a while")
	}

	quiz := &models.Quiz{ID: uuid.NewString()}
	key := &models.AnswerKey{QuizID: quiz.ID}
	for _, q := range questions {
		id := uuid.NewString()
		options := append(append([]string{}, q.IncorrectAnswers...), q.CorrectAnswer)
		random.Shuffle(s.rnd, options)

		quiz.Questions = append(quiz.Questions, models.Question{ID: id, Question: q.Question, Options: options})
		key.Answers = append(key.Answers, models.Answer{QuestionID: id, Answer: q.CorrectAnswer})
	}

	if err := s.store.Put(ctx, key, s.ttl); err != nil {
		return nil, errors.NewCacheError("store answer key", err)
	}
	session := &models.Session{GiveawayID: giveawayID, QuizID: quiz.ID, AccountNumber: accountNumber}
	if err := s.store.SaveSession(ctx, sessionID, session, s.ttl); err != nil {
		return nil, errors.NewCacheError("store quiz session", err)
	}

	s.logger.Debug("Quiz issued",
		zap.String("giveaway_id", giveawayID),
		zap.String("quiz_id", quiz.ID),
	)
	return quiz, nil
}

func (s *quizService) Submit(ctx context.Context, giveawayID, sessionID, quizID string, answers []models.Answer) (*models.Result, error) {
	session, err := s.store.TakeSession(ctx, sessionID)
	if err != nil {
		if quizID != "" {
			_, _ = s.store.Take(ctx, quizID)
		}
		if stderrors.Is(err, repository.ErrNotFound) {
			s.metrics.QuizSubmitted("expired")
			return nil, errQuizExpired()
		}
		return nil, errors.NewCacheError("take quiz session", err)
	}

	key, err := s.store.Take(ctx, session.QuizID)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewCacheError("take answer key", err)
	}
	if quizID != "" && quizID != session.QuizID {
		_, _ = s.store.Take(ctx, quizID)
	}

	if session.GiveawayID != giveawayID {
		s.logger.Warn("Quiz submitted for another giveaway",
			zap.String("giveaway_id", giveawayID),
			zap.String("session_giveaway_id", session.GiveawayID),
		)
		s.metrics.QuizSubmitted("rejected")
		return nil, errors.NewValidationError("session_id", "Quiz session does not belong to this giveaway")
	}
	if key == nil || session.QuizID != quizID {
		s.logger.Info("Quiz answer key missing",
			zap.String("giveaway_id", session.GiveawayID),
			zap.String("quiz_id", quizID),
		)
		s.metrics.QuizSubmitted("expired")
		return nil, errQuizExpired()
	}

	result := Score(answers, key.Answers)
	if !result.Passed {
		s.metrics.QuizSubmitted("fail")
		s.logger.Info("Quiz failed",
			zap.String("giveaway_id", session.GiveawayID),
			zap.Int("percent", result.Percent),
		)
		return &result, nil
	}

	if _, err := s.eligibility.GrantEligibility(ctx, session.GiveawayID, session.AccountNumber); err != nil {
		s.logger.Error("Failed to grant eligibility",
			zap.String("giveaway_id", session.GiveawayID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.QuizSubmitted("pass")
	s.logger.Info("Quiz passed",
		zap.String("giveaway_id", session.GiveawayID),
		zap.Int("percent", result.Percent),
	)
	return &result, nil
}
