package service

import (
	"context"

	"giveaway-settlement/internal/features/quiz/models"
	"giveaway-settlement/internal/platform/opentdb"
)

type QuizService interface {
	// Issue fetches a fresh quiz, stores its answer key and the join session, and returns the
	// questions without answers.
	Issue(ctx context.Context, sessionID, giveawayID, accountNumber string, category int) (*models.Quiz, error)
	// Submit scores answers for the quiz bound to sessionID, which must belong to giveawayID.
	// The session and answer key are cleared on every outcome.
	Submit(ctx context.Context, giveawayID, sessionID, quizID string, answers []models.Answer) (*models.Result, error)
}

// QuestionProvider supplies trivia questions.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, category int) ([]opentdb.Question, error)
}

// Eligibility grants winner candidacy to a participant that passed the quiz.
type Eligibility interface {
	GrantEligibility(ctx context.Context, giveawayID, accountNumber string) (bool, error)
}
