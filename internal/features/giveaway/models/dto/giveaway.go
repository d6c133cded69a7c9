package dto

import (
	"time"

	"giveaway-settlement/internal/features/giveaway/models"
	quizmodels "giveaway-settlement/internal/features/quiz/models"

	"github.com/shopspring/decimal"
)

// CreateGiveawayRequest is the body of POST /giveaways.
type CreateGiveawayRequest struct {
	Title                string              `json:"title" binding:"required,min=3,max=100"`
	Description          string              `json:"description" binding:"max=2000"`
	NumberOfParticipants int                 `json:"number_of_participants" binding:"required,min=5,max=1000"`
	NumberOfWinners      int                 `json:"number_of_winners" binding:"required,min=1,max=200,ltfield=NumberOfParticipants"`
	DurationType         models.DurationType `json:"duration_type" binding:"required,oneof=MINUTES HOURS DAYS"`
	DurationLength       int                 `json:"duration_length" binding:"required,min=1"`
	IsPublic             bool                `json:"is_public"`
	IsCreatorAnonymous   bool                `json:"is_creator_anonymous"`
	Password             string              `json:"password" binding:"max=72"`
	IsQuiz               bool                `json:"is_quiz"`
	QuizCategory         int                 `json:"quiz_category" binding:"min=0,max=32"`
	Amount               decimal.Decimal     `json:"amount"`
}

// GiveawayResponse hides the creator of anonymous giveaways and the password hash.
type GiveawayResponse struct {
	ID                   string                `json:"id"`
	CreatorID            *int64                `json:"creator_id,omitempty"`
	Title                string                `json:"title"`
	Description          string                `json:"description,omitempty"`
	Slug                 string                `json:"slug"`
	NumberOfParticipants int                   `json:"number_of_participants"`
	NumberOfWinners      int                   `json:"number_of_winners"`
	ParticipantsCount    int                   `json:"participants_count"`
	IsPublic             bool                  `json:"is_public"`
	IsQuiz               bool                  `json:"is_quiz"`
	QuizCategory         int                   `json:"quiz_category,omitempty"`
	Amount               decimal.Decimal       `json:"amount"`
	NetAmount            decimal.Decimal       `json:"net_amount"`
	Status               models.GiveawayStatus `json:"status"`
	HasWinners           bool                  `json:"has_winners"`
	PaidWinners          bool                  `json:"paid_winners"`
	EndAt                time.Time             `json:"end_at"`
	CreatedAt            time.Time             `json:"created_at"`
}

// EntryRequest unlocks a private giveaway.
type EntryRequest struct {
	Password string `json:"password" binding:"required"`
}

// JoinRequest is the body of POST /giveaways/:id/join.
type JoinRequest struct {
	Name          string `json:"name" binding:"max=150"`
	Email         string `json:"email" binding:"required,email"`
	BankCode      string `json:"bank_code" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required,len=10,numeric"`
	Password      string `json:"password"`
	SessionID     string `json:"session_id"`
}

type JoinResponse struct {
	Participant *models.Participant `json:"participant"`
	SessionID   string              `json:"session_id,omitempty"`
	Quiz        *quizmodels.Quiz    `json:"quiz,omitempty"`
}

// SubmitQuizRequest is the body of POST /giveaways/:id/quiz.
type SubmitQuizRequest struct {
	SessionID string              `json:"session_id" binding:"required"`
	QuizID    string              `json:"quiz_id" binding:"required"`
	Answers   []quizmodels.Answer `json:"answers" binding:"required,dive"`
}
