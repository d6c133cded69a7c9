package mapper

import (
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/models/dto"
)

// ToGiveawayResponse maps a Giveaway to its public representation.
func ToGiveawayResponse(g *models.Giveaway, participantsCount int) *dto.GiveawayResponse {
	resp := &dto.GiveawayResponse{
		ID:                   g.ID,
		Title:                g.Title,
		Description:          g.Description,
		Slug:                 g.Slug,
		NumberOfParticipants: g.NumberOfParticipants,
		NumberOfWinners:      g.NumberOfWinners,
		ParticipantsCount:    participantsCount,
		IsPublic:             g.IsPublic,
		IsQuiz:               g.IsCategoryQuiz,
		QuizCategory:         g.QuizCategory,
		Amount:               g.Amount,
		NetAmount:            g.NetAmount,
		Status:               g.Status,
		HasWinners:           g.HasWinners,
		PaidWinners:          g.PaidWinners,
		EndAt:                g.EndAt,
		CreatedAt:            g.CreatedAt,
	}
	if !g.IsCreatorAnonymous {
		creator := g.CreatorID
		resp.CreatorID = &creator
	}
	return resp
}
