package service

import (
	"time"

	"giveaway-settlement/internal/features/giveaway/models"

	"golang.org/x/crypto/bcrypt"
)

// CheckNotCreator rejects the creator joining their own giveaway.
func CheckNotCreator(g *models.Giveaway, userID int64) error {
	if g.CreatorID == userID {
		return errCreatorCannotJoin()
	}
	return nil
}

// CheckActive requires a funded giveaway whose end time has not passed.
func CheckActive(g *models.Giveaway, now time.Time) error {
	if g.Status != models.GiveawayStatusActive || g.HasEnded(now) {
		return errGiveawayNotActive()
	}
	return nil
}

func CheckCapacity(g *models.Giveaway, participants int) error {
	if participants >= g.NumberOfParticipants {
		return errGiveawayFull()
	}
	return nil
}

// CheckPassword verifies the entry password of a private giveaway. Public giveaways always pass.
func CheckPassword(g *models.Giveaway, password string) error {
	if !g.RequiresPassword() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*g.PasswordHash), []byte(password)); err != nil {
		return errWrongPassword()
	}
	return nil
}
