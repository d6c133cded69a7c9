package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validGiveaway() *Giveaway {
	amount := decimal.NewFromInt(10000)
	return &Giveaway{
		NumberOfParticipants: 10,
		NumberOfWinners:      3,
		Amount:               amount,
		NetAmount:            ComputeNetAmount(amount),
	}
}

func TestComputeNetAmount(t *testing.T) {
	assert.Equal(t, "9600", ComputeNetAmount(decimal.NewFromInt(10000)).String())
	assert.Equal(t, "1200.48", ComputeNetAmount(decimal.RequireFromString("1250.5")).String())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validGiveaway().Validate())

	g := validGiveaway()
	g.NumberOfParticipants = 4
	assert.ErrorIs(t, g.Validate(), ErrInvalidParticipantsCount)

	g = validGiveaway()
	g.NumberOfWinners = 10
	assert.ErrorIs(t, g.Validate(), ErrInvalidWinnersCount, "winners must be strictly less than participants")

	g = validGiveaway()
	g.NumberOfWinners = 0
	assert.ErrorIs(t, g.Validate(), ErrInvalidWinnersCount)

	g = validGiveaway()
	g.Amount = decimal.NewFromInt(999)
	g.NetAmount = ComputeNetAmount(g.Amount)
	assert.ErrorIs(t, g.Validate(), ErrInvalidAmount)

	g = validGiveaway()
	g.NetAmount = g.Amount
	assert.ErrorIs(t, g.Validate(), ErrInvalidNetAmount)
}

func TestDurationEndTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	end, err := DurationMinutes.EndTime(now, 30)
	assert.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), end)

	end, err = DurationDays.EndTime(now, 2)
	assert.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 2), end)

	_, err = DurationType("WEEKS").EndTime(now, 1)
	assert.Error(t, err)
	_, err = DurationHours.EndTime(now, 0)
	assert.Error(t, err)
}

func TestHasEnded(t *testing.T) {
	now := time.Now()
	g := &Giveaway{EndAt: now}
	assert.True(t, g.HasEnded(now))
	g.EndAt = now.Add(time.Minute)
	assert.False(t, g.HasEnded(now))
}
