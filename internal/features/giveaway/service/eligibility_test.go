package service

import (
	"context"
	"testing"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitialEligibility(t *testing.T) {
	assert.True(t, InitialEligibility(&models.Giveaway{}))
	assert.False(t, InitialEligibility(&models.Giveaway{IsCategoryQuiz: true}))
}

func TestGrantEligibility(t *testing.T) {
	store := memstore.New()
	store.AddGiveaway(testGiveaway("g1", models.GiveawayStatusActive))
	id := store.AddParticipant(models.Participant{GiveawayID: "g1", AccountNumber: "0123456789"})

	engine := NewEligibilityEngine(store.Participants(), zap.NewNop())
	ctx := context.Background()

	changed, err := engine.GrantEligibility(ctx, "g1", "0123456789")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, store.Participant(id).IsEligible)

	changed, err = engine.GrantEligibility(ctx, "g1", "0123456789")
	require.NoError(t, err)
	assert.False(t, changed, "second grant is a no-op")
	assert.True(t, store.Participant(id).IsEligible)
}

func TestGrantEligibility_UnknownParticipant(t *testing.T) {
	store := memstore.New()
	engine := NewEligibilityEngine(store.Participants(), zap.NewNop())

	_, err := engine.GrantEligibility(context.Background(), "g1", "0123456789")
	assert.True(t, errors.HasCode(err, errors.ErrCodeParticipantNotFound))
}
