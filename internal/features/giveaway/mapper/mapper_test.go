package mapper

import (
	"testing"

	"giveaway-settlement/internal/features/giveaway/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGiveawayResponse(t *testing.T) {
	g := &models.Giveaway{ID: "g1", CreatorID: 7, Title: "Launch", IsCategoryQuiz: true}

	resp := ToGiveawayResponse(g, 4)
	require.NotNil(t, resp.CreatorID)
	assert.EqualValues(t, 7, *resp.CreatorID)
	assert.Equal(t, 4, resp.ParticipantsCount)
	assert.True(t, resp.IsQuiz)

	g.IsCreatorAnonymous = true
	assert.Nil(t, ToGiveawayResponse(g, 4).CreatorID)
}
