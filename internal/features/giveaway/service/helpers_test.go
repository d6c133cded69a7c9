package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"giveaway-settlement/internal/features/giveaway/models"
	pmodels "giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/platform/paystack"
	"giveaway-settlement/internal/testutil/memstore"

	"github.com/shopspring/decimal"
)

func testGiveaway(id string, status models.GiveawayStatus) models.Giveaway {
	amount := decimal.NewFromInt(10000)
	return models.Giveaway{
		ID:                   id,
		CreatorID:            1,
		Title:                "Launch",
		Slug:                 "launch-1",
		NumberOfParticipants: 10,
		NumberOfWinners:      3,
		IsPublic:             true,
		Amount:               amount,
		NetAmount:            models.ComputeNetAmount(amount),
		Status:               status,
		EndAt:                time.Now().Add(time.Hour),
	}
}

func addFunding(store *memstore.Store, giveawayID string, status pmodels.TransactionStatus) {
	store.AddTransaction(pmodels.Transaction{
		ID:         "top-" + giveawayID,
		GiveawayID: giveawayID,
		Narration:  pmodels.TopUpNarration("top-" + giveawayID),
		Amount:     decimal.NewFromInt(10000),
		Status:     status,
	})
}

func addParticipants(store *memstore.Store, giveawayID string, n int, eligible bool) []int64 {
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = store.AddParticipant(models.Participant{
			GiveawayID:    giveawayID,
			Name:          "P",
			AccountNumber: fmt.Sprintf("%010d", i+1),
			IsEligible:    eligible,
		})
	}
	return ids
}

type fakeResolver struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeResolver) ResolveAccount(_ context.Context, accountNumber, _ string) (*paystack.ResolvedAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &paystack.ResolvedAccount{AccountNumber: accountNumber, AccountName: "ADA LOVELACE"}, nil
}
