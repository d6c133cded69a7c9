package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	gmodels "giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/platform/paystack"
	"giveaway-settlement/internal/testutil/memstore"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu sync.Mutex

	seq int

	verify      map[string]*paystack.Verification
	verifyErr   error
	verifyCalls int

	initErr     error
	initialized []paystack.InitializeRequest

	bulkErr    error
	bulkStatus string
	bulkCalls  [][]paystack.Transfer

	recipientFail map[string]bool
	recipients    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		verify:        make(map[string]*paystack.Verification),
		bulkStatus:    paystack.StatusSuccess,
		recipientFail: make(map[string]bool),
	}
}

func (f *fakeGateway) GenerateReference() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return fmt.Sprintf("ref%04d", f.seq)
}

func (f *fakeGateway) InitializeTransaction(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return nil, f.initErr
	}
	f.initialized = append(f.initialized, req)
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.test/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (f *fakeGateway) VerifyTransaction(_ context.Context, reference string) (*paystack.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if v, ok := f.verify[reference]; ok {
		return v, nil
	}
	return &paystack.Verification{Reference: reference, Status: "ongoing"}, nil
}

func (f *fakeGateway) CreateTransferRecipient(_ context.Context, r paystack.Recipient) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recipientFail[r.AccountNumber] {
		return "", false
	}
	f.recipients++
	return "RCP_" + r.AccountNumber, true
}

func (f *fakeGateway) InitiateBulkTransfer(_ context.Context, transfers []paystack.Transfer) ([]paystack.TransferResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, append([]paystack.Transfer(nil), transfers...))
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	out := make([]paystack.TransferResult, len(transfers))
	for i, t := range transfers {
		out[i] = paystack.TransferResult{
			Reference:    t.Reference,
			Recipient:    t.Recipient,
			Amount:       paystack.ToMinorUnits(t.Amount),
			TransferCode: "TRF_" + t.Reference,
			Status:       f.bulkStatus,
		}
	}
	return out, nil
}

func (f *fakeGateway) verifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

func testGiveaway(id string, status gmodels.GiveawayStatus) gmodels.Giveaway {
	amount := decimal.NewFromInt(10000)
	return gmodels.Giveaway{
		ID:                   id,
		CreatorID:            1,
		Title:                "Launch",
		Slug:                 "launch-" + id,
		NumberOfParticipants: 10,
		NumberOfWinners:      3,
		IsPublic:             true,
		Amount:               amount,
		NetAmount:            gmodels.ComputeNetAmount(amount),
		Status:               status,
		EndAt:                time.Now().Add(-time.Minute),
	}
}

func addTopUp(store *memstore.Store, ref, giveawayID string, status models.TransactionStatus) {
	store.AddTransaction(models.Transaction{
		ID:         ref,
		GiveawayID: giveawayID,
		Narration:  models.TopUpNarration(ref),
		Amount:     decimal.NewFromInt(10000),
		Status:     status,
	})
}

func addCredit(store *memstore.Store, ref, giveawayID string, participantID int64, status models.TransactionStatus) {
	store.AddTransaction(models.Transaction{
		ID:            ref,
		GiveawayID:    giveawayID,
		ParticipantID: &participantID,
		Narration:     models.CreditNarration(ref),
		Amount:        decimal.NewFromInt(3200),
		Status:        status,
	})
}

// addWinners stores n winners of giveawayID; withRecipient controls whether they have a recipient code.
func addWinners(store *memstore.Store, giveawayID string, n int, withRecipient bool) []int64 {
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		p := gmodels.Participant{
			GiveawayID:    giveawayID,
			Name:          fmt.Sprintf("Winner %d", i+1),
			BankCode:      "058",
			AccountNumber: fmt.Sprintf("%010d", i+1),
			IsEligible:    true,
			IsWinner:      true,
		}
		if withRecipient {
			code := "RCP_" + p.AccountNumber
			p.RecipientCode = &code
		}
		ids[i] = store.AddParticipant(p)
	}
	return ids
}

func newReconciler(store *memstore.Store, gw *fakeGateway, live bool) *Reconciler {
	return NewReconciler(store.Transactions(), gw, live, zap.NewNop(), nil)
}

func newPayoutScheduler(store *memstore.Store, gw *fakeGateway) *PayoutScheduler {
	return NewPayoutScheduler(
		store.Giveaways(),
		store.Participants(),
		store.Transactions(),
		gw,
		newReconciler(store, gw, true),
		zap.NewNop(),
		nil,
	)
}
