package service

import (
	"context"
	stderrors "errors"
	"time"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/metrics"
	gmodels "giveaway-settlement/internal/features/giveaway/models"
	grepo "giveaway-settlement/internal/features/giveaway/repository"
	"giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/features/payments/repository"
	"giveaway-settlement/internal/platform/paystack"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayoutReport summarizes one scheduler run.
type PayoutReport struct {
	Giveaways int
	Submitted int
	Completed int64
}

// PayoutScheduler pays the winners of ended giveaways through bulk transfers.
type PayoutScheduler struct {
	giveaways    grepo.GiveawayRepository
	participants grepo.ParticipantRepository
	txns         repository.TransactionRepository
	gateway      Gateway
	reconciler   *Reconciler
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

func NewPayoutScheduler(
	giveaways grepo.GiveawayRepository,
	participants grepo.ParticipantRepository,
	txns repository.TransactionRepository,
	gateway Gateway,
	reconciler *Reconciler,
	logger *zap.Logger,
	m *metrics.Metrics,
) *PayoutScheduler {
	return &PayoutScheduler{
		giveaways:    giveaways,
		participants: participants,
		txns:         txns,
		gateway:      gateway,
		reconciler:   reconciler,
		logger:       logger,
		metrics:      m,
	}
}

// Share splits the net amount evenly across all winners, rounded down to the kobo.
func Share(netAmount decimal.Decimal, winners int) decimal.Decimal {
	if winners <= 0 {
		return decimal.Zero
	}
	return netAmount.Div(decimal.NewFromInt(int64(winners))).Truncate(2)
}

// Run submits transfers for every giveaway awaiting payout, then marks fully paid giveaways.
// A failure on one giveaway does not stop the others.
func (s *PayoutScheduler) Run(ctx context.Context) (PayoutReport, error) {
	var report PayoutReport

	pending, err := s.giveaways.ListAwaitingPayout(ctx)
	if err != nil {
		return report, errors.NewDatabaseError("list awaiting payout", err)
	}

	var errs []error
	for i := range pending {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		n, err := s.PayGiveaway(ctx, &pending[i])
		report.Giveaways++
		report.Submitted += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	completed, err := s.CompletePaidGiveaways(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	report.Completed = completed

	return report, stderrors.Join(errs...)
}

// PayGiveaway submits one bulk transfer for the unpaid winners of g that have a recipient code.
// A winner with any PENDING or SUCCESS credit is skipped, an INITIATED credit is resubmitted
// under the same reference, and FAILED (or none) gets a fresh reference.
func (s *PayoutScheduler) PayGiveaway(ctx context.Context, g *gmodels.Giveaway) (int, error) {
	winners, err := s.participants.ListWinners(ctx, g.ID)
	if err != nil {
		return 0, errors.NewDatabaseError("list winners", err)
	}
	if len(winners) == 0 {
		return 0, nil
	}
	credits, err := s.txns.PayoutCredits(ctx, g.ID)
	if err != nil {
		return 0, errors.NewDatabaseError("payout credits", err)
	}

	share := Share(g.NetAmount, len(winners))
	if !share.IsPositive() {
		s.logger.Warn("Payout share rounds to zero", zap.String("giveaway_id", g.ID))
		return 0, nil
	}

	transfers := make([]paystack.Transfer, 0, len(winners))
	for _, w := range winners {
		if w.IsPaid {
			continue
		}
		if !w.HasRecipient() {
			s.logger.Debug("Winner has no recipient code yet",
				zap.String("giveaway_id", g.ID),
				zap.Int64("participant_id", w.ID),
			)
			continue
		}

		reference := ""
		if prev, ok := credits[w.ID]; ok {
			switch prev.Status {
			case models.TransactionStatusPending, models.TransactionStatusSuccess:
				continue
			case models.TransactionStatusInitiated:
				reference = prev.ID
			}
		}
		if reference == "" {
			reference = s.gateway.GenerateReference()
			pid := w.ID
			now := time.Now().UTC()
			txn := &models.Transaction{
				ID:            reference,
				GiveawayID:    g.ID,
				ParticipantID: &pid,
				Narration:     models.CreditNarration(reference),
				Amount:        share,
				Status:        models.TransactionStatusInitiated,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.txns.Create(ctx, txn); err != nil {
				return 0, errors.NewDatabaseError("create credit transaction", err)
			}
		}

		transfers = append(transfers, paystack.Transfer{
			Reference: reference,
			Recipient: *w.RecipientCode,
			Amount:    share,
		})
	}
	if len(transfers) == 0 {
		return 0, nil
	}

	start := time.Now()
	results, err := s.gateway.InitiateBulkTransfer(ctx, transfers)
	if err != nil {
		s.metrics.Payout("deferred", len(transfers))
		s.logger.Warn("Bulk transfer failed, will retry",
			zap.String("giveaway_id", g.ID),
			zap.Int("transfers", len(transfers)),
			zap.Error(err),
		)
		return 0, errors.NewExternalAPIError("bulk transfer", err).WithDetail("giveaway_id", g.ID)
	}

	for _, res := range results {
		if _, err := s.reconciler.ApplyTransferEvent(ctx, res.Reference, res.Status, ""); err != nil {
			s.logger.Error("Failed to record transfer result",
				zap.String("reference", res.Reference),
				zap.Error(err),
			)
		}
	}

	s.metrics.Payout("submitted", len(transfers))
	s.logger.Info("Payout submitted",
		zap.String("giveaway_id", g.ID),
		zap.Int("transfers", len(transfers)),
		zap.String("share", share.StringFixed(2)),
		zap.Duration("took", time.Since(start)),
	)
	return len(transfers), nil
}

// CompletePaidGiveaways sets paid_winners on giveaways whose winners are all paid.
func (s *PayoutScheduler) CompletePaidGiveaways(ctx context.Context) (int64, error) {
	n, err := s.giveaways.MarkPaidWhenSettled(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("mark paid giveaways", err)
	}
	if n > 0 {
		s.logger.Info("Giveaways fully paid", zap.Int64("count", n))
	}
	return n, nil
}
