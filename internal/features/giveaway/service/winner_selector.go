package service

import (
	"context"
	stderrors "errors"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/metrics"
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/repository"
	"giveaway-settlement/internal/utils/random"

	"go.uber.org/zap"
)

// WinnerSelector samples winners of ended, funded giveaways.
type WinnerSelector struct {
	giveaways repository.GiveawayRepository
	rnd       random.Source
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewWinnerSelector(giveaways repository.GiveawayRepository, rnd random.Source, logger *zap.Logger, m *metrics.Metrics) *WinnerSelector {
	return &WinnerSelector{
		giveaways: giveaways,
		rnd:       rnd,
		logger:    logger,
		metrics:   m,
	}
}

// SelectWinners picks min(number_of_winners, eligible) winners uniformly without replacement and
// sets has_winners in the same transaction. It returns 0 without changes when the giveaway is not
// ENDED, already has winners, has no successful top-up, or has no eligible participants.
func (s *WinnerSelector) SelectWinners(ctx context.Context, giveawayID string) (int, error) {
	tx, err := s.giveaways.BeginWinnerSelection(ctx, giveawayID)
	if err != nil {
		if stderrors.Is(err, repository.ErrGiveawayNotFound) {
			return 0, errors.NewGiveawayNotFoundError(giveawayID)
		}
		return 0, errors.NewDatabaseError("begin winner selection", err)
	}
	defer tx.Rollback()

	g := tx.Giveaway()
	if g.Status != models.GiveawayStatusEnded || g.HasWinners {
		return 0, nil
	}

	funded, err := tx.HasSuccessfulTopUp(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("check funding", err)
	}
	if !funded {
		s.logger.Debug("Giveaway not funded, skipping winner selection", zap.String("giveaway_id", g.ID))
		return 0, nil
	}

	eligible, err := tx.EligibleParticipants(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("list eligible participants", err)
	}
	eligible = uniqueByAccount(eligible)
	if len(eligible) == 0 {
		// stays without winners and is retried on the next sweep
		s.logger.Info("No eligible participants yet", zap.String("giveaway_id", g.ID))
		return 0, nil
	}

	k := g.NumberOfWinners
	if k > len(eligible) {
		k = len(eligible)
	}
	winners := random.Sample(s.rnd, eligible, k)

	ids := make([]int64, len(winners))
	for i, w := range winners {
		ids[i] = w.ID
	}
	if err := tx.MarkWinners(ctx, ids); err != nil {
		return 0, errors.NewDatabaseError("mark winners", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeTransactionFailed, "Failed to commit winner selection")
	}

	s.metrics.WinnersSelected(len(ids))
	s.logger.Info("Winners selected",
		zap.String("giveaway_id", g.ID),
		zap.Int("winners", len(ids)),
		zap.Int("eligible", len(eligible)),
	)
	return len(ids), nil
}

// SelectPending runs SelectWinners for every ended giveaway still waiting for winners.
// A failure on one giveaway does not stop the others.
func (s *WinnerSelector) SelectPending(ctx context.Context) (int, error) {
	ids, err := s.giveaways.ListAwaitingWinners(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("list giveaways awaiting winners", err)
	}

	total := 0
	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		n, err := s.SelectWinners(ctx, id)
		if err != nil {
			s.logger.Error("Winner selection failed", zap.String("giveaway_id", id), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		total += n
	}
	return total, stderrors.Join(errs...)
}

func uniqueByAccount(in []models.Participant) []models.Participant {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Participant, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p.AccountNumber]; ok {
			continue
		}
		seen[p.AccountNumber] = struct{}{}
		out = append(out, p)
	}
	return out
}
