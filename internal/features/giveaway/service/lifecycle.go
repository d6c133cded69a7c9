package service

import (
	"context"
	"time"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/metrics"
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/repository"

	"go.uber.org/zap"
)

// LifecycleController ends giveaways whose end time has passed.
type LifecycleController struct {
	giveaways repository.GiveawayRepository
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewLifecycleController(giveaways repository.GiveawayRepository, logger *zap.Logger, m *metrics.Metrics) *LifecycleController {
	return &LifecycleController{
		giveaways: giveaways,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}
}

// Sweep moves every CREATED or ACTIVE giveaway with end_at <= now to ENDED in a single
// predicate update, so overlapping sweeps never double-transition.
func (c *LifecycleController) Sweep(ctx context.Context) (int64, error) {
	n, err := c.giveaways.ExpireEnded(ctx, c.now())
	if err != nil {
		return 0, errors.NewDatabaseError("expire giveaways", err)
	}
	c.metrics.GiveawaysTransitioned(string(models.GiveawayStatusEnded), n)
	if n > 0 {
		c.logger.Info("Giveaways ended", zap.Int64("count", n))
	}
	return n, nil
}
