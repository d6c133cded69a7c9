package service

import (
	"context"
	stderrors "errors"
	"time"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/validation"
	gmodels "giveaway-settlement/internal/features/giveaway/models"
	grepo "giveaway-settlement/internal/features/giveaway/repository"
	"giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/features/payments/repository"
	"giveaway-settlement/internal/platform/paystack"

	"go.uber.org/zap"
)

// TopUp is the checkout a creator is redirected to.
type TopUp struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
}

type TopUpService interface {
	// Initiate starts funding of a CREATED giveaway owned by userID.
	Initiate(ctx context.Context, userID int64, email, giveawayID string) (*TopUp, error)
}

type topUpService struct {
	giveaways grepo.GiveawayRepository
	txns      repository.TransactionRepository
	gateway   Gateway
	logger    *zap.Logger
}

func NewTopUpService(giveaways grepo.GiveawayRepository, txns repository.TransactionRepository, gateway Gateway, logger *zap.Logger) TopUpService {
	return &topUpService{
		giveaways: giveaways,
		txns:      txns,
		gateway:   gateway,
		logger:    logger,
	}
}

func (s *topUpService) Initiate(ctx context.Context, userID int64, email, giveawayID string) (*TopUp, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, errors.NewValidationError("email", err.Error())
	}

	g, err := s.giveaways.GetByID(ctx, giveawayID)
	if err != nil {
		if stderrors.Is(err, grepo.ErrGiveawayNotFound) {
			return nil, errors.NewGiveawayNotFoundError(giveawayID)
		}
		return nil, errors.NewDatabaseError("get giveaway", err)
	}
	if g.CreatorID != userID {
		return nil, errors.New(errors.ErrCodeNotOwner, "Only the creator can fund this giveaway").
			WithDetail("giveaway_id", giveawayID)
	}
	if g.Status != gmodels.GiveawayStatusCreated {
		return nil, errors.NewConflictError("giveaway", "giveaway is already funded").
			WithDetail("status", string(g.Status))
	}

	reference := s.gateway.GenerateReference()
	res, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Reference: reference,
		Amount:    g.Amount,
		Email:     email,
	})
	if err != nil {
		s.logger.Error("Failed to initialize top up",
			zap.String("giveaway_id", giveawayID),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, errors.NewExternalAPIError("initialize transaction", err)
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		ID:         reference,
		GiveawayID: g.ID,
		Narration:  models.TopUpNarration(reference),
		Amount:     g.Amount,
		Status:     models.TransactionStatusInitiated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, errors.NewDatabaseError("create transaction", err)
	}

	s.logger.Info("Top up initiated",
		zap.String("giveaway_id", g.ID),
		zap.String("reference", reference),
		zap.String("amount", g.Amount.StringFixed(2)),
	)

	return &TopUp{
		Reference:        reference,
		AuthorizationURL: res.AuthorizationURL,
		AccessCode:       res.AccessCode,
	}, nil
}
