package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/validation"
	"giveaway-settlement/internal/features/giveaway/mapper"
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/models/dto"
	"giveaway-settlement/internal/features/giveaway/repository"
	"giveaway-settlement/internal/platform/paystack"
	"giveaway-settlement/internal/utils/random"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxSlugBase  = 80
	slugHexRange = 1 << 25
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type giveawayService struct {
	giveaways    repository.GiveawayRepository
	participants repository.ParticipantRepository
	accounts     AccountResolver
	rnd          random.Source
	now          func() time.Time
	logger       *zap.Logger
}

func NewGiveawayService(
	giveaways repository.GiveawayRepository,
	participants repository.ParticipantRepository,
	accounts AccountResolver,
	rnd random.Source,
	logger *zap.Logger,
) GiveawayService {
	return &giveawayService{
		giveaways:    giveaways,
		participants: participants,
		accounts:     accounts,
		rnd:          rnd,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *giveawayService) Create(ctx context.Context, creatorID int64, req *dto.CreateGiveawayRequest) (*models.Giveaway, error) {
	if err := validation.ValidatePositiveInt(creatorID, "creator ID"); err != nil {
		return nil, errors.NewValidationError("creator_id", err.Error())
	}
	if err := validation.ValidateTitle(req.Title); err != nil {
		return nil, errors.NewValidationError("title", err.Error())
	}
	if err := validation.ValidateDescription(req.Description); err != nil {
		return nil, errors.NewValidationError("description", err.Error())
	}

	now := s.now().UTC()
	endAt, err := req.DurationType.EndTime(now, req.DurationLength)
	if err != nil {
		return nil, errors.NewValidationError("duration", err.Error())
	}

	g := &models.Giveaway{
		ID:                   uuid.NewString(),
		CreatorID:            creatorID,
		Title:                strings.TrimSpace(req.Title),
		Description:          strings.TrimSpace(req.Description),
		Slug:                 s.slug(req.Title),
		NumberOfParticipants: req.NumberOfParticipants,
		NumberOfWinners:      req.NumberOfWinners,
		IsPublic:             req.IsPublic,
		IsCreatorAnonymous:   req.IsCreatorAnonymous,
		IsCategoryQuiz:       req.IsQuiz,
		Amount:               req.Amount.Round(2),
		NetAmount:            models.ComputeNetAmount(req.Amount.Round(2)),
		Status:               models.GiveawayStatusCreated,
		EndAt:                endAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if req.IsQuiz {
		g.QuizCategory = req.QuizCategory
	}

	if err := g.Validate(); err != nil {
		code := errors.ErrCodeValidation
		if stderrors.Is(err, models.ErrInvalidWinnersCount) {
			code = errors.ErrCodeInvalidWinners
		}
		return nil, errors.Wrap(err, code, err.Error())
	}

	if !req.IsPublic {
		if err := validation.ValidatePassword(req.Password); err != nil {
			return nil, errors.NewValidationError("password", err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to hash password")
		}
		h := string(hash)
		g.PasswordHash = &h
	}

	if err := s.giveaways.Create(ctx, g); err != nil {
		s.logger.Error("Failed to create giveaway", zap.Int64("creator_id", creatorID), zap.Error(err))
		return nil, errors.NewDatabaseError("create giveaway", err)
	}

	s.logger.Info("Giveaway created",
		zap.String("giveaway_id", g.ID),
		zap.Int64("creator_id", creatorID),
		zap.String("amount", g.Amount.String()),
	)
	return g, nil
}

func (s *giveawayService) GetByID(ctx context.Context, id string) (*dto.GiveawayResponse, error) {
	g, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.participants.CountByGiveaway(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("count participants", err)
	}
	return mapper.ToGiveawayResponse(g, count), nil
}

func (s *giveawayService) CheckEntryPassword(ctx context.Context, id, password string) error {
	g, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	return CheckPassword(g, password)
}

func (s *giveawayService) Join(ctx context.Context, userID int64, giveawayID string, req *dto.JoinRequest) (*models.Participant, *models.Giveaway, error) {
	if err := validation.ValidateAccountNumber(req.AccountNumber); err != nil {
		return nil, nil, errors.NewValidationError("account_number", err.Error())
	}
	if err := validation.ValidateBankCode(req.BankCode); err != nil {
		return nil, nil, errors.NewValidationError("bank_code", err.Error())
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, nil, errors.NewValidationError("email", err.Error())
	}

	g, err := s.get(ctx, giveawayID)
	if err != nil {
		return nil, nil, err
	}

	if err := CheckNotCreator(g, userID); err != nil {
		return nil, nil, err
	}
	if err := CheckActive(g, s.now()); err != nil {
		return nil, nil, err
	}
	if err := CheckPassword(g, req.Password); err != nil {
		return nil, nil, err
	}

	existing, err := s.participants.GetByAccount(ctx, giveawayID, req.AccountNumber)
	switch {
	case err == nil:
		// an ineligible quiz participant may come back for a new quiz
		if g.IsCategoryQuiz && !existing.IsEligible {
			s.logger.Info("Participant rejoined for a new quiz",
				zap.String("giveaway_id", giveawayID),
				zap.Int64("participant_id", existing.ID),
			)
			return existing, g, nil
		}
		return nil, nil, errDuplicateAccount()
	case !stderrors.Is(err, repository.ErrParticipantNotFound):
		return nil, nil, errors.NewDatabaseError("get participant", err)
	}

	count, err := s.participants.CountByGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, nil, errors.NewDatabaseError("count participants", err)
	}
	if err := CheckCapacity(g, count); err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.ResolveAccount(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		if stderrors.Is(err, paystack.ErrAccountNotResolved) {
			return nil, nil, errInvalidBankAccount(err)
		}
		s.logger.Warn("Bank account resolution unavailable",
			zap.String("giveaway_id", giveawayID),
			zap.Error(err),
		)
		return nil, nil, errors.NewExternalAPIError("resolve bank account", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = account.AccountName
	}
	now := s.now().UTC()
	p := &models.Participant{
		GiveawayID:    giveawayID,
		Name:          name,
		Email:         req.Email,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		IsEligible:    InitialEligibility(g),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.participants.Create(ctx, p); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrDuplicateParticipant):
			return nil, nil, errDuplicateAccount()
		case stderrors.Is(err, repository.ErrGiveawayFull):
			return nil, nil, errGiveawayFull()
		}
		return nil, nil, errors.NewDatabaseError("create participant", err)
	}

	s.logger.Info("Participant joined",
		zap.String("giveaway_id", giveawayID),
		zap.Int64("participant_id", p.ID),
		zap.Bool("eligible", p.IsEligible),
	)
	return p, g, nil
}

func (s *giveawayService) get(ctx context.Context, id string) (*models.Giveaway, error) {
	g, err := s.giveaways.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrGiveawayNotFound) {
			return nil, errors.NewGiveawayNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("get giveaway", err)
	}
	return g, nil
}

// slug lowercases title, collapses everything but letters and digits to dashes and appends a
// random hex suffix.
func (s *giveawayService) slug(title string) string {
	base := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}
	if base == "" {
		base = "giveaway"
	}
	return fmt.Sprintf("%s-%x", base, s.rnd.Intn(slugHexRange))
}
