package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/repository"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const giveawayColumns = `id, creator_id, title, description, slug, number_of_participants, number_of_winners,
	is_public, is_creator_anonymous, password_hash, is_category_quiz, quiz_category, amount, net_amount,
	status, has_winners, paid_winners, end_at, created_at, updated_at`

const participantColumns = `id, giveaway_id, name, email, bank_code, account_number, is_eligible,
	is_winner, is_paid, recipient_code, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGiveaway(row rowScanner) (*models.Giveaway, error) {
	var g models.Giveaway
	var passwordHash sql.NullString
	err := row.Scan(&g.ID, &g.CreatorID, &g.Title, &g.Description, &g.Slug,
		&g.NumberOfParticipants, &g.NumberOfWinners, &g.IsPublic, &g.IsCreatorAnonymous,
		&passwordHash, &g.IsCategoryQuiz, &g.QuizCategory, &g.Amount, &g.NetAmount,
		&g.Status, &g.HasWinners, &g.PaidWinners, &g.EndAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if passwordHash.Valid {
		g.PasswordHash = &passwordHash.String
	}
	return &g, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	var recipient sql.NullString
	err := row.Scan(&p.ID, &p.GiveawayID, &p.Name, &p.Email, &p.BankCode, &p.AccountNumber,
		&p.IsEligible, &p.IsWinner, &p.IsPaid, &recipient, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if recipient.Valid {
		p.RecipientCode = &recipient.String
	}
	return &p, nil
}

func scanParticipants(rows *sql.Rows) ([]models.Participant, error) {
	defer rows.Close()
	var out []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type giveawayRepository struct {
	db *sql.DB
}

func NewGiveawayRepository(db *sql.DB) repository.GiveawayRepository {
	return &giveawayRepository{db: db}
}

func (r *giveawayRepository) Create(ctx context.Context, g *models.Giveaway) error {
	query := `
		INSERT INTO giveaways (` + giveawayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.CreatorID, g.Title, g.Description, g.Slug,
		g.NumberOfParticipants, g.NumberOfWinners, g.IsPublic, g.IsCreatorAnonymous,
		g.PasswordHash, g.IsCategoryQuiz, g.QuizCategory, g.Amount, g.NetAmount,
		g.Status, g.HasWinners, g.PaidWinners, g.EndAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}
	return nil
}

func (r *giveawayRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE id = $1`
	g, err := scanGiveaway(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return g, nil
}

func (r *giveawayRepository) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE giveaways SET status = 'ENDED', updated_at = now()
		WHERE status <> 'ENDED' AND end_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire giveaways: %w", err)
	}
	return res.RowsAffected()
}

func (r *giveawayRepository) ListAwaitingWinners(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM giveaways WHERE status = 'ENDED' AND has_winners = false ORDER BY end_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways awaiting winners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan giveaway id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *giveawayRepository) ListAwaitingPayout(ctx context.Context) ([]models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways
		WHERE status = 'ENDED' AND has_winners = true AND paid_winners = false ORDER BY end_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways awaiting payout: %w", err)
	}
	defer rows.Close()

	var out []models.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *giveawayRepository) MarkPaidWhenSettled(ctx context.Context) (int64, error) {
	query := `
		UPDATE giveaways g SET paid_winners = true, updated_at = now()
		WHERE g.status = 'ENDED' AND g.has_winners = true AND g.paid_winners = false
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.giveaway_id = g.id AND p.is_winner = true)
		  AND NOT EXISTS (
			SELECT 1 FROM participants p
			WHERE p.giveaway_id = g.id AND p.is_winner = true AND p.is_paid = false
		  )
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to mark paid giveaways: %w", err)
	}
	return res.RowsAffected()
}

func (r *giveawayRepository) BeginWinnerSelection(ctx context.Context, id string) (repository.WinnerSelectionTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE id = $1 FOR UPDATE`
	g, err := scanGiveaway(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to lock giveaway: %w", err)
	}
	return &winnerSelectionTx{tx: tx, giveaway: g}, nil
}

type winnerSelectionTx struct {
	tx       *sql.Tx
	giveaway *models.Giveaway
}

func (t *winnerSelectionTx) Giveaway() *models.Giveaway {
	return t.giveaway
}

func (t *winnerSelectionTx) HasSuccessfulTopUp(ctx context.Context) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE giveaway_id = $1 AND narration LIKE 'top\_up\_%' AND status = 'SUCCESS'
		)
	`
	var ok bool
	if err := t.tx.QueryRowContext(ctx, query, t.giveaway.ID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check top-up: %w", err)
	}
	return ok, nil
}

func (t *winnerSelectionTx) EligibleParticipants(ctx context.Context) ([]models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants
		WHERE giveaway_id = $1 AND is_eligible = true ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, query, t.giveaway.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible participants: %w", err)
	}
	return scanParticipants(rows)
}

func (t *winnerSelectionTx) MarkWinners(ctx context.Context, participantIDs []int64) error {
	if len(participantIDs) > 0 {
		query := `
			UPDATE participants SET is_winner = true, updated_at = now()
			WHERE giveaway_id = $1 AND id = ANY($2)
		`
		if _, err := t.tx.ExecContext(ctx, query, t.giveaway.ID, pq.Array(participantIDs)); err != nil {
			return fmt.Errorf("failed to mark winners: %w", err)
		}
	}

	query := `UPDATE giveaways SET has_winners = true, updated_at = now() WHERE id = $1`
	if _, err := t.tx.ExecContext(ctx, query, t.giveaway.ID); err != nil {
		return fmt.Errorf("failed to flag giveaway winners: %w", err)
	}
	t.giveaway.HasWinners = true
	return nil
}

func (t *winnerSelectionTx) Commit() error {
	return t.tx.Commit()
}

func (t *winnerSelectionTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type participantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) repository.ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *models.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT number_of_participants FROM giveaways WHERE id = $1 FOR UPDATE`, p.GiveawayID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrGiveawayNotFound
		}
		return fmt.Errorf("failed to lock giveaway: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE giveaway_id = $1`, p.GiveawayID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count participants: %w", err)
	}
	if count >= capacity {
		return repository.ErrGiveawayFull
	}

	query := `
		INSERT INTO participants (giveaway_id, name, email, bank_code, account_number, is_eligible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		p.GiveawayID, p.Name, p.Email, p.BankCode, p.AccountNumber, p.IsEligible, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicateParticipant
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit participant: %w", err)
	}
	return nil
}

func (r *participantRepository) CountByGiveaway(ctx context.Context, giveawayID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE giveaway_id = $1`, giveawayID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

func (r *participantRepository) GetByAccount(ctx context.Context, giveawayID, accountNumber string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE giveaway_id = $1 AND account_number = $2`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, giveawayID, accountNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (r *participantRepository) MarkEligible(ctx context.Context, giveawayID, accountNumber string) (bool, error) {
	query := `
		UPDATE participants SET is_eligible = true, updated_at = now()
		WHERE giveaway_id = $1 AND account_number = $2 AND is_eligible = false
	`
	res, err := r.db.ExecContext(ctx, query, giveawayID, accountNumber)
	if err != nil {
		return false, fmt.Errorf("failed to mark participant eligible: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *participantRepository) ListWinners(ctx context.Context, giveawayID string) ([]models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants
		WHERE giveaway_id = $1 AND is_winner = true ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return scanParticipants(rows)
}

func (r *participantRepository) ListWinnersWithoutRecipient(ctx context.Context, limit int) ([]models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants
		WHERE is_winner = true AND is_paid = false AND recipient_code IS NULL ORDER BY id LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners without recipient: %w", err)
	}
	return scanParticipants(rows)
}

func (r *participantRepository) SetRecipientCode(ctx context.Context, participantID int64, code string) error {
	query := `UPDATE participants SET recipient_code = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, participantID, code)
	if err != nil {
		return fmt.Errorf("failed to set recipient code: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrParticipantNotFound
	}
	return nil
}
