package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/features/payments/repository"

	"github.com/lib/pq"
)

const transactionColumns = `id, giveaway_id, participant_id, narration, amount, status, gateway_response, created_at, updated_at`

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var participantID sql.NullInt64
	var response sql.NullString
	err := row.Scan(&t.ID, &t.GiveawayID, &participantID, &t.Narration, &t.Amount, &t.Status,
		&response, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if participantID.Valid {
		t.ParticipantID = &participantID.Int64
	}
	if response.Valid {
		t.GatewayResponse = &response.String
	}
	return &t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	query := `INSERT INTO transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.GiveawayID, t.ParticipantID, t.Narration, t.Amount, t.Status,
		t.GatewayResponse, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func statusStrings(from []models.TransactionStatus) []string {
	out := make([]string, len(from))
	for i, s := range from {
		out[i] = string(s)
	}
	return out
}

func transition(ctx context.Context, exec interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, id string, from []models.TransactionStatus, to models.TransactionStatus, gatewayResponse *string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $2, gateway_response = COALESCE($3, gateway_response), updated_at = now()
		WHERE id = $1 AND status = ANY($4)
	`
	res, err := exec.ExecContext(ctx, query, id, to, gatewayResponse, pq.Array(statusStrings(from)))
	if err != nil {
		return false, fmt.Errorf("failed to transition transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *transactionRepository) Transition(ctx context.Context, id string, from []models.TransactionStatus, to models.TransactionStatus, gatewayResponse *string) (bool, error) {
	return transition(ctx, r.db, id, from, to, gatewayResponse)
}

var settleableStatuses = []models.TransactionStatus{models.TransactionStatusInitiated, models.TransactionStatusPending}

func (r *transactionRepository) SettleTopUp(ctx context.Context, id string, gatewayResponse *string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	changed, err := transition(ctx, tx, id, settleableStatuses, models.TransactionStatusSuccess, gatewayResponse)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	query := `
		UPDATE giveaways SET status = 'ACTIVE', updated_at = now()
		WHERE status = 'CREATED' AND id = (SELECT giveaway_id FROM transactions WHERE id = $1)
	`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return false, fmt.Errorf("failed to activate giveaway: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit top-up settlement: %w", err)
	}
	return true, nil
}

func (r *transactionRepository) SettleCredit(ctx context.Context, id string, gatewayResponse *string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	changed, err := transition(ctx, tx, id, settleableStatuses, models.TransactionStatusSuccess, gatewayResponse)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	query := `
		UPDATE participants SET is_paid = true, updated_at = now()
		WHERE id = (SELECT participant_id FROM transactions WHERE id = $1)
	`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return false, fmt.Errorf("failed to mark participant paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit credit settlement: %w", err)
	}
	return true, nil
}

func (r *transactionRepository) PayoutCredits(ctx context.Context, giveawayID string) (map[int64]models.Transaction, error) {
	query := `
		SELECT DISTINCT ON (participant_id) ` + transactionColumns + `
		FROM transactions
		WHERE giveaway_id = $1 AND participant_id IS NOT NULL AND narration LIKE 'credit\_%'
		ORDER BY participant_id,
			CASE status WHEN 'SUCCESS' THEN 0 WHEN 'PENDING' THEN 0 WHEN 'INITIATED' THEN 1 ELSE 2 END,
			created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]models.Transaction)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out[*t.ParticipantID] = *t
	}
	return out, rows.Err()
}
