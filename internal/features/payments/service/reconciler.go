package service

import (
	"context"
	stderrors "errors"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/metrics"
	"giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/features/payments/repository"
	"giveaway-settlement/internal/platform/paystack"

	"go.uber.org/zap"
)

const (
	msgTopUpSuccess = "Giveaway topup was successful!"
	msgTopUpPending = "Your topup is pending. Wait a while before trying to top up again."
	msgTopUpFailed  = "Your top up failed!"
)

var (
	openStatuses    = []models.TransactionStatus{models.TransactionStatusInitiated, models.TransactionStatusPending}
	initiatedStatus = []models.TransactionStatus{models.TransactionStatusInitiated}
	successStatus   = []models.TransactionStatus{models.TransactionStatusSuccess}
)

// VerifyOutcome is what the verify callback reports back to the payer.
type VerifyOutcome struct {
	Reference  string                   `json:"reference"`
	GiveawayID string                   `json:"giveaway_id"`
	Status     models.TransactionStatus `json:"status"`
	Message    string                   `json:"message"`
}

// Reconciler drives transactions through INITIATED -> PENDING -> SUCCESS/FAILED (and SUCCESS -> REVERSED
// for payouts). Every transition is a predicate update, so the verify callback, webhooks and their
// duplicates converge on the same state in any order.
type Reconciler struct {
	txns     repository.TransactionRepository
	gateway  Gateway
	liveMode bool
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewReconciler(txns repository.TransactionRepository, gateway Gateway, liveMode bool, logger *zap.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		txns:     txns,
		gateway:  gateway,
		liveMode: liveMode,
		logger:   logger,
		metrics:  m,
	}
}

// Verify polls the gateway for reference. In live mode a successful charge settles immediately;
// otherwise the transaction waits in PENDING for the webhook. A gateway failure leaves the
// transaction untouched and returns a retryable error.
func (r *Reconciler) Verify(ctx context.Context, reference string) (*VerifyOutcome, error) {
	txn, err := r.load(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn.Status.IsTerminal() {
		return r.outcome(txn), nil
	}

	v, err := r.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		r.logger.Warn("Transaction verification failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, errors.NewExternalAPIError("verify transaction", err).WithDetail("reference", reference)
	}

	resp := v.GatewayResponse
	switch v.Status {
	case paystack.StatusSuccess:
		if r.liveMode {
			if _, err := r.settle(ctx, txn, &resp); err != nil {
				return nil, err
			}
		} else if _, err := r.transition(ctx, txn, initiatedStatus, models.TransactionStatusPending, &resp); err != nil {
			return nil, err
		}
	case paystack.StatusFailed:
		if _, err := r.transition(ctx, txn, openStatuses, models.TransactionStatusFailed, &resp); err != nil {
			return nil, err
		}
	default:
		r.logger.Info("Transaction not settled yet",
			zap.String("reference", reference),
			zap.String("gateway_status", v.Status),
		)
	}

	// re-read: a concurrent webhook may have won the race
	txn, err = r.load(ctx, reference)
	if err != nil {
		return nil, err
	}
	return r.outcome(txn), nil
}

// HandleWebhook applies a verified webhook event. Unknown events are ignored.
func (r *Reconciler) HandleWebhook(ctx context.Context, ev *paystack.Event) error {
	r.logger.Info("Handling webhook", zap.String("event", ev.Event), zap.String("reference", ev.Data.Reference))

	switch ev.Event {
	case paystack.EventChargeSuccess:
		txn, err := r.load(ctx, ev.Data.Reference)
		if err != nil {
			return err
		}
		resp := ev.Data.ResponseText()
		_, err = r.settle(ctx, txn, optional(resp))
		return err
	case paystack.EventTransferSuccess:
		_, err := r.ApplyTransferEvent(ctx, ev.Data.Reference, paystack.StatusSuccess, ev.Data.ResponseText())
		return err
	case paystack.EventTransferFailed:
		_, err := r.ApplyTransferEvent(ctx, ev.Data.Reference, paystack.StatusFailed, ev.Data.ResponseText())
		return err
	case paystack.EventTransferReversed:
		_, err := r.ApplyTransferEvent(ctx, ev.Data.Reference, statusReversed, ev.Data.ResponseText())
		return err
	default:
		r.logger.Debug("Ignoring webhook event", zap.String("event", ev.Event))
		return nil
	}
}

const statusReversed = "reversed"

// ApplyTransferEvent moves a payout transaction according to a gateway transfer status:
// success settles it and marks the winner paid, failed marks it FAILED, reversed moves SUCCESS to
// REVERSED, and anything else means the gateway is still processing (PENDING).
// It reports whether the transaction changed.
func (r *Reconciler) ApplyTransferEvent(ctx context.Context, reference, status, response string) (bool, error) {
	txn, err := r.load(ctx, reference)
	if err != nil {
		return false, err
	}
	if !txn.IsCredit() {
		r.logger.Warn("Transfer event for non-payout transaction",
			zap.String("reference", reference),
			zap.String("narration", txn.Narration),
		)
		return false, nil
	}

	resp := optional(response)
	switch status {
	case paystack.StatusSuccess:
		return r.settle(ctx, txn, resp)
	case paystack.StatusFailed:
		return r.transition(ctx, txn, openStatuses, models.TransactionStatusFailed, resp)
	case statusReversed:
		return r.transition(ctx, txn, successStatus, models.TransactionStatusReversed, resp)
	default:
		return r.transition(ctx, txn, initiatedStatus, models.TransactionStatusPending, resp)
	}
}

// settle moves an open transaction to SUCCESS together with its side effect.
// Only funding transactions activate their giveaway.
func (r *Reconciler) settle(ctx context.Context, txn *models.Transaction, resp *string) (bool, error) {
	var (
		changed bool
		err     error
	)
	switch txn.Kind() {
	case models.KindTopUp:
		changed, err = r.txns.SettleTopUp(ctx, txn.ID, resp)
	case models.KindCredit:
		changed, err = r.txns.SettleCredit(ctx, txn.ID, resp)
	default:
		changed, err = r.txns.Transition(ctx, txn.ID, openStatuses, models.TransactionStatusSuccess, resp)
	}
	if err != nil {
		r.logger.Error("Failed to settle transaction", zap.String("reference", txn.ID), zap.Error(err))
		return false, errors.NewDatabaseError("settle transaction", err).WithDetail("reference", txn.ID)
	}
	r.record(txn, models.TransactionStatusSuccess, changed)
	return changed, nil
}

func (r *Reconciler) transition(ctx context.Context, txn *models.Transaction, from []models.TransactionStatus, to models.TransactionStatus, resp *string) (bool, error) {
	changed, err := r.txns.Transition(ctx, txn.ID, from, to, resp)
	if err != nil {
		r.logger.Error("Failed to transition transaction",
			zap.String("reference", txn.ID),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return false, errors.NewDatabaseError("transition transaction", err).WithDetail("reference", txn.ID)
	}
	r.record(txn, to, changed)
	return changed, nil
}

func (r *Reconciler) record(txn *models.Transaction, to models.TransactionStatus, changed bool) {
	if !changed {
		r.logger.Debug("Transaction already transitioned",
			zap.String("reference", txn.ID),
			zap.String("to", string(to)),
		)
		return
	}
	r.metrics.TransactionTransitioned(string(txn.Kind()), string(to))
	r.logger.Info("Transaction transitioned",
		zap.String("reference", txn.ID),
		zap.String("giveaway_id", txn.GiveawayID),
		zap.String("from", string(txn.Status)),
		zap.String("to", string(to)),
	)
}

func (r *Reconciler) load(ctx context.Context, reference string) (*models.Transaction, error) {
	txn, err := r.txns.GetByID(ctx, reference)
	if err != nil {
		if stderrors.Is(err, repository.ErrTransactionNotFound) {
			r.logger.Warn("No transaction found for reference", zap.String("reference", reference))
			return nil, errors.NewTransactionNotFoundError(reference)
		}
		return nil, errors.NewDatabaseError("get transaction", err).WithDetail("reference", reference)
	}
	return txn, nil
}

func (r *Reconciler) outcome(txn *models.Transaction) *VerifyOutcome {
	out := &VerifyOutcome{Reference: txn.ID, GiveawayID: txn.GiveawayID, Status: txn.Status}
	switch txn.Status {
	case models.TransactionStatusSuccess:
		out.Message = msgTopUpSuccess
	case models.TransactionStatusFailed, models.TransactionStatusReversed:
		out.Message = msgTopUpFailed
	default:
		out.Message = msgTopUpPending
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
