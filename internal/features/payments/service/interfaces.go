package service

import (
	"context"

	"giveaway-settlement/internal/platform/paystack"
)

// Gateway is the subset of the Paystack adapter used by payments.
type Gateway interface {
	GenerateReference() string
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
	CreateTransferRecipient(ctx context.Context, r paystack.Recipient) (string, bool)
	InitiateBulkTransfer(ctx context.Context, transfers []paystack.Transfer) ([]paystack.TransferResult, error)
}
