package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"giveaway-settlement/internal/common/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

type Config struct {
	BaseURL           string
	SecretKey         string
	CallbackURL       string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client is the Paystack API adapter. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewClient(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		logger:     logger.Named("paystack"),
		metrics:    m,
	}
}

// GenerateReference returns a new globally unique transaction reference.
func (c *Client) GenerateReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// InitializeTransaction starts a hosted card/bank charge and returns the authorization URL.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	payload := initializePayload{
		Reference:   req.Reference,
		Amount:      strconv.FormatInt(ToMinorUnits(req.Amount), 10),
		Currency:    Currency,
		Channels:    []string{"card", "bank"},
		CallbackURL: c.cfg.CallbackURL,
		Email:       req.Email,
	}

	var res InitializeResult
	if err := c.do(ctx, "initialize", http.MethodPost, "/transaction/initialize", payload, &res); err != nil {
		return nil, err
	}
	if res.AuthorizationURL == "" {
		return nil, &TransportError{Op: "initialize", Message: "authorization_url missing"}
	}
	if res.Reference == "" {
		res.Reference = req.Reference
	}
	return &res, nil
}

// VerifyTransaction fetches the gateway status of a charge.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	var res Verification
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, "verify", http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	if res.Status == "" {
		return nil, &TransportError{Op: "verify", Message: "status missing"}
	}
	if res.Reference == "" {
		res.Reference = reference
	}
	return &res, nil
}

// CreateTransferRecipient registers a bank account for payouts.
// Failures are logged and reported as ok=false so a batch can skip the account.
func (c *Client) CreateTransferRecipient(ctx context.Context, r Recipient) (string, bool) {
	payload := recipientPayload{
		Type:          RecipientNuban,
		Name:          r.Name,
		AccountNumber: r.AccountNumber,
		BankCode:      r.BankCode,
		Currency:      Currency,
	}

	var res struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := c.do(ctx, "create_recipient", http.MethodPost, "/transferrecipient", payload, &res); err != nil {
		c.logger.Warn("Failed to create transfer recipient",
			zap.String("account_number", r.AccountNumber),
			zap.String("bank_code", r.BankCode),
			zap.Error(err))
		return "", false
	}
	if res.RecipientCode == "" {
		c.logger.Warn("Transfer recipient created without code", zap.String("account_number", r.AccountNumber))
		return "", false
	}
	return res.RecipientCode, true
}

// InitiateBulkTransfer submits transfers from the balance in one request.
func (c *Client) InitiateBulkTransfer(ctx context.Context, transfers []Transfer) ([]TransferResult, error) {
	payload := bulkTransferPayload{
		Source:    TransferSource,
		Currency:  Currency,
		Transfers: make([]transferItem, 0, len(transfers)),
	}
	for _, t := range transfers {
		payload.Transfers = append(payload.Transfers, transferItem{
			Reference: t.Reference,
			Recipient: t.Recipient,
			Amount:    ToMinorUnits(t.Amount),
		})
	}

	var res []TransferResult
	if err := c.do(ctx, "bulk_transfer", http.MethodPost, "/transfer/bulk", payload, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ResolveAccount validates a bank account and returns the registered account name.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolvedAccount, error) {
	q := url.Values{}
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)

	var res ResolvedAccount
	err := c.do(ctx, "resolve_account", http.MethodGet, "/bank/resolve?"+q.Encode(), nil, &res)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500 && te.StatusCode != http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotResolved, te.Message)
		}
		return nil, err
	}
	if res.AccountName == "" {
		return nil, ErrAccountNotResolved
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveGateway(op, start, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paystack %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("paystack %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Gateway request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("Malformed gateway response",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err))
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		c.logger.Warn("Gateway rejected request",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", env.Message))
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return &TransportError{Op: op, StatusCode: resp.StatusCode, Message: "data missing"}
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
		}
	}

	c.logger.Debug("Gateway request completed",
		zap.String("op", op),
		zap.Duration("duration", time.Since(start)))
	return nil
}
