package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Gateway creates refunds against the external payment provider. The
// provider owns capture and settlement; this service only ever asks it to
// give money back.
type Gateway interface {
	// CreateRefund refunds part of a captured payment. Amounts are in minor
	// units (øre, cents) per the provider's contract.
	CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64, reason string) (*RefundResult, error)
}

// RefundResult is the provider's view of a created refund
type RefundResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client talks to the payment provider's REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a payment gateway client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type createRefundRequest struct {
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason,omitempty"`
}

// CreateRefund implements Gateway
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64, reason string) (*RefundResult, error) {
	body, err := json.Marshal(createRefundRequest{
		PaymentIntent: paymentIntentID,
		Amount:        amountMinor,
		Reason:        reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refund request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/refunds", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build refund request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Payment gateway rejected refund",
			zap.String("paymentIntentId", paymentIntentID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var result RefundResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	c.logger.Info("Refund created at payment gateway",
		zap.String("refundId", result.ID),
		zap.String("paymentIntentId", paymentIntentID),
		zap.Int64("amountMinor", amountMinor))

	return &result, nil
}
