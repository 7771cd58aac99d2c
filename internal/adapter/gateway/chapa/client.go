package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bingo-backend/config"
	"bingo-backend/internal/core/ports"
	"bingo-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentGateway against the Chapa REST API.
// It performs no retries; callers own retry policy. Timeouts come from the
// injected HTTP client and surface as GatewayRequestError.
type Client struct {
	baseURL   string
	secretKey string
	http      HTTPClient
	log       zerolog.Logger
}

// NewClient creates a Chapa API client.
func NewClient(cfg config.ChapaConfig, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		http:      httpClient,
		log:       log,
	}
}

// envelope is the common Chapa response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type customization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type initializePayload struct {
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	TxRef         string            `json:"tx_ref"`
	CallbackURL   string            `json:"callback_url"`
	ReturnURL     string            `json:"return_url"`
	Customization customization     `json:"customization"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Initialize creates a hosted checkout session and returns the checkout URL.
func (c *Client) Initialize(ctx context.Context, req ports.InitializeRequest) (string, error) {
	payload := initializePayload{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Customization: customization{
			Title:       req.Title,
			Description: req.Description,
		},
		Metadata: req.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal initialize payload: %w", err)
	}

	env, err := c.call(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	if env.Status != "success" {
		return "", apperror.ErrGatewayBusiness(env.Message)
	}

	var data struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.CheckoutURL == "" {
		return "", apperror.ErrGatewayRequest(fmt.Errorf("initialize response missing checkout_url: %v", err))
	}

	c.log.Info().Str("tx_ref", req.TxRef).Str("amount", req.Amount.String()).Msg("chapa checkout session created")
	return data.CheckoutURL, nil
}

// Verify fetches the provider's verification outcome for a tx_ref. A payload
// with a non-success status is returned as a result, not an error.
func (c *Client) Verify(ctx context.Context, txRef string) (*ports.VerifyResult, error) {
	env, err := c.call(ctx, http.MethodGet, "/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, err
	}

	// The payment status lives inside data; the envelope status only says
	// whether the lookup itself succeeded.
	result := &ports.VerifyResult{Status: env.Status}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var data struct {
			Status   string          `json:"status"`
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
			Metadata map[string]any  `json:"metadata"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, apperror.ErrGatewayRequest(fmt.Errorf("decode verify data: %w", err))
		}
		if data.Status != "" {
			result.Status = data.Status
		}
		result.Amount = data.Amount
		result.Currency = data.Currency
		result.Metadata = data.Metadata
	}

	c.log.Debug().Str("tx_ref", txRef).Str("status", result.Status).Msg("chapa verification result")
	return result, nil
}

// call executes one authenticated request and decodes the Chapa envelope.
func (c *Client) call(ctx context.Context, method, path string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperror.ErrGatewayRequest(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.ErrGatewayRequest(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperror.ErrGatewayAuth(fmt.Errorf("chapa returned 401 for %s %s", method, path))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperror.ErrGatewayRequest(fmt.Errorf("read response body: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperror.ErrGatewayRequest(fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err))
	}
	if env.Status == "" {
		return nil, apperror.ErrGatewayRequest(fmt.Errorf("response missing status field (http %d)", resp.StatusCode))
	}

	return &env, nil
}
