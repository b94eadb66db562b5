package client

import (
	"compliance-registry/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GatewayClient interface {
	InitiateSale(ctx context.Context, req *SaleRequest) (*SaleResponse, error)
	QueryStatus(ctx context.Context, orderID, transID, hash string) (map[string]any, error)
}

// SaleRequest carries the already-signed order fields for the gateway's
// SALE action. Amount must be formatted with exactly two decimals.
type SaleRequest struct {
	OrderID     string
	Amount      string
	Currency    string
	Description string
	Hash        string

	PayerFirstName string
	PayerLastName  string
	PayerEmail     string
	PayerPhone     string
	PayerIP        string

	TermURL string // callback/return URL for 3DS continuation
}

type SaleResponse struct {
	RedirectURL string `json:"redirect_url"`
}

type gatewayClientImpl struct {
	httpClient *http.Client
	merchantID string
	paymentURL string
	statusURL  string
}

func NewGatewayClient(cfg *config.Gateway) GatewayClient {
	return &gatewayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		merchantID: cfg.MerchantID,
		paymentURL: cfg.PaymentURL,
		statusURL:  cfg.StatusURL,
	}
}

func (c *gatewayClientImpl) InitiateSale(ctx context.Context, sale *SaleRequest) (*SaleResponse, error) {
	form := url.Values{}
	form.Set("action", "SALE")
	form.Set("edfa_merchant_id", c.merchantID)
	form.Set("order_id", sale.OrderID)
	form.Set("order_amount", sale.Amount)
	form.Set("order_currency", sale.Currency)
	form.Set("order_description", sale.Description)
	form.Set("payer_first_name", sale.PayerFirstName)
	form.Set("payer_last_name", sale.PayerLastName)
	form.Set("payer_email", sale.PayerEmail)
	form.Set("payer_phone", sale.PayerPhone)
	form.Set("payer_ip", sale.PayerIP)
	form.Set("payer_country", "SA")
	form.Set("payer_city", "Riyadh")
	form.Set("payer_address", "Riyadh")
	form.Set("payer_zip", "12221")
	form.Set("term_url_3ds", sale.TermURL)
	form.Set("recurring_init", "N")
	form.Set("req_token", "N")
	form.Set("auth", "N")
	form.Set("hash", sale.Hash)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.paymentURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway sale returned %d: %s", resp.StatusCode, string(body))
	}

	var result SaleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if result.RedirectURL == "" {
		return nil, fmt.Errorf("gateway response missing redirect_url")
	}

	return &result, nil
}

func (c *gatewayClientImpl) QueryStatus(ctx context.Context, orderID, transID, hash string) (map[string]any, error) {
	payload := map[string]string{
		"order_id":        orderID,
		"merchant_id":     c.merchantID,
		"gway_Payment_Id": transID,
		"hash":            hash,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal status payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.statusURL,
		strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode gateway status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status returned %d: %v", resp.StatusCode, result)
	}

	return result, nil
}
