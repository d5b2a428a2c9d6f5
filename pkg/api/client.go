package api

// CRM CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrDisabled is returned when no CRM base URL is configured.
var ErrDisabled = errors.New("crm client disabled")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

type LeadRequest struct {
	PublicID    string  `json:"public_id"`
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username,omitempty"`
	Length      float64 `json:"length_m"`
	Width       float64 `json:"width_m"`
	Height      float64 `json:"height_m"`
	CabinetType string  `json:"cabinet_type"`
	Material    string  `json:"material"`
	TotalArea   float64 `json:"total_area"`
	TotalPrice  int64   `json:"total_price"`
	Contact     string  `json:"contact"`
}

type LeadResponse struct {
	ID string `json:"id"`
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CreateLead forwards a captured lead and returns the CRM's id for it.
func (c *Client) CreateLead(ctx context.Context, lead LeadRequest) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/api/leads", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result LeadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("Lead forwarded to CRM",
		zap.String("public_id", lead.PublicID),
		zap.String("crm_id", result.ID))
	return result.ID, nil
}
