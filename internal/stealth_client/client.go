package stealth_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ActivationRequest asks the notification service to open a stealth
// window: a time-boxed suppression of notifications about the affected
// accounts.
type ActivationRequest struct {
	FamilyID        string   `json:"family_id"`
	TicketID        string   `json:"ticket_id"`
	AffectedUserIDs []string `json:"affected_user_ids"`
	AgentID         string   `json:"agent_id"`
	DurationMinutes int64    `json:"duration_minutes,omitempty"`
}

// Client for the stealth-window activation endpoint of the notification
// service.
type Client struct {
	baseURL         string
	durationMinutes int64
	httpClient      *http.Client
	logger          *zap.Logger
}

// NewClient creates a new stealth-window client.
func NewClient(baseURL string, durationMinutes int64, logger *zap.Logger) *Client {
	return &Client{
		baseURL:         baseURL,
		durationMinutes: durationMinutes,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Activate starts the suppression window.
func (c *Client) Activate(ctx context.Context, req ActivationRequest) error {
	if req.DurationMinutes == 0 {
		req.DurationMinutes = c.durationMinutes
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode activation request: %w", err)
	}

	url := fmt.Sprintf("%s/stealth-window/activate", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Failed to create stealth window request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Failed to reach stealth window service", zap.Error(err))
		return fmt.Errorf("failed to reach stealth window service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		c.logger.Error("Stealth window service returned non-OK status", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("stealth window service returned status: %d", resp.StatusCode)
	}

	c.logger.Info("Stealth window activated",
		zap.String("family_id", req.FamilyID),
		zap.Int64("duration_minutes", req.DurationMinutes))
	return nil
}
