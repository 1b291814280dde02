// Package actions sends manual trade commands to the bot backend.
//
// Commands are fire-and-confirm: the backend acknowledges acceptance, and
// the actual state change arrives later through the event feed once the
// trade is observed on-chain. Nothing here mutates local dashboard state.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// Result is the backend's acknowledgement of a command.
type Result struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
}

// Client sends manual actions over the REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an action client for the given API base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// Sell requests a partial (or full, percent == 100) liquidation of one
// position.
func (c *Client) Sell(ctx context.Context, positionID string, percent float64) (Result, error) {
	if percent <= 0 || percent > 100 {
		return Result{}, fmt.Errorf("sell percent out of range: %v", percent)
	}

	payload, err := json.Marshal(map[string]float64{"percent": percent})
	if err != nil {
		return Result{}, err
	}

	url := c.baseURL + "/api/positions/" + positionID + "/sell"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("sell command failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return Result{}, fmt.Errorf("sell command rejected: status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode sell response: %w", err)
	}

	c.logger.Info("sell command acknowledged",
		zap.String("position_id", positionID),
		zap.Float64("percent", percent),
		zap.Bool("accepted", result.Accepted))
	return result, nil
}
