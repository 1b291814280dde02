// Package snapshot fetches authoritative bulk state over request/response.
//
// The snapshot is the only source that carries complete entity records; the
// push feed only ever patches them. Fetch failures are recoverable by
// design: the caller keeps its previous state and retries later.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/solana-dashboard/internal/candles"
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	requestTimeout = 10 * time.Second
	maxRetryWindow = 15 * time.Second
)

// TransportError wraps fetch failures so the UI boundary can distinguish
// them from validation noise. State is never cleared on a TransportError.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("snapshot fetch %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client is the REST snapshot client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a snapshot client for the given API base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// positionRecord is the wire shape of one position. Timestamps travel as
// unix milliseconds; zero means unset.
type positionRecord struct {
	ID         domain.FlexID `json:"id"`
	Mint       string        `json:"mint"`
	Symbol     string        `json:"symbol"`
	Wallet     string        `json:"wallet"`
	SourceChat string        `json:"source_chat"`
	Status     string        `json:"status"`

	Balance       float64 `json:"balance"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	CurrentPrice  float64 `json:"current_price"`
	InvestedSOL   float64 `json:"invested_sol"`
	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`

	PeakPrice     float64 `json:"peak_price"`
	StopLoss      float64 `json:"stop_loss"`
	TakeProfit    float64 `json:"take_profit"`
	TrailingArmed bool    `json:"trailing_armed"`

	DiscoveredAt int64  `json:"discovered_at"`
	FirstTradeAt int64  `json:"first_trade_at"`
	ClosedAt     int64  `json:"closed_at"`
	CloseReason  string `json:"close_reason"`
}

type tokenRecord struct {
	Mint       string `json:"mint"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	SourceChat string `json:"source_chat"`
	Phase      string `json:"phase"`

	BondingProgress float64 `json:"bonding_progress"`
	DiscoveryPrice  float64 `json:"discovery_price"`
	CurrentPrice    float64 `json:"current_price"`
	MarketCapSOL    float64 `json:"market_cap_sol"`

	DiscoveredAt int64 `json:"discovered_at"`
}

// Positions fetches the full position snapshot. Records that fail basic
// validation (unknown status, unparseable mint) are dropped and logged,
// never fatal.
func (c *Client) Positions(ctx context.Context) ([]domain.Position, error) {
	records, err := fetchJSON[[]positionRecord](ctx, c, "/api/positions")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Position, 0, len(records))
	for _, r := range records {
		p, err := r.toDomain()
		if err != nil {
			c.logger.Warn("dropping invalid position record",
				zap.String("id", string(r.ID)), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *positionRecord) toDomain() (domain.Position, error) {
	status := domain.PositionStatus(r.Status)
	if !status.Valid() {
		return domain.Position{}, fmt.Errorf("unknown status %q", r.Status)
	}
	if err := domain.ValidateMint(r.Mint); err != nil {
		return domain.Position{}, err
	}

	return domain.Position{
		ID:            string(r.ID),
		TokenMint:     r.Mint,
		Symbol:        r.Symbol,
		Wallet:        r.Wallet,
		SourceChat:    r.SourceChat,
		Status:        status,
		Balance:       r.Balance,
		AvgEntryPrice: r.AvgEntryPrice,
		CurrentPrice:  r.CurrentPrice,
		InvestedSOL:   r.InvestedSOL,
		RealizedPnL:   r.RealizedPnL,
		UnrealizedPnL: r.UnrealizedPnL,
		PeakPrice:     r.PeakPrice,
		StopLoss:      r.StopLoss,
		TakeProfit:    r.TakeProfit,
		TrailingArmed: r.TrailingArmed,
		DiscoveredAt:  millis(r.DiscoveredAt),
		FirstTradeAt:  millis(r.FirstTradeAt),
		ClosedAt:      millis(r.ClosedAt),
		CloseReason:   r.CloseReason,
	}, nil
}

// Tokens fetches the tracked-token snapshot.
func (c *Client) Tokens(ctx context.Context) ([]domain.TrackedToken, error) {
	records, err := fetchJSON[[]tokenRecord](ctx, c, "/api/tokens")
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrackedToken, 0, len(records))
	for _, r := range records {
		if err := domain.ValidateMint(r.Mint); err != nil {
			c.logger.Warn("dropping invalid token record", zap.Error(err))
			continue
		}
		phase := domain.TokenPhase(r.Phase)
		if phase == "" {
			phase = domain.TokenUnlaunched
		}
		out = append(out, domain.TrackedToken{
			Mint:            r.Mint,
			Symbol:          r.Symbol,
			Name:            r.Name,
			SourceChat:      r.SourceChat,
			Phase:           phase,
			BondingProgress: r.BondingProgress,
			DiscoveryPrice:  r.DiscoveryPrice,
			CurrentPrice:    r.CurrentPrice,
			MarketCapSOL:    r.MarketCapSOL,
			DiscoveredAt:    millis(r.DiscoveredAt),
		})
	}
	return out, nil
}

// Candles fetches raw OHLCV samples for one mint. Output is raw on purpose:
// validation belongs to the normalizer, not the transport.
func (c *Client) Candles(ctx context.Context, mint string, limit int) ([]candles.RawCandle, error) {
	path := "/api/candles?mint=" + url.QueryEscape(mint) + "&limit=" + strconv.Itoa(limit)
	return fetchJSON[[]candles.RawCandle](ctx, c, path)
}

// fetchJSON runs one GET with exponential-backoff retries. Client errors
// (4xx) are permanent; everything else retries inside the window.
func fetchJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	operation := func() (T, error) {
		var zero T

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return zero, backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return zero, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return zero, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return zero, fmt.Errorf("status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return zero, err
		}
		var result T
		if err := json.Unmarshal(body, &result); err != nil {
			return zero, backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return result, nil
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxRetryWindow),
	)
	if err != nil {
		var zero T
		return zero, &TransportError{Endpoint: path, Err: err}
	}
	return result, nil
}

func millis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
