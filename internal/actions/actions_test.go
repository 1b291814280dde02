package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSellSendsPercentAndReturnsAck(t *testing.T) {
	var gotPath string
	var gotBody map[string]float64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(Result{Accepted: true, Message: "queued"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	res, err := c.Sell(context.Background(), "pos-1", 50)
	require.NoError(t, err)

	assert.Equal(t, "/api/positions/pos-1/sell", gotPath)
	assert.Equal(t, 50.0, gotBody["percent"])
	assert.True(t, res.Accepted)
	assert.Equal(t, "queued", res.Message)
}

func TestSellRejectsBadPercent(t *testing.T) {
	c := NewClient("http://unused", zap.NewNop())
	for _, pct := range []float64{0, -5, 101} {
		_, err := c.Sell(context.Background(), "pos-1", pct)
		assert.Error(t, err, "percent %v", pct)
	}
}

func TestSellPropagatesBackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "position closed", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	_, err := c.Sell(context.Background(), "pos-1", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}
