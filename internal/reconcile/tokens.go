package reconcile

import (
	"sort"
	"sync"
	"time"

	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"go.uber.org/zap"
)

// TokenStore owns the tracked-token collection, keyed by mint. It follows
// the same snapshot-plus-patch discipline as the position Store, with the
// token lifecycle (unlaunched → bonding → graduated) kept monotonic.
type TokenStore struct {
	mu             sync.RWMutex
	tokens         map[string]*domain.TrackedToken
	refresh        RefreshFunc
	refreshPending bool
	logger         *zap.Logger
}

// NewTokenStore creates an empty token store.
func NewTokenStore(refresh RefreshFunc, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		tokens:  make(map[string]*domain.TrackedToken),
		refresh: refresh,
		logger:  logger,
	}
}

// LoadSnapshot replaces the collection with an authoritative bulk read.
func (ts *TokenStore) LoadSnapshot(tokens []domain.TrackedToken) {
	next := make(map[string]*domain.TrackedToken, len(tokens))
	for i := range tokens {
		t := tokens[i]
		deriveToken(&t)
		next[t.Mint] = &t
	}

	ts.mu.Lock()
	ts.tokens = next
	ts.refreshPending = false
	ts.mu.Unlock()

	ts.logger.Info("token snapshot loaded", zap.Int("count", len(tokens)))
}

// ApplyEvent merges one feed event, keyed by the event's mint (falling back
// to the entity id for feeds that put the mint there).
func (ts *TokenStore) ApplyEvent(ev domain.Event) ApplyResult {
	mint := ev.Mint
	if mint == "" {
		mint = string(ev.ID)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, ok := ts.tokens[mint]
	if !ok {
		if ev.Kind == domain.EventCreated {
			if !ts.refreshPending && ts.refresh != nil {
				ts.refreshPending = true
				go ts.refresh()
			}
			return Deferred
		}
		return Unknown
	}

	changed := false
	changed = patchFloat(&t.CurrentPrice, ev.CurrentPrice) || changed
	changed = patchFloat(&t.MarketCapSOL, ev.MarketCapSOL) || changed
	changed = patchFloat(&t.BondingProgress, ev.BondingProgress) || changed
	if ev.Graduated != nil && *ev.Graduated {
		changed = true
		t.Phase = domain.TokenGraduated
	}
	if !changed {
		return Applied
	}

	t.UpdatedAt = now(ev)
	deriveToken(t)
	return Applied
}

// deriveToken recomputes lifecycle phase and gain after a merge. Phase only
// moves forward: a stale bonding update cannot demote a graduated token.
func deriveToken(t *domain.TrackedToken) {
	phase := t.Phase
	if phase == "" {
		phase = domain.TokenUnlaunched
	}
	if phase != domain.TokenGraduated && (t.BondingProgress > 0 || t.CurrentPrice > 0) {
		phase = domain.TokenBonding
	}
	if phase.Rank() >= t.Phase.Rank() {
		t.Phase = phase
	}

	if t.DiscoveryPrice > 0 {
		gain := (t.CurrentPrice - t.DiscoveryPrice) / t.DiscoveryPrice * 100
		t.GainPercent = &gain
	} else {
		t.GainPercent = nil
	}
}

func now(ev domain.Event) time.Time {
	if t := ev.Timestamp(); !t.IsZero() {
		return t
	}
	return time.Now()
}

// Get returns a copy of one token.
func (ts *TokenStore) Get(mint string) (domain.TrackedToken, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	t, ok := ts.tokens[mint]
	if !ok {
		return domain.TrackedToken{}, false
	}
	return *t, true
}

// List returns copies of every token, newest discovery first, mint as the
// deterministic tiebreak.
func (ts *TokenStore) List() []domain.TrackedToken {
	ts.mu.RLock()
	out := make([]domain.TrackedToken, 0, len(ts.tokens))
	for _, t := range ts.tokens {
		out = append(out, *t)
	}
	ts.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DiscoveredAt.Equal(out[j].DiscoveredAt) {
			return out[i].DiscoveredAt.After(out[j].DiscoveredAt)
		}
		return out[i].Mint < out[j].Mint
	})
	return out
}

// Len returns the number of tracked tokens.
func (ts *TokenStore) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.tokens)
}
