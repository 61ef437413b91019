package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tickerdesk/internal/db"
)

// Tier is the user's subscription level as mirrored from the backend.
// It is advisory UI state only; authorization is enforced server-side.
type Tier string

const (
	TierFree          Tier = "free"
	TierPro           Tier = "pro"
	TierEnterprise    Tier = "enterprise"
	TierInstitutional Tier = "institutional"
)

// rank orders tiers for gating comparisons.
var rank = map[Tier]int{
	TierFree:          0,
	TierPro:           1,
	TierEnterprise:    2,
	TierInstitutional: 3,
}

// ParseTier normalizes a backend plan string, falling back to free for
// anything unrecognized.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rank[t]; ok {
		return t
	}
	return TierFree
}

// AtLeast reports whether t meets or exceeds the required tier.
func (t Tier) AtLeast(required Tier) bool {
	return rank[t] >= rank[required]
}

// PlanClient is the slice of the backend client the manager needs.
type PlanClient interface {
	UserPlan(ctx context.Context) (string, error)
}

const (
	cacheKey   = "user_plan"
	defaultTTL = 10 * time.Minute
)

// Manager mirrors the backend plan into a local cache so UI affordances
// keep working across restarts and backend hiccups.
type Manager struct {
	client PlanClient
	db     *db.DB
	ttl    time.Duration

	mu        sync.Mutex
	cached    Tier
	fetchedAt time.Time
}

// NewManager creates a plan Manager. The database may be nil, in which
// case the mirror lives in memory only.
func NewManager(client PlanClient, database *db.DB) *Manager {
	m := &Manager{client: client, db: database, ttl: defaultTTL, cached: TierFree}
	m.loadPersisted()
	return m
}

// SetTTL overrides how long a fetched plan is trusted before re-fetching.
func (m *Manager) SetTTL(ttl time.Duration) { m.ttl = ttl }

// Current returns the user's tier, serving from cache within the TTL and
// otherwise refreshing from the backend. A failed refresh falls back to
// the last known value rather than erroring: the tier only toggles UI.
func (m *Manager) Current(ctx context.Context) Tier {
	m.mu.Lock()
	fresh := !m.fetchedAt.IsZero() && time.Since(m.fetchedAt) < m.ttl
	cached := m.cached
	m.mu.Unlock()

	if fresh {
		return cached
	}

	tier, err := m.Refresh(ctx)
	if err != nil {
		log.Printf("plan: refresh failed, using cached %q: %v", cached, err)
		return cached
	}
	return tier
}

// Refresh forces a fetch from the backend and updates the mirror.
func (m *Manager) Refresh(ctx context.Context) (Tier, error) {
	raw, err := m.client.UserPlan(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching user plan: %w", err)
	}
	tier := ParseTier(raw)

	m.mu.Lock()
	m.cached = tier
	m.fetchedAt = time.Now()
	m.mu.Unlock()

	m.persist(tier)
	return tier, nil
}

// loadPersisted seeds the mirror from the kv cache without marking it
// fresh, so the first Current still re-fetches.
func (m *Manager) loadPersisted() {
	if m.db == nil {
		return
	}
	var value string
	err := m.db.QueryRow("SELECT value FROM kv_cache WHERE key = ?", cacheKey).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("plan: reading cached plan: %v", err)
		}
		return
	}
	m.cached = ParseTier(value)
}

func (m *Manager) persist(tier Tier) {
	if m.db == nil {
		return
	}
	_, err := m.db.Exec(`
		INSERT INTO kv_cache (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		cacheKey, string(tier))
	if err != nil {
		log.Printf("plan: persisting plan: %v", err)
	}
}
