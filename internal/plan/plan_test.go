package plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"tickerdesk/internal/db"
)

type fakePlanClient struct {
	plan  string
	err   error
	calls int
}

func (f *fakePlanClient) UserPlan(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.plan, nil
}

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"free":          TierFree,
		"PRO":           TierPro,
		" enterprise ":  TierEnterprise,
		"institutional": TierInstitutional,
		"platinum":      TierFree,
		"":              TierFree,
	}
	for in, want := range cases {
		if got := ParseTier(in); got != want {
			t.Errorf("ParseTier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCurrentCachesWithinTTL(t *testing.T) {
	client := &fakePlanClient{plan: "pro"}
	m := NewManager(client, nil)
	m.SetTTL(time.Hour)

	ctx := context.Background()
	if tier := m.Current(ctx); tier != TierPro {
		t.Fatalf("expected pro, got %q", tier)
	}
	m.Current(ctx)
	m.Current(ctx)
	if client.calls != 1 {
		t.Errorf("expected 1 backend fetch within TTL, got %d", client.calls)
	}
}

func TestCurrentFallsBackOnFetchFailure(t *testing.T) {
	client := &fakePlanClient{plan: "enterprise"}
	m := NewManager(client, nil)
	m.SetTTL(0) // always stale

	ctx := context.Background()
	if tier := m.Current(ctx); tier != TierEnterprise {
		t.Fatalf("expected enterprise, got %q", tier)
	}

	client.err = errors.New("backend down")
	if tier := m.Current(ctx); tier != TierEnterprise {
		t.Errorf("expected cached enterprise on failure, got %q", tier)
	}
}

func TestPlanPersistsAcrossManagers(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	client := &fakePlanClient{plan: "institutional"}
	m1 := NewManager(client, database)
	if _, err := m1.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// A fresh manager with a dead backend still knows the mirrored tier.
	m2 := NewManager(&fakePlanClient{err: errors.New("down")}, database)
	m2.SetTTL(0)
	if tier := m2.Current(context.Background()); tier != TierInstitutional {
		t.Errorf("expected persisted institutional, got %q", tier)
	}
}

func TestGate(t *testing.T) {
	cases := []struct {
		feature Feature
		tier    Tier
		allowed bool
	}{
		{FeatureAnalysis, TierFree, true},
		{FeatureDeepAnalysis, TierFree, false},
		{FeatureDeepAnalysis, TierPro, true},
		{FeatureAIChat, TierFree, false},
		{FeatureRealtime, TierPro, false},
		{FeatureRealtime, TierEnterprise, true},
		{FeatureTerminal, TierEnterprise, false},
		{FeatureTerminal, TierInstitutional, true},
	}
	for _, tc := range cases {
		allowed, upsell := Gate(tc.feature, tc.tier)
		if allowed != tc.allowed {
			t.Errorf("Gate(%s, %s) = %v, want %v", tc.feature, tc.tier, allowed, tc.allowed)
		}
		if !allowed {
			if upsell == nil {
				t.Errorf("Gate(%s, %s): expected upsell payload", tc.feature, tc.tier)
				continue
			}
			if upsell.RequiredTier != RequiredTier(tc.feature) {
				t.Errorf("upsell tier %q != required %q", upsell.RequiredTier, RequiredTier(tc.feature))
			}
			if upsell.Message == "" {
				t.Errorf("upsell for %s has no message", tc.feature)
			}
		}
	}
}
