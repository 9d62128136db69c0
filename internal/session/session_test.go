package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-wizard/pkg/api"
)

// Both backends satisfy the same contract.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

func sampleCandidate() *api.RecommendationCandidate {
	return &api.RecommendationCandidate{
		ComboLabel: "Fiber Family Bundle",
		Items: api.RecommendationItems{
			Mobile: []api.MobilePlanAssignment{
				{
					LineID:   "line-1",
					Plan:     api.MobilePlan{PlanID: 3, PlanName: "Mega 20GB", QuotaGB: 20, QuotaMin: 750, MonthlyPrice: 110},
					LineCost: 120.50,
				},
			},
			Home: &api.HomePlan{HomeID: 7, Name: "Fiber 100", Tech: "fiber", DownMbps: 100, MonthlyPrice: 89.90},
			TV:   &api.TVPlan{TVID: 2, Name: "TV+ Standard", HDHoursIncluded: 50, MonthlyPrice: 49.90},
		},
		MonthlyTotal: 230.00,
		Savings:      30.30,
		Reasoning:    "Covers the household's usage with room to spare.",
		Discounts:    api.RecommendationDiscounts{LineDiscount: 10, BundleDiscount: 20.30, TotalDiscount: 30.30},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	orig := sampleCandidate()

	require.NoError(t, s.SaveSelection(ctx, orig))

	got, ok, err := s.LoadSelection(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, orig, got, "selection must round-trip losslessly")
}

func TestMemoryStoreEmpty(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	got, ok, err := s.LoadSelection(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.SaveSelection(ctx, sampleCandidate()))
	require.NoError(t, s.ClearSelection(ctx))

	_, ok, err := s.LoadSelection(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	first := sampleCandidate()
	require.NoError(t, s.SaveSelection(ctx, first))

	second := sampleCandidate()
	second.ComboLabel = "VDSL Saver"
	require.NoError(t, s.SaveSelection(ctx, second))

	got, ok, err := s.LoadSelection(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "VDSL Saver", got.ComboLabel)
}
