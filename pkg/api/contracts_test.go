package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-wizard/pkg/errors"
)

// validCandidate builds a candidate whose prices satisfy every invariant:
// 120.50 + 89.90 + 49.90 gross, 30.30 total discount, 230.00 monthly.
func validCandidate() RecommendationCandidate {
	return RecommendationCandidate{
		ComboLabel: "Fiber Family Bundle",
		Items: RecommendationItems{
			Mobile: []MobilePlanAssignment{
				{
					LineID: "line-1",
					Plan: MobilePlan{
						PlanID: 3, PlanName: "Mega 20GB", QuotaGB: 20, QuotaMin: 750,
						MonthlyPrice: 110, OverageGB: 10.5, OverageMin: 0.5,
					},
					LineCost: 120.50, OverageGB: 1, OverageMin: 0,
				},
			},
			Home: &HomePlan{
				HomeID: 7, Name: "Fiber 100", Tech: TechFiber, DownMbps: 100,
				MonthlyPrice: 89.90, InstallFee: 0,
			},
			TV: &TVPlan{TVID: 2, Name: "TV+ Standard", HDHoursIncluded: 50, MonthlyPrice: 49.90},
		},
		MonthlyTotal: 230.00,
		Savings:      30.30,
		Reasoning:    "Fiber is available at your address and covers the household's TV hours.",
		Discounts: RecommendationDiscounts{
			LineDiscount:   10.00,
			BundleDiscount: 20.30,
			TotalDiscount:  30.30,
		},
	}
}

func TestCandidateRoundTrip(t *testing.T) {
	orig := validCandidate()

	raw, err := json.Marshal(orig)
	require.NoError(t, err)

	var got RecommendationCandidate
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, orig, got)
}

func TestCandidateValidate(t *testing.T) {
	t.Run("consistent candidate passes", func(t *testing.T) {
		c := validCandidate()
		assert.NoError(t, c.Validate())
	})

	t.Run("broken discount sum is a contract violation", func(t *testing.T) {
		c := validCandidate()
		c.Discounts.TotalDiscount = 31.00

		err := c.Validate()
		require.Error(t, err)
		apiErr, ok := errors.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeContractViolation, apiErr.Code)
	})

	t.Run("monthly total must match items minus discounts", func(t *testing.T) {
		c := validCandidate()
		c.MonthlyTotal = 200.00

		err := c.Validate()
		require.Error(t, err)
	})

	t.Run("negative figures rejected", func(t *testing.T) {
		for name, mutate := range map[string]func(*RecommendationCandidate){
			"monthly_total": func(c *RecommendationCandidate) { c.MonthlyTotal = -1 },
			"savings":       func(c *RecommendationCandidate) { c.Savings = -0.01 },
			"line_discount": func(c *RecommendationCandidate) { c.Discounts.LineDiscount = -5 },
		} {
			c := validCandidate()
			mutate(&c)
			assert.Error(t, c.Validate(), name)
		}
	})

	t.Run("mobile-only candidate validates without home and tv", func(t *testing.T) {
		c := validCandidate()
		c.Items.Home = nil
		c.Items.TV = nil
		c.MonthlyTotal = 90.20
		c.Discounts = RecommendationDiscounts{LineDiscount: 30.30, BundleDiscount: 0, TotalDiscount: 30.30}

		assert.NoError(t, c.Validate())
	})
}

// TestCandidateValidateAcceptsFloatComputedTotals mirrors how the backend
// actually produces its figures: plain float64 adds and multiplies over
// realistic prices. The resulting sums carry binary round-off, so they must
// still pass validation while a real one-cent break must not.
func TestCandidateValidateAcceptsFloatComputedTotals(t *testing.T) {
	prices := []float64{49.9, 59.9, 79.9, 99.9, 129.9}
	rates := []float64{0.10, 0.15, 0.20}

	build := func(p1, p2, home, rate float64) RecommendationCandidate {
		lineD := p2 * 0.05
		gross := p1 + p2 + home
		bundleD := (gross - lineD) * rate
		return RecommendationCandidate{
			ComboLabel: "Float Combo",
			Items: RecommendationItems{
				Mobile: []MobilePlanAssignment{
					{LineID: "l1", LineCost: p1},
					{LineID: "l2", LineCost: p2},
				},
				Home: &HomePlan{HomeID: 1, Name: "Home", Tech: TechFiber, MonthlyPrice: home},
			},
			MonthlyTotal: gross - (lineD + bundleD),
			Discounts: RecommendationDiscounts{
				LineDiscount:   lineD,
				BundleDiscount: bundleD,
				TotalDiscount:  lineD + bundleD,
			},
		}
	}

	for _, p1 := range prices {
		for _, p2 := range prices {
			for _, home := range prices {
				for _, rate := range rates {
					c := build(p1, p2, home, rate)
					assert.NoErrorf(t, c.Validate(),
						"p1=%v p2=%v home=%v rate=%v", p1, p2, home, rate)
				}
			}
		}
	}

	t.Run("a real cent of drift still fails", func(t *testing.T) {
		c := build(49.9, 49.9, 49.9, 0.15)
		c.Discounts.TotalDiscount += 0.01
		assert.Error(t, c.Validate())

		c = build(49.9, 49.9, 49.9, 0.15)
		c.MonthlyTotal -= 0.01
		assert.Error(t, c.Validate())
	})
}

func TestDefaultTechOrder(t *testing.T) {
	assert.Equal(t, []string{"fiber", "vdsl", "fwa"}, DefaultTechOrder())

	// Callers may reorder their copy without affecting the default.
	order := DefaultTechOrder()
	order[0] = "vdsl"
	assert.Equal(t, "fiber", DefaultTechOrder()[0])
}
