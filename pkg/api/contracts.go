// Package api defines the shared wire contracts for the recommendation backend.
// Every shape here mirrors the backend's JSON exactly; this client never
// recomputes prices, it only validates them at the boundary.
package api

import (
	"github.com/shopspring/decimal"

	"bundle-wizard/pkg/errors"
)

// RecommendationCandidate represents one bundled offer produced by the
// backend: mobile plans for each household line plus optional home internet
// and TV, with a computed monthly price and discount breakdown.
type RecommendationCandidate struct {
	ComboLabel   string                  `json:"combo_label"`
	Items        RecommendationItems     `json:"items"`
	MonthlyTotal float64                 `json:"monthly_total"`
	Savings      float64                 `json:"savings"`
	Reasoning    string                  `json:"reasoning"`
	Discounts    RecommendationDiscounts `json:"discounts"`
}

// RecommendationItems holds the components of a candidate.
type RecommendationItems struct {
	Mobile []MobilePlanAssignment `json:"mobile"`
	Home   *HomePlan              `json:"home,omitempty"`
	TV     *TVPlan                `json:"tv,omitempty"`
}

// MobilePlanAssignment maps a mobile plan onto a specific household line.
type MobilePlanAssignment struct {
	LineID     string     `json:"line_id"`
	Plan       MobilePlan `json:"plan"`
	LineCost   float64    `json:"line_cost"` // including overage
	OverageGB  float64    `json:"overage_gb"`
	OverageMin float64    `json:"overage_min"`
}

// RecommendationDiscounts is the discount breakdown applied to a candidate.
type RecommendationDiscounts struct {
	LineDiscount   float64 `json:"line_discount"`   // extra line discount amount
	BundleDiscount float64 `json:"bundle_discount"` // bundle discount amount
	TotalDiscount  float64 `json:"total_discount"`  // must equal line + bundle
}

// MobilePlan describes a mobile tariff.
type MobilePlan struct {
	PlanID       int     `json:"plan_id"`
	PlanName     string  `json:"plan_name"`
	QuotaGB      float64 `json:"quota_gb"`
	QuotaMin     float64 `json:"quota_min"`
	MonthlyPrice float64 `json:"monthly_price"`
	OverageGB    float64 `json:"overage_gb"`
	OverageMin   float64 `json:"overage_min"`
}

// HomePlan describes a home internet tariff bound to one technology.
type HomePlan struct {
	HomeID       int     `json:"home_id"`
	Name         string  `json:"name"`
	Tech         string  `json:"tech"`
	DownMbps     int     `json:"down_mbps"`
	MonthlyPrice float64 `json:"monthly_price"`
	InstallFee   float64 `json:"install_fee"`
}

// TVPlan describes a TV tariff.
type TVPlan struct {
	TVID            int     `json:"tv_id"`
	Name            string  `json:"name"`
	HDHoursIncluded float64 `json:"hd_hours_included"`
	MonthlyPrice    float64 `json:"monthly_price"`
}

// moneyEpsilon absorbs binary float round-off in backend-computed sums.
// The backend adds prices as float64, so its totals can differ from an
// exact decimal sum by ~1e-13. Genuine contract breaks are whole cents.
var moneyEpsilon = decimal.New(1, -6)

func moneyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(moneyEpsilon)
}

// Validate checks the pricing invariants the backend guarantees. Candidates
// that fail are a contract violation and must not be shown to the user.
// Comparisons tolerate float round-off but nothing near a real cent.
func (c *RecommendationCandidate) Validate() error {
	if c.MonthlyTotal < 0 {
		return errors.NewContractError("monthly_total is negative")
	}
	if c.Savings < 0 {
		return errors.NewContractError("savings is negative")
	}

	d := c.Discounts
	if d.LineDiscount < 0 || d.BundleDiscount < 0 {
		return errors.NewContractError("discount component is negative")
	}

	lineD := decimal.NewFromFloat(d.LineDiscount)
	bundleD := decimal.NewFromFloat(d.BundleDiscount)
	totalD := decimal.NewFromFloat(d.TotalDiscount)
	if !moneyEqual(lineD.Add(bundleD), totalD) {
		return errors.NewContractError("total_discount does not equal line_discount + bundle_discount")
	}

	gross := decimal.Zero
	for _, m := range c.Items.Mobile {
		gross = gross.Add(decimal.NewFromFloat(m.LineCost))
	}
	if c.Items.Home != nil {
		gross = gross.Add(decimal.NewFromFloat(c.Items.Home.MonthlyPrice))
	}
	if c.Items.TV != nil {
		gross = gross.Add(decimal.NewFromFloat(c.Items.TV.MonthlyPrice))
	}

	if !moneyEqual(gross.Sub(totalD), decimal.NewFromFloat(c.MonthlyTotal)) {
		return errors.NewContractError("monthly_total is inconsistent with item costs minus discounts")
	}
	return nil
}
