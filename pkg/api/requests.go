// Request/response shapes for the recommendation and checkout operations.
package api

// HouseholdLine is one line of the household as entered in the setup step.
type HouseholdLine struct {
	LineID      string  `json:"line_id"`
	ExpectedGB  float64 `json:"expected_gb"`
	ExpectedMin float64 `json:"expected_min"`
	TVHDHours   float64 `json:"tv_hd_hours"`
}

// RecommendationRequest is the input for the recommendation endpoint.
type RecommendationRequest struct {
	UserID     int             `json:"user_id"`
	AddressID  string          `json:"address_id"`
	Household  []HouseholdLine `json:"household"`
	PreferTech []string        `json:"prefer_tech,omitempty"`
}

// RecommendationResponse carries at most the top three candidates, best first.
type RecommendationResponse struct {
	Top3 []RecommendationCandidate `json:"top3"`
}

// MaxCandidates is the most candidates a recommendation response may carry.
const MaxCandidates = 3

// CheckoutRequest submits an order. SelectedCombo is a full snapshot of the
// chosen candidate, not a reference, so the order survives cache eviction.
type CheckoutRequest struct {
	UserID        int                     `json:"user_id"`
	SelectedCombo RecommendationCandidate `json:"selected_combo"`
	SlotID        string                  `json:"slot_id"`
	AddressID     string                  `json:"address_id"`
}

// CheckoutResponse is the terminal result of a successful order.
type CheckoutResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
}

// HealthResponse reports backend liveness; display only, never gates actions.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Service  string `json:"service"`
	Version  string `json:"version"`
}

// ErrorResponse is the structured error envelope every non-2xx body uses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the backend-defined error code and context.
type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
