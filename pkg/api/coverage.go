// Coverage and installation scheduling contracts.
package api

// Home internet technology codes, in the default preference order.
const (
	TechFiber = "fiber"
	TechVDSL  = "vdsl"
	TechFWA   = "fwa"
)

// DefaultTechOrder is the technology preference used until the user (or
// coverage data) says otherwise.
func DefaultTechOrder() []string {
	return []string{TechFiber, TechVDSL, TechFWA}
}

// CoverageInfo reports which technologies are physically available at an
// address. AvailableTech is ordered by priority; immutable once received.
type CoverageInfo struct {
	AddressID     string   `json:"address_id"`
	City          string   `json:"city"`
	District      string   `json:"district"`
	Fiber         bool     `json:"fiber"`
	VDSL          bool     `json:"vdsl"`
	FWA           bool     `json:"fwa"`
	AvailableTech []string `json:"available_tech"`
}

// InstallSlot is a bookable technician time window. Read-only to this client.
type InstallSlot struct {
	SlotID    string `json:"slot_id"`
	AddressID string `json:"address_id"`
	SlotStart string `json:"slot_start"`
	SlotEnd   string `json:"slot_end"`
	Tech      string `json:"tech"`
	Available bool   `json:"available"`
}

// InstallSlotsResponse lists the slots for one (address, tech) pair.
type InstallSlotsResponse struct {
	AddressID string        `json:"address_id"`
	Tech      string        `json:"tech"`
	Slots     []InstallSlot `json:"slots"`
}
