// internal/domain/delivery/types.go
package delivery

// Borough is one of the three delivery regions
type Borough string

const (
	BoroughBrooklyn  Borough = "brooklyn"
	BoroughQueens    Borough = "queens"
	BoroughManhattan Borough = "manhattan"
	BoroughNone      Borough = ""
)

// Valid reports whether the borough is one of the known regions
func (b Borough) Valid() bool {
	switch b {
	case BoroughBrooklyn, BoroughQueens, BoroughManhattan:
		return true
	}
	return false
}

// Tier is the delivery speed class
type Tier string

const (
	TierExpress  Tier = "express"
	TierStandard Tier = "standard"
	TierEconomy  Tier = "economy"
)

// Valid reports whether the tier is known
func (t Tier) Valid() bool {
	switch t {
	case TierExpress, TierStandard, TierEconomy:
		return true
	}
	return false
}

// RequiresSchedule reports whether the tier needs a scheduled window
func (t Tier) RequiresSchedule() bool {
	return t == TierEconomy
}

// TierOption describes a delivery tier for display. DisplaySurcharge is
// advisory only: the committed delivery fee depends on borough and
// membership, never on tier.
type TierOption struct {
	ID               Tier   `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	DisplaySurcharge string `json:"display_surcharge,omitempty"`
	NeedsSchedule    bool   `json:"needs_schedule"`
}

// TierOptions lists the offered delivery tiers
func TierOptions() []TierOption {
	return []TierOption{
		{
			ID:               TierExpress,
			Name:             "Express",
			Description:      "Delivery within 2 hours",
			DisplaySurcharge: "+30%",
		},
		{
			ID:          TierStandard,
			Name:        "Standard",
			Description: "Same-day delivery",
		},
		{
			ID:            TierEconomy,
			Name:          "Economy",
			Description:   "Scheduled delivery, pick a day and window",
			NeedsSchedule: true,
		},
	}
}

// Address is the delivery destination for one checkout
type Address struct {
	Text      string   `json:"text"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Borough   Borough  `json:"borough"`
}
