// internal/models/contractor.go
package models

import (
	"fmt"
	"strings"
)

// DefaultServiceRadiusMiles applies when a contractor has not set a travel radius.
const DefaultServiceRadiusMiles = 30.0

// Trade is the closed set of labor trades a contractor can be booked for.
type Trade string

const (
	TradeGeneralContractor Trade = "general_contractor"
	TradePlumbing          Trade = "plumbing"
	TradeElectrical        Trade = "electrical"
	TradeHVAC              Trade = "hvac"
	TradeRoofing           Trade = "roofing"
	TradeCarpentry         Trade = "carpentry"
	TradePainting          Trade = "painting"
	TradeFlooring          Trade = "flooring"
	TradeDrywall           Trade = "drywall"
	TradeTile              Trade = "tile"
	TradeMasonry           Trade = "masonry"
	TradeCabinetry         Trade = "cabinetry"
	TradeWindowsDoors      Trade = "windows_doors"
	TradeInsulation        Trade = "insulation"
	TradeLandscaping       Trade = "landscaping"
	TradeDemolition        Trade = "demolition"
)

// AllTrades lists every valid Trade in display order.
var AllTrades = []Trade{
	TradeGeneralContractor,
	TradePlumbing,
	TradeElectrical,
	TradeHVAC,
	TradeRoofing,
	TradeCarpentry,
	TradePainting,
	TradeFlooring,
	TradeDrywall,
	TradeTile,
	TradeMasonry,
	TradeCabinetry,
	TradeWindowsDoors,
	TradeInsulation,
	TradeLandscaping,
	TradeDemolition,
}

func (t Trade) IsValid() bool {
	for _, known := range AllTrades {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTrade normalizes and validates a trade name.
func ParseTrade(s string) (Trade, error) {
	t := Trade(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown trade %q", s)
	}
	return t, nil
}

func (t *Trade) UnmarshalText(text []byte) error {
	parsed, err := ParseTrade(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ContractorStatus is the onboarding/account state of a contractor. Only active
// contractors are schedulable.
type ContractorStatus string

const (
	ContractorStatusActive    ContractorStatus = "active"
	ContractorStatusPending   ContractorStatus = "pending"
	ContractorStatusInactive  ContractorStatus = "inactive"
	ContractorStatusSuspended ContractorStatus = "suspended"
)

// Rating holds the five review sub-scores, each on a 0.0-5.0 scale.
type Rating struct {
	Overall       float64 `json:"overall" yaml:"overall" validate:"gte=0,lte=5"`
	Quality       float64 `json:"quality" yaml:"quality" validate:"gte=0,lte=5"`
	Timeliness    float64 `json:"timeliness" yaml:"timeliness" validate:"gte=0,lte=5"`
	Communication float64 `json:"communication" yaml:"communication" validate:"gte=0,lte=5"`
	Value         float64 `json:"value" yaml:"value" validate:"gte=0,lte=5"`
}

type Contractor struct {
	ID            string           `json:"id" yaml:"id" validate:"required"`
	BusinessName  string           `json:"businessName" yaml:"businessName" validate:"required"`
	Email         string           `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone         string           `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address       Address          `json:"address" yaml:"address"`
	Trades        []Trade          `json:"trades" yaml:"trades" validate:"dive,required"`
	Skills        []string         `json:"skills,omitempty" yaml:"skills,omitempty"`
	ServiceRadius float64          `json:"serviceRadius" yaml:"serviceRadius" validate:"gte=0"`
	Rating        Rating           `json:"rating" yaml:"rating"`
	Status        ContractorStatus `json:"status" yaml:"status" validate:"required,oneof=active pending inactive suspended"`
}

// EffectiveServiceRadius returns the travel radius in miles, falling back to
// DefaultServiceRadiusMiles when unset.
func (c Contractor) EffectiveServiceRadius() float64 {
	if c.ServiceRadius <= 0 {
		return DefaultServiceRadiusMiles
	}
	return c.ServiceRadius
}

func (c Contractor) IsActive() bool {
	return c.Status == ContractorStatusActive
}

// HasAnyTrade reports whether the contractor works at least one of trades.
func (c Contractor) HasAnyTrade(trades []Trade) bool {
	for _, want := range trades {
		for _, have := range c.Trades {
			if want == have {
				return true
			}
		}
	}
	return false
}
