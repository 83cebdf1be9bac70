package service

import (
	"fmt"

	"promo-order-bot/pkg/apperror"

	"github.com/shopspring/decimal"
)

const (
	blockHours = 48
	weekHours  = 168
)

var (
	blockPrice = decimal.NewFromInt(50)  // per 48h block
	weekPrice  = decimal.NewFromInt(150) // discounted full week
)

// PricingService prices promotion durations. Durations are sold in 48-hour
// blocks at a flat rate, with a single discounted bundle for a full week.
type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// ValidDuration reports whether the duration can be purchased.
func (p *PricingService) ValidDuration(durationHours int) bool {
	if durationHours == weekHours {
		return true
	}
	return durationHours >= blockHours && durationHours%blockHours == 0
}

// PriceFor returns the USD price for a duration in hours.
func (p *PricingService) PriceFor(durationHours int) (decimal.Decimal, error) {
	if !p.ValidDuration(durationHours) {
		return decimal.Zero, apperror.ErrInvalidDuration()
	}
	if durationHours == weekHours {
		return weekPrice, nil
	}
	blocks := int64(durationHours / blockHours)
	return blockPrice.Mul(decimal.NewFromInt(blocks)), nil
}

// Breakdown renders a human-readable pricing line for the wizard.
func (p *PricingService) Breakdown(durationHours int) string {
	price, err := p.PriceFor(durationHours)
	if err != nil {
		return ""
	}
	if durationHours == weekHours {
		return fmt.Sprintf("1 week = $%s (bundle)", price.StringFixed(0))
	}
	blocks := durationHours / blockHours
	return fmt.Sprintf("%d x 48h = $%s", blocks, price.StringFixed(0))
}
