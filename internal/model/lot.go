package model

import "time"

// UnitTolerance is the floating-point tolerance used throughout lot
// accounting: a lot is exhausted, and a sell is fully matched, once the
// remaining quantity drops below this many units.
const UnitTolerance = 0.001

// Lot is a single purchase tranche tracked for FIFO matching. Units bought
// at one time can be partially consumed by any number of later sells.
type Lot struct {
	BuyDate        time.Time
	Units          float64
	PricePerUnit   float64
	RemainingUnits float64
	FundName       string
	Platform       string
	TaxWrapper     string
	TransactionID  int64
}

// Exhausted reports whether all units of this lot have been sold.
func (l *Lot) Exhausted() bool {
	return l.RemainingUnits <= UnitTolerance
}

// OriginalValue is the purchase value of the full lot.
func (l *Lot) OriginalValue() float64 {
	return l.Units * l.PricePerUnit
}

// Consume removes up to unitsToSell units from the lot and returns the
// quantity actually consumed, which is less when the lot runs out first.
func (l *Lot) Consume(unitsToSell float64) float64 {
	consumed := min(unitsToSell, l.RemainingUnits)
	l.RemainingUnits -= consumed
	return consumed
}
