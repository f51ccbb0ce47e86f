package order

import "math"

// FeeEstimator estimates the card processor's fee in cents for a charge
// total in cents.
type FeeEstimator func(totalCents int64) int64

const (
	stripeFeeRate       = 0.029
	stripeFeeFixedCents = 30
)

// EstimateStripeFee is the standard 2.9% + 30¢ estimate. Stripe does not
// report its actual fee on the payment intent, so reconciliation books this
// approximation.
func EstimateStripeFee(totalCents int64) int64 {
	return int64(math.Round(float64(totalCents)*stripeFeeRate + stripeFeeFixedCents))
}
