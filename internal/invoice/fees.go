package invoice

import (
	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// Gateway fee schedule: percentage rate plus a fixed charge per transaction,
// both applied to the customer subtotal.
type feeSchedule struct {
	Rate  float64
	Fixed float64
}

var feeSchedules = map[models.PaymentSource]feeSchedule{
	models.SourceStripe: {Rate: 0.025, Fixed: 0.30},
	models.SourceSquare: {Rate: 0.025, Fixed: 0.30},
}

var defaultFeeSchedule = feeSchedule{Rate: 0.025, Fixed: 0.30}

// softwareUtilizationRates are the platform's cut of gross turnover, by
// gateway, used when computing the fee from a rate rather than a residual.
var softwareUtilizationRates = map[models.PaymentSource]float64{
	models.SourceStripe: 0.033,
	models.SourceSquare: 0.028,
}

const defaultSoftwareUtilizationRate = 0.02

// FeeCalculator derives processing fees, totals and GST for invoices.
// All results are rounded to cents.
type FeeCalculator struct{}

// NewFeeCalculator creates a fee calculator.
func NewFeeCalculator() *FeeCalculator {
	return &FeeCalculator{}
}

func scheduleFor(source models.PaymentSource) feeSchedule {
	if s, ok := feeSchedules[source]; ok {
		return s
	}
	return defaultFeeSchedule
}

// ProcessingFees computes the forward gateway fee on a customer subtotal:
// subtotal*rate + fixed.
func (c *FeeCalculator) ProcessingFees(subtotal float64, source models.PaymentSource) float64 {
	s := scheduleFor(source)
	return money.Round(subtotal*s.Rate + s.Fixed)
}

// ProcessingFeesWithActual prefers a known gateway fee over the schedule.
func (c *FeeCalculator) ProcessingFeesWithActual(subtotal float64, source models.PaymentSource, actual *float64) float64 {
	if actual != nil && *actual > 0 {
		return money.Round(*actual)
	}
	return c.ProcessingFees(subtotal, source)
}

// ProcessingFeesFromTotal derives the fee as the residual between a known
// charged total and the items subtotal.
func (c *FeeCalculator) ProcessingFeesFromTotal(total, subtotal float64) float64 {
	return money.Round(total - subtotal)
}

// CustomerTotal applies the forward fee formula to a subtotal.
func (c *FeeCalculator) CustomerTotal(subtotal float64, source models.PaymentSource) float64 {
	return money.Round(subtotal + c.ProcessingFees(subtotal, source))
}

// ReverseFromTotal decomposes a known charged total back into subtotal and
// fee, inverting the forward formula: subtotal = (total − fixed) / (1 + rate).
// The decomposition assumes the gateway charged the standard schedule, so
// callers should surface the result as approximated.
func (c *FeeCalculator) ReverseFromTotal(total float64, source models.PaymentSource) (subtotal, fees, rounded float64) {
	s := scheduleFor(source)
	subtotal = money.Round((total - s.Fixed) / (1 + s.Rate))
	fees = money.Round(total - subtotal)
	rounded = money.Round(total)
	return subtotal, fees, rounded
}

// SoftwareUtilizationFeeByRate computes the platform's cut of a gross amount
// from the per-gateway rate schedule.
//
// The residual form below computes the same concept differently; the two are
// kept as separate functions on purpose and must not be unified.
func (c *FeeCalculator) SoftwareUtilizationFeeByRate(gross float64, source models.PaymentSource) float64 {
	rate, ok := softwareUtilizationRates[source]
	if !ok {
		rate = defaultSoftwareUtilizationRate
	}
	return money.Round(gross * rate)
}

// SoftwareUtilizationFeeByResidual computes the platform's cut as what
// remains of the gross after the gateway fee and the customer subtotal are
// taken out. Supplier invoices use this form so the pair reconciles to the
// cent.
func (c *FeeCalculator) SoftwareUtilizationFeeByResidual(gross, gatewayFee, customerSubtotal float64) float64 {
	return money.Round(gross - gatewayFee - customerSubtotal)
}

// GST returns the GST component included in a GST-inclusive total (1/11th).
func (c *FeeCalculator) GST(total float64) float64 {
	return money.Round(total / 11)
}
