package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lodgetix/pkg/models"
)

func TestProcessingFees(t *testing.T) {
	c := NewFeeCalculator()

	// $150 subtotal at 2.5% + $0.30
	assert.Equal(t, 4.05, c.ProcessingFees(150, models.SourceStripe))
	assert.Equal(t, 4.05, c.ProcessingFees(150, models.SourceSquare))
	assert.Equal(t, 4.05, c.ProcessingFees(150, models.SourceUnknown))
	assert.Equal(t, 0.30, c.ProcessingFees(0, models.SourceStripe))
}

func TestCustomerTotal(t *testing.T) {
	c := NewFeeCalculator()

	assert.Equal(t, 154.05, c.CustomerTotal(150, models.SourceStripe))
	assert.Equal(t, 717.80, c.CustomerTotal(700, models.SourceSquare))
}

func TestProcessingFeesWithActual(t *testing.T) {
	c := NewFeeCalculator()

	actual := 2.50
	assert.Equal(t, 2.50, c.ProcessingFeesWithActual(150, models.SourceStripe, &actual))

	zero := 0.0
	assert.Equal(t, 4.05, c.ProcessingFeesWithActual(150, models.SourceStripe, &zero))
	assert.Equal(t, 4.05, c.ProcessingFeesWithActual(150, models.SourceStripe, nil))
}

func TestProcessingFeesFromTotal(t *testing.T) {
	c := NewFeeCalculator()

	assert.Equal(t, 4.05, c.ProcessingFeesFromTotal(154.05, 150))
	assert.Equal(t, 0.0, c.ProcessingFeesFromTotal(100, 100))
}

func TestReverseFromTotal(t *testing.T) {
	c := NewFeeCalculator()

	t.Run("known charged total decomposes", func(t *testing.T) {
		subtotal, fees, total := c.ReverseFromTotal(277.10, models.SourceStripe)
		assert.Equal(t, 270.05, subtotal)
		assert.Equal(t, 7.05, fees)
		assert.Equal(t, 277.10, total)
	})

	t.Run("inverts the forward formula", func(t *testing.T) {
		for _, amount := range []float64{50, 150, 270.05, 700, 1234.56} {
			charged := c.CustomerTotal(amount, models.SourceSquare)
			subtotal, fees, total := c.ReverseFromTotal(charged, models.SourceSquare)
			assert.InDelta(t, amount, subtotal, 0.01, "subtotal for %v", amount)
			assert.InDelta(t, charged, subtotal+fees, 0.005, "fee consistency for %v", amount)
			assert.Equal(t, charged, total)
		}
	})
}

func TestSoftwareUtilization(t *testing.T) {
	c := NewFeeCalculator()

	t.Run("rate based", func(t *testing.T) {
		assert.Equal(t, 4.95, c.SoftwareUtilizationFeeByRate(150, models.SourceStripe))
		assert.Equal(t, 4.20, c.SoftwareUtilizationFeeByRate(150, models.SourceSquare))
		assert.Equal(t, 3.00, c.SoftwareUtilizationFeeByRate(150, models.SourceUnknown))
	})

	t.Run("residual based", func(t *testing.T) {
		// gross 154.05, gateway took 2.50, customer items were 150
		assert.Equal(t, 1.55, c.SoftwareUtilizationFeeByResidual(154.05, 2.50, 150))
	})
}

func TestGST(t *testing.T) {
	c := NewFeeCalculator()

	assert.Equal(t, 14.00, c.GST(154.05))
	assert.Equal(t, 25.19, c.GST(277.10))
	assert.Equal(t, 0.0, c.GST(0))
}
