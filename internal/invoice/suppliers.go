package invoice

import (
	"strings"

	"lodgetix/pkg/models"
)

// DefaultInvoiceSupplier is the issuing organization printed on every
// customer invoice, and the billed party on every supplier invoice.
var DefaultInvoiceSupplier = models.SupplierIdentity{
	Name:     "United Grand Lodge of NSW & ACT",
	ABN:      "93 230 340 687",
	Address:  "Level 5, 279 Castlereagh St Sydney NSW 2000",
	IssuedBy: "LodgeTix as Agent",
}

// Supplier identities for supplier invoices, keyed by payment source.
var (
	stripeSupplier = models.SupplierIdentity{
		Name:     "LodgeTix",
		ABN:      "21 013 997 842",
		Address:  "110/54a Blackwall Point Rd, Chiswick NSW 2046",
		IssuedBy: "Winding Stair Pty Limited (ACN: 687 923 128)",
	}

	squareSupplier = models.SupplierIdentity{
		Name:     "LodgeTix / Lodge Tickets",
		ABN:      "94 687 923 128",
		Address:  "110/54a Blackwall Point Rd, Chiswick NSW 2046",
		IssuedBy: "Winding Stair Pty Limited (ACN: 687 923 128)",
	}
)

// SupplierInvoiceSupplier picks the issuing identity for a supplier invoice
// from the payment's source file (legacy CSV imports) or detected source.
func SupplierInvoiceSupplier(sourceFile string, source models.PaymentSource) models.SupplierIdentity {
	file := strings.ToLower(sourceFile)
	switch {
	case strings.Contains(file, "stripe"), source == models.SourceStripe:
		return stripeSupplier
	case strings.Contains(file, "square"), source == models.SourceSquare:
		return squareSupplier
	default:
		return squareSupplier
	}
}

// sourceDisplayNames maps a payment source to its human-readable name.
var sourceDisplayNames = map[models.PaymentSource]string{
	models.SourceStripe:  "Stripe",
	models.SourceSquare:  "Square",
	models.SourcePaypal:  "PayPal",
	models.SourceUnknown: "Payment Processor",
}

// SourceDisplayName returns the display name for a payment source.
func SourceDisplayName(source models.PaymentSource) string {
	if name, ok := sourceDisplayNames[source]; ok {
		return name
	}
	return string(source)
}
