package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lodgetix/internal/logger"
	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// dueDays is the payment-terms window stamped on every invoice.
const dueDays = 30

// Generator builds a customer invoice for one registration type.
type Generator interface {
	Generate(ctx context.Context, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*models.Invoice, error)
}

// GenerationOptions carries the optional inputs of a generation run.
type GenerationOptions struct {
	// InvoiceNumber is the pre-allocated customer invoice number. When empty
	// a temporary number is issued and the invoice must be renumbered before
	// dispatch.
	InvoiceNumber string

	// SupplierInvoiceNumber overrides the derived supplier invoice number.
	SupplierInvoiceNumber string
}

// FormatInvoiceNumber renders a sequential invoice number: prefix, year and
// month, then a zero-padded sequence ("LTIV-25080042").
func FormatInvoiceNumber(prefix string, date time.Time, sequence int) string {
	return fmt.Sprintf("%s%s%04d", prefix, date.Format("0601"), sequence)
}

// tempInvoiceNumber issues a placeholder number; the timestamp keeps it
// unique within a batch.
func tempInvoiceNumber(prefix string) string {
	return fmt.Sprintf("%sTEMP-%d", prefix, time.Now().UnixMilli())
}

// invoiceStatusFor maps canonical payment status onto invoice status.
func invoiceStatusFor(status models.PaymentStatus) models.InvoiceStatus {
	switch status {
	case models.PaymentStatusCompleted:
		return models.InvoiceStatusPaid
	case models.PaymentStatusCancelled, models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return models.InvoiceStatusCancelled
	default:
		return models.InvoiceStatusPending
	}
}

// baseGenerator holds what every registration-type generator shares: input
// validation, payment normalization, numbering, dates and the totals
// strategy.
type baseGenerator struct {
	payments      *PaymentProcessor
	registrations *RegistrationProcessor
	fees          *FeeCalculator
	log           zerolog.Logger
}

func newBaseGenerator(store RegistrationStore, component string) baseGenerator {
	return baseGenerator{
		payments:      NewPaymentProcessor(),
		registrations: NewRegistrationProcessor(store),
		fees:          NewFeeCalculator(),
		log:           logger.WithComponent(component),
	}
}

// prepare validates the inputs and normalizes both records.
func (g *baseGenerator) prepare(ctx context.Context, op string, payment *models.PaymentRecord, registration *models.RegistrationRecord) (models.PaymentInfo, *ProcessedRegistration, error) {
	if payment == nil {
		return models.PaymentInfo{}, nil, NewGenerationError(op, ErrMissingPayment, "")
	}
	if registration == nil {
		return models.PaymentInfo{}, nil, NewGenerationError(op, ErrMissingRegistration, "")
	}

	info := g.payments.Process(payment)
	processed, err := g.registrations.Process(ctx, registration)
	if err != nil {
		return models.PaymentInfo{}, nil, WrapGenerationError(op, err, "")
	}
	return info, processed, nil
}

// skeleton builds the invoice frame common to all customer invoices.
func (g *baseGenerator) skeleton(info models.PaymentInfo, processed *ProcessedRegistration, opts GenerationOptions) *models.Invoice {
	number := opts.InvoiceNumber
	if number == "" {
		number = tempInvoiceNumber("LTIV-")
	}

	return &models.Invoice{
		InvoiceType:    models.InvoiceTypeCustomer,
		InvoiceNumber:  number,
		PaymentID:      info.TransactionID,
		RegistrationID: processed.RegistrationID,
		Date:           info.PaidDate,
		DueDate:        info.PaidDate.AddDate(0, 0, dueDays),
		BillTo:         billToFrom(processed.BillingDetails),
		Supplier:       DefaultInvoiceSupplier,
		Payment:        info,
		Status:         invoiceStatusFor(info.Status),
	}
}

func billToFrom(b BillingDetails) models.BillTo {
	return models.BillTo{
		BusinessName:   b.BusinessName,
		BusinessNumber: b.BusinessNumber,
		Title:          b.Title,
		FirstName:      b.FirstName,
		LastName:       b.LastName,
		Email:          b.Email,
		Phone:          b.Phone,
		MobileNumber:   b.MobileNumber,
		AddressLine1:   b.AddressLine1,
		AddressLine2:   b.AddressLine2,
		City:           b.City,
		PostalCode:     b.PostalCode,
		StateProvince:  b.StateProvince,
		Country:        b.Country,
	}
}

// finalize fills the monetary block. When the payment carries an explicit
// gross amount covering the items subtotal, that figure is the authoritative
// total and is decomposed backwards, so the invoice reconciles against what
// the customer actually paid; otherwise fees are computed forward from the
// items.
func (g *baseGenerator) finalize(inv *models.Invoice) {
	itemsSubtotal := money.Round(inv.ItemsSubtotal())
	source := inv.Payment.Source

	if gross := inv.Payment.GrossAmount; gross != nil && *gross >= itemsSubtotal {
		subtotal, fees, total := g.fees.ReverseFromTotal(*gross, source)
		inv.Subtotal = subtotal
		inv.ProcessingFees = fees
		inv.Total = total
		inv.FeesApproximated = true
	} else {
		inv.Subtotal = itemsSubtotal
		inv.ProcessingFees = g.fees.ProcessingFeesWithActual(itemsSubtotal, source, inv.Payment.Fees)
		inv.Total = money.Round(itemsSubtotal + inv.ProcessingFees)
	}

	inv.GSTIncluded = g.fees.GST(inv.Total)

	g.log.Debug().
		Str("invoice_number", inv.InvoiceNumber).
		Float64("subtotal", inv.Subtotal).
		Float64("processing_fees", inv.ProcessingFees).
		Float64("total", inv.Total).
		Bool("fees_approximated", inv.FeesApproximated).
		Msg("Invoice totals finalized")
}

// registrationTypeGenerators maps normalized registration types onto
// generator constructors. Organisation and delegation registrations invoice
// the same way lodges do.
var registrationTypeGenerators = map[string]func(RegistrationStore) Generator{
	"individuals":  func(s RegistrationStore) Generator { return NewIndividualsGenerator(s) },
	"individual":   func(s RegistrationStore) Generator { return NewIndividualsGenerator(s) },
	"lodge":        func(s RegistrationStore) Generator { return NewLodgeGenerator(s) },
	"organisation": func(s RegistrationStore) Generator { return NewLodgeGenerator(s) },
	"organization": func(s RegistrationStore) Generator { return NewLodgeGenerator(s) },
	"delegation":   func(s RegistrationStore) Generator { return NewLodgeGenerator(s) },
}

// GeneratorFor picks the generator for a registration type.
func GeneratorFor(registrationType string, store RegistrationStore) (Generator, error) {
	ctor, ok := registrationTypeGenerators[normalizeType(registrationType)]
	if !ok {
		return nil, &GenerationError{
			Op:               "generator.select",
			Err:              ErrUnknownRegistrationType,
			RegistrationType: registrationType,
		}
	}
	return ctor(store), nil
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "individuals"
	}
	return t
}
