package invoice

import (
	"context"

	"github.com/rs/zerolog"

	"lodgetix/internal/logger"
	"lodgetix/pkg/models"
)

// InvoicePair is the matched customer/supplier document pair produced for
// one payment.
type InvoicePair struct {
	Customer *models.Invoice `json:"customerInvoice"`
	Supplier *models.Invoice `json:"supplierInvoice"`
}

// Service is the generation entry point: it selects the right generator for
// the registration type and derives the supplier invoice from the customer
// one.
type Service struct {
	store    RegistrationStore
	supplier *SupplierTransformer
	log      zerolog.Logger
}

// NewService creates an invoice service. The store may be nil when all
// registrations are embedded-shape.
func NewService(store RegistrationStore) *Service {
	return &Service{
		store:    store,
		supplier: NewSupplierTransformer(),
		log:      logger.WithComponent("invoice-service"),
	}
}

// GenerateCustomerInvoice builds the customer invoice for a matched
// payment/registration pair.
func (s *Service) GenerateCustomerInvoice(ctx context.Context, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*models.Invoice, error) {
	const op = "GenerateCustomerInvoice"

	if payment == nil {
		return nil, NewGenerationError(op, ErrMissingPayment, "")
	}
	if registration == nil {
		return nil, NewGenerationError(op, ErrMissingRegistration, "")
	}

	regType := registrationTypeOf(registration)
	gen, err := GeneratorFor(regType, s.store)
	if err != nil {
		return nil, err
	}

	inv, err := gen.Generate(ctx, payment, registration, opts)
	if err != nil {
		return nil, WrapGenerationError(op, err, "")
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("registration_type", regType).
		Float64("total", inv.Total).
		Msg("Customer invoice generated")

	return inv, nil
}

// GenerateSupplierInvoice derives the supplier invoice from an already
// generated customer invoice.
func (s *Service) GenerateSupplierInvoice(customer *models.Invoice, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*models.Invoice, error) {
	inv, err := s.supplier.Transform(customer, payment, registration, opts)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("related_invoice", inv.RelatedInvoiceID).
		Float64("total", inv.Total).
		Msg("Supplier invoice generated")

	return inv, nil
}

// GenerateInvoicePair generates both documents in one pass. The supplier
// invoice always derives from the freshly generated customer invoice, so the
// pair can never disagree.
func (s *Service) GenerateInvoicePair(ctx context.Context, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*InvoicePair, error) {
	customer, err := s.GenerateCustomerInvoice(ctx, payment, registration, opts)
	if err != nil {
		return nil, err
	}

	supplier, err := s.GenerateSupplierInvoice(customer, payment, registration, opts)
	if err != nil {
		return nil, err
	}

	return &InvoicePair{Customer: customer, Supplier: supplier}, nil
}

// ValidateInputs reports every problem generation would run into with these
// inputs, without generating anything. An empty result means generation will
// proceed; issues beyond the missing-record ones are warnings that degrade
// output quality rather than abort it.
func (s *Service) ValidateInputs(payment *models.PaymentRecord, registration *models.RegistrationRecord) []ValidationIssue {
	var issues []ValidationIssue

	if payment == nil {
		issues = append(issues, ValidationIssue{Field: "payment", Message: "payment record is required"})
	}
	if registration == nil {
		issues = append(issues, ValidationIssue{Field: "registration", Message: "registration record is required"})
	}
	if payment == nil || registration == nil {
		return issues
	}

	pp := NewPaymentProcessor()
	if pp.extractTransactionID(payment) == "" {
		issues = append(issues, ValidationIssue{Field: "payment.id", Message: "no transaction identifier in any known field"})
	}
	if pp.extractAmount(payment) == 0 {
		issues = append(issues, ValidationIssue{Field: "payment.amount", Message: "payment amount is zero or missing"})
	}
	if pp.DetectSource(payment) == models.SourceUnknown {
		issues = append(issues, ValidationIssue{Field: "payment.source", Message: "payment source could not be detected"})
	}
	if pp.ExtractFees(payment) == nil {
		issues = append(issues, ValidationIssue{Field: "payment.fees", Message: "gateway fees unavailable, supplier invoice will use the standard schedule"})
	}

	regType := registrationTypeOf(registration)
	if _, err := GeneratorFor(regType, s.store); err != nil {
		issues = append(issues, ValidationIssue{Field: "registration.registrationType", Message: "unsupported registration type: " + regType})
	}
	if !hasAttendeeData(registration) && !hasTicketData(registration) {
		issues = append(issues, ValidationIssue{Field: "registration", Message: "registration carries no attendees or tickets"})
	}

	return issues
}

func registrationTypeOf(reg *models.RegistrationRecord) string {
	t := firstNonEmpty(reg.RegistrationType, reg.Type)
	if t == "" && reg.RegistrationData != nil {
		t = reg.RegistrationData.Type
	}
	return normalizeType(t)
}

func hasAttendeeData(reg *models.RegistrationRecord) bool {
	if len(reg.Attendees) > 0 || len(reg.AttendeeIDs) > 0 {
		return true
	}
	if d := reg.RegistrationData; d != nil {
		return len(d.Attendees) > 0 || len(d.AttendeeIDs) > 0
	}
	return false
}

func hasTicketData(reg *models.RegistrationRecord) bool {
	if len(reg.SelectedTickets) > 0 || len(reg.Tickets) > 0 || len(reg.TicketIDs) > 0 {
		return true
	}
	if d := reg.RegistrationData; d != nil {
		return len(d.SelectedTickets) > 0 || len(d.Tickets) > 0 || len(d.TicketIDs) > 0
	}
	return false
}
