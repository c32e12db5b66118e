package invoice

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"lodgetix/internal/logger"
	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// SupplierTransformer derives the supplier invoice from a generated customer
// invoice. The supplier invoice is the mirror document: the agent bills the
// platform for its cut and for the gateway fee it carried, so the pair
// reconciles the full charged amount.
type SupplierTransformer struct {
	fees *FeeCalculator
	log  zerolog.Logger
}

// NewSupplierTransformer creates a supplier transformer.
func NewSupplierTransformer() *SupplierTransformer {
	return &SupplierTransformer{
		fees: NewFeeCalculator(),
		log:  logger.WithComponent("supplier-transformer"),
	}
}

// Transform builds the supplier invoice for a customer invoice. The raw
// registration supplies the confirmation number printed on the software fee
// line; it may be nil for payments with no surviving registration document.
func (t *SupplierTransformer) Transform(customer *models.Invoice, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*models.Invoice, error) {
	const op = "supplier.transform"

	if customer == nil {
		return nil, NewGenerationError(op, ErrMissingCustomerInvoice, "")
	}
	if payment == nil {
		return nil, NewGenerationError(op, ErrMissingPayment, "")
	}

	info := customer.Payment
	supplier := SupplierInvoiceSupplier(payment.SourceFile, info.Source)

	inv := &models.Invoice{
		InvoiceType:      models.InvoiceTypeSupplier,
		InvoiceNumber:    t.supplierNumber(customer.InvoiceNumber, opts),
		PaymentID:        customer.PaymentID,
		RegistrationID:   customer.RegistrationID,
		RelatedInvoiceID: customer.InvoiceNumber,
		Date:             customer.Date,
		DueDate:          customer.DueDate,
		BillTo:           agentBillTo(),
		Supplier:         supplier,
		Payment:          info,
		Status:           models.InvoiceStatusPending,
	}

	var confirmation string
	if registration != nil {
		confirmation = registration.ConfirmationNumber
	}
	inv.Items = t.buildItems(customer, info, confirmation)

	var subtotal float64
	for _, it := range inv.Items {
		subtotal += it.Total
	}
	inv.Subtotal = money.Round(subtotal)
	inv.ProcessingFees = 0
	inv.Total = inv.Subtotal
	inv.GSTIncluded = t.fees.GST(inv.Total)

	t.log.Debug().
		Str("invoice_number", inv.InvoiceNumber).
		Str("related_invoice", inv.RelatedInvoiceID).
		Float64("total", inv.Total).
		Msg("Supplier invoice derived")

	return inv, nil
}

// supplierNumber derives the supplier number from the customer number by
// prefix substitution, keeping the pair visibly linked.
func (t *SupplierTransformer) supplierNumber(customerNumber string, opts GenerationOptions) string {
	if opts.SupplierInvoiceNumber != "" {
		return opts.SupplierInvoiceNumber
	}
	if strings.HasPrefix(customerNumber, "LTIV-") {
		return "LTSP-" + strings.TrimPrefix(customerNumber, "LTIV-")
	}
	return tempInvoiceNumber("LTSP-")
}

// buildItems produces the two supplier lines: the platform's software
// utilisation fee and the gateway fee reimbursement.
func (t *SupplierTransformer) buildItems(customer *models.Invoice, info models.PaymentInfo, confirmation string) []models.InvoiceItem {
	gatewayFee := t.fees.ProcessingFeesWithActual(customer.Subtotal, info.Source, info.Fees)

	gross := customer.Total
	if info.GrossAmount != nil {
		gross = *info.GrossAmount
	}
	// The residual can go negative when the actual gateway fee exceeds the
	// margin; it is emitted as-is so the pair still reconciles to the gross.
	software := t.fees.SoftwareUtilizationFeeByResidual(gross, gatewayFee, customer.Subtotal)

	softwareDesc := "Software utilisation fee"
	if confirmation != "" {
		softwareDesc = fmt.Sprintf("Software utilisation fee for registration: %s", confirmation)
	}

	return []models.InvoiceItem{
		{
			Description: softwareDesc,
			Quantity:    1,
			Price:       software,
			Total:       software,
		},
		{
			Description: fmt.Sprintf("%s processing fee reimbursement for %s", SourceDisplayName(info.Source), info.TransactionID),
			Quantity:    1,
			Price:       gatewayFee,
			Total:       gatewayFee,
		},
	}
}

// agentBillTo is the agent's own identity as the billed party on supplier
// invoices.
func agentBillTo() models.BillTo {
	return models.BillTo{
		BusinessName:   DefaultInvoiceSupplier.Name,
		BusinessNumber: DefaultInvoiceSupplier.ABN,
		FirstName:      DefaultInvoiceSupplier.Name,
		AddressLine1:   DefaultInvoiceSupplier.Address,
		City:           "Sydney",
		PostalCode:     "2000",
		StateProvince:  "NSW",
		Country:        "Australia",
	}
}
