package models

import "time"

// InvoiceType distinguishes the two documents of a generated pair.
type InvoiceType string

const (
	InvoiceTypeCustomer InvoiceType = "customer"
	InvoiceTypeSupplier InvoiceType = "supplier"
)

// InvoiceStatus is the displayed invoice status, derived from payment status.
type InvoiceStatus string

const (
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// PaymentStatus is the canonical 5-value payment status set.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentSource identifies the gateway a payment came through. Detection
// never leaves this ambiguous; unresolvable records become SourceUnknown.
type PaymentSource string

const (
	SourceStripe  PaymentSource = "stripe"
	SourceSquare  PaymentSource = "square"
	SourcePaypal  PaymentSource = "paypal"
	SourceUnknown PaymentSource = "unknown"
)

// PaymentInfo is the canonical payment value produced by the payment
// processor. Amount is always non-negative, in major currency units.
type PaymentInfo struct {
	Method        string        `json:"method"`
	TransactionID string        `json:"transactionId"`
	PaidDate      time.Time     `json:"paidDate"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Last4         string        `json:"last4,omitempty"`
	CardBrand     string        `json:"cardBrand,omitempty"`
	Status        PaymentStatus `json:"status"`
	Source        PaymentSource `json:"source"`

	SourcePaymentID     string   `json:"sourcePaymentId,omitempty"`
	StatementDescriptor string   `json:"statementDescriptor,omitempty"`
	ReceiptURL          string   `json:"receiptUrl,omitempty"`
	Fees                *float64 `json:"fees,omitempty"`

	// GrossAmount is set only when the record carried an explicit gross
	// figure; it marks the charged total as authoritative.
	GrossAmount *float64 `json:"grossAmount,omitempty"`
}

// InvoiceItem is one row of an invoice. Header and attendee rows are
// label-only (quantity and price both zero); ticket rows carry real values
// and Total always equals Quantity*Price.
type InvoiceItem struct {
	Description string        `json:"description"`
	Quantity    int           `json:"quantity"`
	Price       float64       `json:"price"`
	Total       float64       `json:"total"`
	SubItems    []InvoiceItem `json:"subItems,omitempty"`
}

// BillTo is the invoiced party.
type BillTo struct {
	BusinessName   string `json:"businessName,omitempty"`
	BusinessNumber string `json:"businessNumber,omitempty"`
	Title          string `json:"title,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	MobileNumber   string `json:"mobileNumber,omitempty"`
	AddressLine1   string `json:"addressLine1,omitempty"`
	AddressLine2   string `json:"addressLine2,omitempty"`
	City           string `json:"city,omitempty"`
	PostalCode     string `json:"postalCode,omitempty"`
	StateProvince  string `json:"stateProvince,omitempty"`
	Country        string `json:"country,omitempty"`
}

// SupplierIdentity is the issuing party printed on an invoice.
type SupplierIdentity struct {
	Name     string `json:"name"`
	ABN      string `json:"abn"`
	Address  string `json:"address"`
	IssuedBy string `json:"issuedBy,omitempty"`
}

// Invoice is a completed customer or supplier invoice, ready for
// persistence, rendering or dispatch. Values are never mutated after
// construction; regeneration produces a new value.
//
// Invariants: Total = Subtotal + ProcessingFees, and
// GSTIncluded = round(Total/11) (Australian GST-inclusive convention).
type Invoice struct {
	InvoiceType   InvoiceType `json:"invoiceType"`
	InvoiceNumber string      `json:"invoiceNumber"`

	PaymentID        string `json:"paymentId,omitempty"`
	RegistrationID   string `json:"registrationId,omitempty"`
	RelatedInvoiceID string `json:"relatedInvoiceId,omitempty"`

	Date    time.Time `json:"date"`
	DueDate time.Time `json:"dueDate"`

	BillTo   BillTo           `json:"billTo"`
	Supplier SupplierIdentity `json:"supplier"`

	Items []InvoiceItem `json:"items"`

	Subtotal       float64 `json:"subtotal"`
	ProcessingFees float64 `json:"processingFees"`
	GSTIncluded    float64 `json:"gstIncluded"`
	Total          float64 `json:"total"`

	// FeesApproximated marks totals derived by the reverse fee
	// decomposition, which assumes the gateway used the standard forward
	// formula and is therefore best-effort.
	FeesApproximated bool `json:"feesApproximated,omitempty"`

	Payment PaymentInfo   `json:"payment"`
	Status  InvoiceStatus `json:"status"`
}

// ItemsSubtotal sums the real (non-label) rows, including nested sub-items.
func (inv *Invoice) ItemsSubtotal() float64 {
	return sumItems(inv.Items)
}

func sumItems(items []InvoiceItem) float64 {
	var sum float64
	for _, it := range items {
		sum += float64(it.Quantity) * it.Price
		sum += sumItems(it.SubItems)
	}
	return sum
}
