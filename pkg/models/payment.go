package models

import "encoding/json"

// PaymentRecord is a raw payment document as imported from a gateway export
// or sync job. Records arrive under several generations of field naming, so
// no single field is guaranteed present; consumers must go through the
// payment processor rather than reading fields directly.
//
// Monetary fields are declared as `any` because source systems disagree on
// representation: cents as integers, dollars as floats, currency-prefixed
// strings, or Mongo-style {"$numberDecimal": "..."} objects.
type PaymentRecord struct {
	// Identifiers, newest naming first
	ID              string `json:"id,omitempty"`
	MongoID         string `json:"_id,omitempty"`
	PaymentID       string `json:"paymentId,omitempty"`
	SourcePaymentID string `json:"sourcePaymentId,omitempty"`
	TransactionID   string `json:"transactionId,omitempty"`

	// Platform-specific legacy identifiers
	StripePaymentIntentID string `json:"stripePaymentIntentId,omitempty"`
	StripeChargeID        string `json:"stripeChargeId,omitempty"`
	SquarePaymentID       string `json:"squarePaymentId,omitempty"`
	SquareOrderID         string `json:"squareOrderId,omitempty"`

	// Amounts
	Amount      any `json:"amount,omitempty"`
	GrossAmount any `json:"grossAmount,omitempty"`
	NetAmount   any `json:"netAmount,omitempty"`
	Fees        any `json:"fees,omitempty"`
	FeeAmount   any `json:"feeAmount,omitempty"`

	FeeDetails *FeeDetails `json:"feeDetails,omitempty"`

	Currency string `json:"currency,omitempty"`

	// Method: either a bare string ("card") or a structured object
	PaymentMethod PaymentMethodField `json:"paymentMethod,omitempty"`
	Method        string             `json:"method,omitempty"`

	// Timestamps; strings in assorted layouts
	CreatedAt   string `json:"createdAt,omitempty"`
	PaymentDate string `json:"paymentDate,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	Created     string `json:"created,omitempty"`

	// Card metadata
	Last4     string `json:"last4,omitempty"`
	CardLast4 string `json:"cardLast4,omitempty"`
	CardBrand string `json:"cardBrand,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Card      *Card  `json:"card,omitempty"`

	Status         string `json:"status,omitempty"`
	StatusOriginal string `json:"statusOriginal,omitempty"`

	Source     string `json:"source,omitempty"`
	SourceFile string `json:"sourceFile,omitempty"`

	StatementDescriptor      string `json:"statementDescriptor,omitempty"`
	StatementDescriptorSnake string `json:"statement_descriptor,omitempty"`
	Description              string `json:"description,omitempty"`

	Receipt         *Receipt `json:"receipt,omitempty"`
	ReceiptURL      string   `json:"receiptUrl,omitempty"`
	ReceiptURLSnake string   `json:"receipt_url,omitempty"`

	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`

	MatchedRegistrationID string `json:"matchedRegistrationId,omitempty"`

	// Complete original gateway response, preserved as-is
	RawData      map[string]any `json:"rawData,omitempty"`
	OriginalData map[string]any `json:"originalData,omitempty"`
}

// FeeDetails is the itemized fee breakdown attached to imported payments.
type FeeDetails struct {
	PlatformFee    any            `json:"platformFee,omitempty"`
	StripeFee      any            `json:"stripeFee,omitempty"`
	SquareFee      any            `json:"squareFee,omitempty"`
	ProcessingFees []ItemizedFee  `json:"processingFees,omitempty"`
	Extra          map[string]any `json:"-"`
}

// ItemizedFee is one entry of a gateway's processing-fee array.
type ItemizedFee struct {
	Type   string `json:"type,omitempty"`
	Amount any    `json:"amount,omitempty"`
}

// Card carries legacy nested card metadata.
type Card struct {
	Last4 string `json:"last4,omitempty"`
	Brand string `json:"brand,omitempty"`
}

// Receipt carries the unified receipt structure.
type Receipt struct {
	URL    string `json:"url,omitempty"`
	Number string `json:"number,omitempty"`
}

// PaymentMethodField tolerates both shapes the field arrives in: a plain
// string ("card") from CSV imports, or a structured object from API syncs.
type PaymentMethodField struct {
	Value string `json:"-"`
	Type  string `json:"type,omitempty"`
	Brand string `json:"brand,omitempty"`
	Last4 string `json:"last4,omitempty"`
}

// UnmarshalJSON accepts either a JSON string or an object.
func (m *PaymentMethodField) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &m.Value)
	}
	type alias PaymentMethodField
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = PaymentMethodField(a)
	return nil
}

// MarshalJSON writes the string form when that is all we have.
func (m PaymentMethodField) MarshalJSON() ([]byte, error) {
	if m.Type == "" && m.Brand == "" && m.Last4 == "" {
		return json.Marshal(m.Value)
	}
	type alias PaymentMethodField
	return json.Marshal(alias(m))
}

// IsZero reports whether no method information is present at all.
func (m PaymentMethodField) IsZero() bool {
	return m.Value == "" && m.Type == "" && m.Brand == "" && m.Last4 == ""
}
