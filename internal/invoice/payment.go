package invoice

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lodgetix/internal/logger"
	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// PaymentProcessor normalizes a raw payment record into a canonical
// PaymentInfo. Process is total: whatever the record looks like, it returns
// a usable value and never fails.
type PaymentProcessor struct {
	log zerolog.Logger
}

// NewPaymentProcessor creates a payment processor.
func NewPaymentProcessor() *PaymentProcessor {
	return &PaymentProcessor{
		log: logger.WithComponent("payment-processor"),
	}
}

// firstNonEmpty returns the first non-empty string produced by the accessors.
// The extraction chains below are all instances of this shape.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Process extracts and normalizes every payment field.
func (p *PaymentProcessor) Process(payment *models.PaymentRecord) models.PaymentInfo {
	source := p.DetectSource(payment)
	info := models.PaymentInfo{
		Method:              p.FormatMethod(payment),
		TransactionID:       p.extractTransactionID(payment),
		PaidDate:            p.extractPaidDate(payment),
		Amount:              p.extractAmount(payment),
		Currency:            firstNonEmpty(payment.Currency, "AUD"),
		Last4:               p.extractLast4(payment),
		CardBrand:           p.extractCardBrand(payment),
		Status:              p.normalizeStatus(payment),
		Source:              source,
		SourcePaymentID:     payment.SourcePaymentID,
		StatementDescriptor: p.extractStatementDescriptor(payment),
		ReceiptURL:          p.extractReceiptURL(payment),
		Fees:                p.ExtractFees(payment),
	}
	if payment.GrossAmount != nil {
		gross := money.Value(payment.GrossAmount)
		info.GrossAmount = &gross
	}

	p.log.Debug().
		Str("transaction_id", info.TransactionID).
		Str("source", string(info.Source)).
		Str("method", info.Method).
		Str("status", string(info.Status)).
		Float64("amount", info.Amount).
		Msg("Payment record normalized")

	return info
}

// methodAliases maps raw method tokens onto display methods.
var methodAliases = map[string]string{
	"card":   "credit card",
	"credit": "credit card",
	"debit":  "debit card",
	"bank":     "bank transfer",
	"transfer": "bank transfer",
	"cash":   "cash",
	"cheque": "cheque",
	"check":  "cheque",
	"paypal": "PayPal",
	"stripe": "credit card",
	"square": "credit card",
}

// FormatMethod normalizes the payment method, removing duplicated "card"
// tokens and mapping common aliases, then title-cases the result.
func (p *PaymentProcessor) FormatMethod(payment *models.PaymentRecord) string {
	method := firstNonEmpty(
		payment.PaymentMethod.Type,
		payment.PaymentMethod.Value,
		payment.Method,
		"credit_card",
	)

	method = strings.ToLower(method)
	method = strings.ReplaceAll(method, "_", " ")

	if method == "card card" || method == "credit card card" {
		method = "credit card"
	}

	if mapped, ok := methodAliases[method]; ok {
		method = mapped
	}

	return titleCaseWords(method)
}

// titleCaseWords upper-cases the first letter of each word, leaving the rest
// of the word untouched (so "PayPal" stays "PayPal").
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var squareIDPattern = regexp.MustCompile(`^[A-Z0-9]{32}$`)

// DetectSource infers the payment gateway. Priority: the explicit source
// field, then source-file name, then transaction-id shape, then legacy
// platform-specific identifier fields. Records that match nothing are
// "unknown", never ambiguous.
func (p *PaymentProcessor) DetectSource(payment *models.PaymentRecord) models.PaymentSource {
	if payment.Source != "" {
		return models.PaymentSource(strings.ToLower(payment.Source))
	}

	if payment.SourceFile != "" {
		file := strings.ToLower(payment.SourceFile)
		switch {
		case strings.Contains(file, "stripe"):
			return models.SourceStripe
		case strings.Contains(file, "square"):
			return models.SourceSquare
		case strings.Contains(file, "paypal"):
			return models.SourcePaypal
		}
	}

	txID := p.extractTransactionID(payment)
	if strings.HasPrefix(txID, "pi_") || strings.HasPrefix(txID, "ch_") {
		return models.SourceStripe
	}
	if squareIDPattern.MatchString(txID) {
		return models.SourceSquare
	}

	if payment.StripePaymentIntentID != "" || payment.StripeChargeID != "" {
		return models.SourceStripe
	}
	if payment.SquarePaymentID != "" || payment.SquareOrderID != "" {
		return models.SourceSquare
	}

	return models.SourceUnknown
}

// ExtractFees resolves the gateway fee for a payment, or nil when no fee can
// be derived. Priority: the explicit fees field, then the itemized fee-detail
// breakdown, then gross−net residuals.
func (p *PaymentProcessor) ExtractFees(payment *models.PaymentRecord) *float64 {
	if payment.Fees != nil {
		f := money.Value(payment.Fees)
		return &f
	}
	if payment.FeeAmount != nil {
		f := money.Value(payment.FeeAmount)
		return &f
	}

	if fd := payment.FeeDetails; fd != nil {
		var total float64
		total += money.Value(fd.PlatformFee)
		total += money.Value(fd.StripeFee)
		total += money.Value(fd.SquareFee)
		for _, fee := range fd.ProcessingFees {
			total += money.Value(fee.Amount)
		}
		if total > 0 {
			total = money.Round(total)
			return &total
		}
	}

	if payment.GrossAmount != nil && payment.Amount != nil {
		f := money.Round(money.Value(payment.GrossAmount) - money.Value(payment.Amount))
		return &f
	}

	if payment.Amount != nil && payment.NetAmount != nil {
		f := money.Round(money.Value(payment.Amount) - money.Value(payment.NetAmount))
		return &f
	}

	return nil
}

func (p *PaymentProcessor) extractTransactionID(payment *models.PaymentRecord) string {
	return firstNonEmpty(
		payment.ID,
		payment.SourcePaymentID,
		payment.TransactionID,
		payment.PaymentID,
		rawString(payment.RawData, "id"),
		rawString(payment.OriginalData, "id"),
		payment.StripePaymentIntentID,
		payment.SquarePaymentID,
		payment.MongoID,
	)
}

func (p *PaymentProcessor) extractAmount(payment *models.PaymentRecord) float64 {
	// grossAmount (fees included) wins over the net amount
	amount := money.Value(payment.GrossAmount)
	if amount == 0 {
		amount = money.Value(payment.Amount)
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

func (p *PaymentProcessor) extractPaidDate(payment *models.PaymentRecord) time.Time {
	raw := firstNonEmpty(
		payment.CreatedAt,
		payment.PaymentDate,
		payment.Timestamp,
		payment.Created,
	)
	if raw == "" {
		return time.Now()
	}
	if t, ok := parseDate(raw); ok {
		return t
	}
	p.log.Warn().Str("value", raw).Msg("Unparseable payment date, defaulting to now")
	return time.Now()
}

// dateLayouts are the timestamp formats seen across imports.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *PaymentProcessor) extractLast4(payment *models.PaymentRecord) string {
	var card string
	if payment.Card != nil {
		card = payment.Card.Last4
	}
	return firstNonEmpty(
		payment.PaymentMethod.Last4,
		payment.Last4,
		payment.CardLast4,
		rawString(payment.RawData, "last4"),
		card,
	)
}

// brandAliases normalizes card network names for display.
var brandAliases = map[string]string{
	"visa":            "Visa",
	"mastercard":      "Mastercard",
	"master":          "Mastercard",
	"amex":            "American Express",
	"americanexpress": "American Express",
	"discover":        "Discover",
	"diners":          "Diners Club",
	"dinersclub":      "Diners Club",
	"jcb":             "JCB",
	"unionpay":        "UnionPay",
}

func (p *PaymentProcessor) extractCardBrand(payment *models.PaymentRecord) string {
	var card string
	if payment.Card != nil {
		card = payment.Card.Brand
	}
	brand := firstNonEmpty(
		payment.PaymentMethod.Brand,
		payment.CardBrand,
		payment.Brand,
		rawString(payment.RawData, "cardBrand"),
		card,
	)
	if brand == "" {
		return ""
	}

	key := strings.ToLower(brand)
	key = strings.Map(func(r rune) rune {
		if r < 'a' || r > 'z' {
			return -1
		}
		return r
	}, key)
	if normalized, ok := brandAliases[key]; ok {
		return normalized
	}
	return brand
}

// statusTable maps raw gateway statuses into the canonical 5-value set.
var statusTable = map[string]models.PaymentStatus{
	"paid":       models.PaymentStatusCompleted,
	"succeeded":  models.PaymentStatusCompleted,
	"success":    models.PaymentStatusCompleted,
	"complete":   models.PaymentStatusCompleted,
	"completed":  models.PaymentStatusCompleted,
	"pending":    models.PaymentStatusPending,
	"processing": models.PaymentStatusPending,
	"failed":     models.PaymentStatusFailed,
	"cancelled":  models.PaymentStatusCancelled,
	"canceled":   models.PaymentStatusCancelled,
	"refunded":   models.PaymentStatusRefunded,
}

func (p *PaymentProcessor) normalizeStatus(payment *models.PaymentRecord) models.PaymentStatus {
	status := firstNonEmpty(payment.Status, payment.StatusOriginal, "completed")
	if mapped, ok := statusTable[strings.ToLower(status)]; ok {
		return mapped
	}
	return models.PaymentStatusCompleted
}

func (p *PaymentProcessor) extractStatementDescriptor(payment *models.PaymentRecord) string {
	return firstNonEmpty(
		payment.StatementDescriptor,
		payment.StatementDescriptorSnake,
		rawString(payment.RawData, "statement_descriptor"),
		rawString(payment.OriginalData, "statement_descriptor"),
		payment.Description,
	)
}

func (p *PaymentProcessor) extractReceiptURL(payment *models.PaymentRecord) string {
	var receipt string
	if payment.Receipt != nil {
		receipt = payment.Receipt.URL
	}
	return firstNonEmpty(
		receipt,
		payment.ReceiptURL,
		payment.ReceiptURLSnake,
		rawString(payment.RawData, "receiptUrl"),
		rawString(payment.RawData, "receipt_url"),
	)
}

// rawString digs a string out of a preserved raw-data map.
func rawString(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}
