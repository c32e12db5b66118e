package invoice

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgetix/pkg/models"
)

func stripePayment(amount float64) *models.PaymentRecord {
	return &models.PaymentRecord{
		ID:        "pi_3TEST123",
		Amount:    amount,
		Status:    "paid",
		CreatedAt: "2024-03-15T10:30:00Z",
	}
}

func individualsRegistration(ticketPrice float64) *models.RegistrationRecord {
	return &models.RegistrationRecord{
		RegistrationID:     "reg-1",
		ConfirmationNumber: "IND-123456",
		RegistrationType:   "individuals",
		FunctionName:       "Grand Installation 2024",
		RegistrationData: &models.RegistrationData{
			Attendees: []models.AttendeeRecord{
				{AttendeeID: "att-1", Title: "W Bro", FirstName: "John", LastName: "Smith", IsPrimary: true,
					LodgeNameNumber: "Lodge Unity No. 6"},
			},
			SelectedTickets: []models.TicketRecord{
				{TicketID: "t1", Name: "Banquet", Price: ticketPrice, OwnerType: "attendee", OwnerID: "att-1"},
			},
		},
	}
}

// assertMoneyInvariants checks the identities every generated invoice must
// satisfy.
func assertMoneyInvariants(t *testing.T, inv *models.Invoice) {
	t.Helper()
	assert.InDelta(t, inv.Total, inv.Subtotal+inv.ProcessingFees, 0.01, "total vs subtotal+fees")
	assert.InDelta(t, inv.GSTIncluded, math.Round(inv.Total/11*100)/100, 0.005, "gst")
	assert.False(t, inv.Date.After(inv.DueDate))
}

func TestIndividualsForwardFees(t *testing.T) {
	// $150 of tickets, charged amount equal to the subtotal: fees are
	// computed forward from the schedule.
	gen := NewIndividualsGenerator(nil)

	inv, err := gen.Generate(context.Background(), stripePayment(150), individualsRegistration(150), GenerationOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.InvoiceTypeCustomer, inv.InvoiceType)
	assert.Equal(t, 150.0, inv.Subtotal)
	assert.Equal(t, 4.05, inv.ProcessingFees)
	assert.Equal(t, 154.05, inv.Total)
	assert.Equal(t, 14.00, inv.GSTIncluded)
	assert.False(t, inv.FeesApproximated)
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
	assertMoneyInvariants(t, inv)
}

func TestIndividualsReverseFees(t *testing.T) {
	// explicit gross of $277.10 against $270.05 of tickets: totals
	// decompose backwards from the charge and are flagged approximated
	gen := NewIndividualsGenerator(nil)

	payment := stripePayment(270.05)
	payment.GrossAmount = 277.10

	inv, err := gen.Generate(context.Background(), payment, individualsRegistration(270.05), GenerationOptions{})
	require.NoError(t, err)

	assert.Equal(t, 270.05, inv.Subtotal)
	assert.Equal(t, 7.05, inv.ProcessingFees)
	assert.Equal(t, 277.10, inv.Total)
	assert.True(t, inv.FeesApproximated)
	assertMoneyInvariants(t, inv)
}

func TestIndividualsItemLayout(t *testing.T) {
	gen := NewIndividualsGenerator(nil)

	reg := individualsRegistration(150)
	reg.RegistrationData.SelectedTickets = append(reg.RegistrationData.SelectedTickets,
		models.TicketRecord{TicketID: "t2", Name: "Extra Programme", Price: 20.0})

	inv, err := gen.Generate(context.Background(), stripePayment(170), reg, GenerationOptions{})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(inv.Items), 2)
	header := inv.Items[0]
	assert.Equal(t, "IND-123456 | Individuals for Grand Installation 2024", header.Description)
	assert.Zero(t, header.Quantity)
	assert.Zero(t, header.Price)

	attendeeRow := inv.Items[1]
	assert.Equal(t, "W Bro John Smith | Lodge Unity No. 6", attendeeRow.Description)
	assert.Zero(t, attendeeRow.Quantity)
	require.Len(t, attendeeRow.SubItems, 2)
	assert.Equal(t, "  - Banquet", attendeeRow.SubItems[0].Description)
	assert.Equal(t, 150.0, attendeeRow.SubItems[0].Total)
}

func TestRegistrationOwnedTicketReachesPrimary(t *testing.T) {
	gen := NewIndividualsGenerator(nil)

	reg := individualsRegistration(150)
	reg.RegistrationData.SelectedTickets = []models.TicketRecord{
		{TicketID: "t1", Name: "Banquet", Price: 150.0, OwnerType: "registration", OwnerID: "reg-1"},
	}

	inv, err := gen.Generate(context.Background(), stripePayment(150), reg, GenerationOptions{})
	require.NoError(t, err)

	require.Len(t, inv.Items, 2)
	require.Len(t, inv.Items[1].SubItems, 1)
	assert.Equal(t, "  - Banquet", inv.Items[1].SubItems[0].Description)
	assert.Equal(t, 150.0, inv.Subtotal)
}

func TestLodgeAggregateRow(t *testing.T) {
	gen := NewLodgeGenerator(nil)

	reg := &models.RegistrationRecord{
		RegistrationID:     "reg-2",
		ConfirmationNumber: "LDG-654321",
		RegistrationType:   "lodge",
		FunctionName:       "Grand Installation 2024",
		RegistrationData: &models.RegistrationData{
			LodgeDetails: &models.LodgeDetails{LodgeName: "Lodge Unity", LodgeNumber: "6", MemberCount: 4},
			Attendees: []models.AttendeeRecord{
				{AttendeeID: "a1", FirstName: "M1", IsPrimary: true},
				{AttendeeID: "a2", FirstName: "M2"},
				{AttendeeID: "a3", FirstName: "M3"},
				{AttendeeID: "a4", FirstName: "M4"},
			},
			SelectedTickets: []models.TicketRecord{
				{TicketID: "t1", Name: "Package", Price: 100.0, OwnerType: "attendee", OwnerID: "a1"},
				{TicketID: "t2", Name: "Package", Price: 100.0, OwnerType: "attendee", OwnerID: "a2"},
				{TicketID: "t3", Name: "Package", Price: 100.0, OwnerType: "attendee", OwnerID: "a3"},
				{TicketID: "t4", Name: "Package", Price: 100.0, OwnerType: "attendee", OwnerID: "a4"},
			},
		},
	}

	inv, err := gen.Generate(context.Background(), stripePayment(400), reg, GenerationOptions{})
	require.NoError(t, err)

	require.Len(t, inv.Items, 2)
	assert.Equal(t, "LDG-654321 | Lodge Unity No. 6 for Grand Installation 2024", inv.Items[0].Description)
	row := inv.Items[1]
	assert.Equal(t, "Registration for 4 members of Lodge Unity No. 6", row.Description)
	assert.Equal(t, 4, row.Quantity)
	assert.Equal(t, 100.0, row.Price)
	assert.Equal(t, 400.0, row.Total)
	assert.Equal(t, 400.0, inv.Subtotal)
	assertMoneyInvariants(t, inv)
}

func TestLodgeGroupedTickets(t *testing.T) {
	// no attendee list: tickets sharing a name and price merge into one row
	gen := NewLodgeGenerator(nil)

	tickets := make([]models.TicketRecord, 0, 8)
	for i := 0; i < 5; i++ {
		tickets = append(tickets, models.TicketRecord{Name: "Dinner", Price: 80.0})
	}
	for i := 0; i < 3; i++ {
		tickets = append(tickets, models.TicketRecord{Name: "Ceremony", Price: 100.0})
	}

	reg := &models.RegistrationRecord{
		RegistrationID:   "reg-3",
		RegistrationType: "lodge",
		FunctionName:     "Grand Installation 2024",
		RegistrationData: &models.RegistrationData{
			LodgeDetails:    &models.LodgeDetails{LodgeName: "Lodge Unity", LodgeNumber: "6", MemberCount: 8},
			SelectedTickets: tickets,
		},
	}

	inv, err := gen.Generate(context.Background(), stripePayment(700), reg, GenerationOptions{})
	require.NoError(t, err)

	require.Len(t, inv.Items, 3)
	assert.Equal(t, "Ceremony", inv.Items[1].Description)
	assert.Equal(t, 3, inv.Items[1].Quantity)
	assert.Equal(t, 300.0, inv.Items[1].Total)
	assert.Equal(t, "Dinner", inv.Items[2].Description)
	assert.Equal(t, 5, inv.Items[2].Quantity)
	assert.Equal(t, 400.0, inv.Items[2].Total)
	assert.Equal(t, 700.0, inv.Subtotal)
	assertMoneyInvariants(t, inv)
}

func TestLodgeGroupedTicketsNoteAttendees(t *testing.T) {
	// attendee-tagged tickets without attendee records: each group notes
	// how many attendees it covers
	gen := NewLodgeGenerator(nil)

	reg := &models.RegistrationRecord{
		RegistrationID:   "reg-4",
		RegistrationType: "lodge",
		FunctionName:     "Grand Installation 2024",
		RegistrationData: &models.RegistrationData{
			LodgeDetails: &models.LodgeDetails{LodgeName: "Lodge Unity", LodgeNumber: "6"},
			SelectedTickets: []models.TicketRecord{
				{Name: "Dinner", Price: 80.0, AttendeeID: "a1"},
				{Name: "Dinner", Price: 80.0, AttendeeID: "a2"},
				{Name: "Ceremony", Price: 100.0, AttendeeID: "a1"},
			},
		},
	}

	inv, err := gen.Generate(context.Background(), stripePayment(260), reg, GenerationOptions{})
	require.NoError(t, err)

	require.Len(t, inv.Items, 3)
	assert.Equal(t, "Ceremony (1 attendees)", inv.Items[1].Description)
	assert.Equal(t, "Dinner (2 attendees)", inv.Items[2].Description)
	assert.Equal(t, 2, inv.Items[2].Quantity)
}

func TestGenerateMissingInputs(t *testing.T) {
	gen := NewIndividualsGenerator(nil)

	_, err := gen.Generate(context.Background(), nil, individualsRegistration(150), GenerationOptions{})
	assert.ErrorIs(t, err, ErrMissingPayment)

	_, err = gen.Generate(context.Background(), stripePayment(150), nil, GenerationOptions{})
	assert.ErrorIs(t, err, ErrMissingRegistration)
}

func TestTemporaryInvoiceNumber(t *testing.T) {
	gen := NewIndividualsGenerator(nil)

	inv, err := gen.Generate(context.Background(), stripePayment(150), individualsRegistration(150), GenerationOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "LTIV-TEMP-"))

	inv, err = gen.Generate(context.Background(), stripePayment(150), individualsRegistration(150),
		GenerationOptions{InvoiceNumber: "LTIV-24030042"})
	require.NoError(t, err)
	assert.Equal(t, "LTIV-24030042", inv.InvoiceNumber)
}

func TestInvoiceStatusMapping(t *testing.T) {
	tests := map[string]models.InvoiceStatus{
		"paid":       models.InvoiceStatusPaid,
		"succeeded":  models.InvoiceStatusPaid,
		"processing": models.InvoiceStatusPending,
		"failed":     models.InvoiceStatusCancelled,
		"refunded":   models.InvoiceStatusCancelled,
		"canceled":   models.InvoiceStatusCancelled,
	}

	gen := NewIndividualsGenerator(nil)
	for raw, expected := range tests {
		payment := stripePayment(150)
		payment.Status = raw
		inv, err := gen.Generate(context.Background(), payment, individualsRegistration(150), GenerationOptions{})
		require.NoError(t, err)
		assert.Equal(t, expected, inv.Status, "payment status %q", raw)
	}
}

func TestGeneratorFor(t *testing.T) {
	for _, typ := range []string{"individuals", "individual"} {
		gen, err := GeneratorFor(typ, nil)
		require.NoError(t, err)
		assert.IsType(t, &IndividualsGenerator{}, gen)
	}
	for _, typ := range []string{"lodge", "organisation", "organization", "delegation"} {
		gen, err := GeneratorFor(typ, nil)
		require.NoError(t, err)
		assert.IsType(t, &LodgeGenerator{}, gen)
	}

	_, err := GeneratorFor("webinar", nil)
	assert.ErrorIs(t, err, ErrUnknownRegistrationType)
}

func TestFormatInvoiceNumber(t *testing.T) {
	date, _ := parseDate("2024-03-15T10:30:00Z")
	assert.Equal(t, "LTIV-24030042", FormatInvoiceNumber("LTIV-", date, 42))
}

func TestDueDateThirtyDays(t *testing.T) {
	gen := NewIndividualsGenerator(nil)

	inv, err := gen.Generate(context.Background(), stripePayment(150), individualsRegistration(150), GenerationOptions{})
	require.NoError(t, err)
	assert.Equal(t, inv.Date.AddDate(0, 0, 30), inv.DueDate)
}
