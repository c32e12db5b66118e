package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgetix/pkg/models"
)

// fakeStore serves canned attendee and ticket documents.
type fakeStore struct {
	attendees         map[string]models.AttendeeRecord
	tickets           map[string]models.TicketRecord
	ticketsByAttendee map[string][]models.TicketRecord
}

func (f *fakeStore) AttendeesByIDs(_ context.Context, ids []string) ([]models.AttendeeRecord, error) {
	var out []models.AttendeeRecord
	for _, id := range ids {
		if a, ok := f.attendees[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) TicketsByIDs(_ context.Context, ids []string) ([]models.TicketRecord, error) {
	var out []models.TicketRecord
	for _, id := range ids {
		if t, ok := f.tickets[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) TicketsByAttendeeIDs(_ context.Context, attendeeIDs []string) ([]models.TicketRecord, error) {
	var out []models.TicketRecord
	for _, id := range attendeeIDs {
		out = append(out, f.ticketsByAttendee[id]...)
	}
	return out, nil
}

func TestProcessEmbeddedRegistration(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	reg := &models.RegistrationRecord{
		RegistrationID:     "reg-1",
		ConfirmationNumber: "IND-123456",
		RegistrationType:   "individuals",
		FunctionName:       "Grand Installation 2024",
		RegistrationData: &models.RegistrationData{
			Attendees: []models.AttendeeRecord{
				{AttendeeID: "att-1", Title: "W Bro", FirstName: "John", LastName: "Smith", IsPrimary: true,
					LodgeNameNumber: "Lodge Unity No. 6"},
				{AttendeeID: "att-2", FirstName: "Peter", LastName: "Jones"},
			},
			SelectedTickets: []models.TicketRecord{
				{TicketID: "t1", Name: "Banquet", Price: 150.0, OwnerType: "attendee", OwnerID: "att-1"},
				{TicketID: "t2", Name: "Ceremony", Price: 80.0, OwnerType: "attendee", OwnerID: "att-2"},
			},
		},
	}

	processed, err := p.Process(context.Background(), reg)
	require.NoError(t, err)

	assert.Equal(t, "reg-1", processed.RegistrationID)
	assert.Equal(t, "individuals", processed.RegistrationType)
	assert.Equal(t, "Grand Installation 2024", processed.FunctionName)
	require.Len(t, processed.Attendees, 2)
	assert.Equal(t, "W Bro John Smith", processed.Attendees[0].Name)
	assert.True(t, processed.Attendees[0].IsPrimary)
	require.Len(t, processed.Attendees[0].Tickets, 1)
	assert.Equal(t, "Banquet", processed.Attendees[0].Tickets[0].Name)
	assert.Empty(t, processed.UnclaimedTickets)
	assert.Equal(t, 230.0, processed.TotalTicketValue())
}

func TestProcessReferenceRegistration(t *testing.T) {
	store := &fakeStore{
		attendees: map[string]models.AttendeeRecord{
			"att-1": {AttendeeID: "att-1", FirstName: "John", LastName: "Smith", IsPrimary: true},
		},
		tickets: map[string]models.TicketRecord{
			"t1": {TicketID: "t1", Name: "Banquet", Price: 150.0, OwnerType: "attendee", OwnerID: "att-1"},
		},
	}
	p := NewRegistrationProcessor(store)

	reg := &models.RegistrationRecord{
		RegistrationID: "reg-1",
		AttendeeIDs:    []string{"att-1"},
		TicketIDs:      []string{"t1"},
	}

	processed, err := p.Process(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, processed.Attendees, 1)
	require.Len(t, processed.Attendees[0].Tickets, 1)
	assert.Equal(t, 150.0, processed.Attendees[0].Tickets[0].Price)
}

func TestProcessAttendeeReferenceOnlyRegistration(t *testing.T) {
	// a registration carrying only attendee ids: tickets are resolved
	// through the attendees, not the registration document
	store := &fakeStore{
		attendees: map[string]models.AttendeeRecord{
			"att-1": {AttendeeID: "att-1", FirstName: "John", LastName: "Smith", IsPrimary: true},
			"att-2": {AttendeeID: "att-2", FirstName: "Peter", LastName: "Jones"},
		},
		ticketsByAttendee: map[string][]models.TicketRecord{
			"att-1": {{TicketID: "t1", Name: "Banquet", Price: 150.0, OwnerType: "attendee", OwnerID: "att-1"}},
			"att-2": {{TicketID: "t2", Name: "Ceremony", Price: 80.0, OwnerType: "attendee", OwnerID: "att-2"}},
		},
	}
	p := NewRegistrationProcessor(store)

	reg := &models.RegistrationRecord{
		RegistrationID: "reg-1",
		AttendeeIDs:    []string{"att-1", "att-2"},
	}

	processed, err := p.Process(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, processed.Attendees, 2)
	require.Len(t, processed.Attendees[0].Tickets, 1)
	require.Len(t, processed.Attendees[1].Tickets, 1)
	assert.Equal(t, 230.0, processed.TotalTicketValue())
}

func TestProcessReferenceRegistrationWithoutStore(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	_, err := p.Process(context.Background(), &models.RegistrationRecord{
		RegistrationID: "reg-1",
		AttendeeIDs:    []string{"att-1"},
	})
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestProcessNilRegistration(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	_, err := p.Process(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingRegistration)
}

func TestFirstAttendeePromotedToPrimary(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	reg := &models.RegistrationRecord{
		RegistrationID: "reg-1",
		Attendees: []models.AttendeeRecord{
			{AttendeeID: "att-1", FirstName: "First"},
			{AttendeeID: "att-2", FirstName: "Second"},
		},
	}

	processed, err := p.Process(context.Background(), reg)
	require.NoError(t, err)
	assert.True(t, processed.Attendees[0].IsPrimary)
	assert.False(t, processed.Attendees[1].IsPrimary)
}

func TestResolveBillingDetails(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	t.Run("metadata billing details win", func(t *testing.T) {
		reg := &models.RegistrationRecord{
			RegistrationData: &models.RegistrationData{
				Metadata: &models.RegistrationMetadata{
					BillingDetails: &models.ContactRecord{
						FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
						AddressLine1: "1 Main St", Suburb: "Chiswick", Postcode: "2046", State: "NSW",
					},
				},
				BookingContact: &models.ContactRecord{FirstName: "Other", LastName: "Person"},
			},
		}

		processed, err := p.Process(context.Background(), reg)
		require.NoError(t, err)
		b := processed.BillingDetails
		assert.Equal(t, "Jane", b.FirstName)
		assert.Equal(t, "jane@example.com", b.Email)
		assert.Equal(t, "Chiswick", b.City)
		assert.Equal(t, "2046", b.PostalCode)
	})

	t.Run("falls back to booking contact", func(t *testing.T) {
		reg := &models.RegistrationRecord{
			BookingContact: &models.ContactRecord{Name: "Jane Anne Doe", EmailAddress: "jane@example.com"},
		}

		processed, err := p.Process(context.Background(), reg)
		require.NoError(t, err)
		assert.Equal(t, "Jane", processed.BillingDetails.FirstName)
		assert.Equal(t, "Anne Doe", processed.BillingDetails.LastName)
	})

	t.Run("falls back to primary attendee", func(t *testing.T) {
		reg := &models.RegistrationRecord{
			Attendees: []models.AttendeeRecord{
				{AttendeeID: "att-1", Title: "Bro", FirstName: "John", LastName: "Smith", IsPrimary: true},
			},
		}

		processed, err := p.Process(context.Background(), reg)
		require.NoError(t, err)
		assert.Equal(t, "John", processed.BillingDetails.FirstName)
		assert.Equal(t, "Smith", processed.BillingDetails.LastName)
	})

	t.Run("defaults always filled", func(t *testing.T) {
		processed, err := p.Process(context.Background(), &models.RegistrationRecord{})
		require.NoError(t, err)
		b := processed.BillingDetails
		assert.Equal(t, "no-email@lodgetix.io", b.Email)
		assert.Equal(t, "NSW", b.StateProvince)
		assert.Equal(t, "Australia", b.Country)
	})
}

func TestResolveLodge(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	t.Run("nested lodge details", func(t *testing.T) {
		reg := &models.RegistrationRecord{
			RegistrationData: &models.RegistrationData{
				LodgeDetails: &models.LodgeDetails{
					LodgeName: "Lodge Unity", LodgeNumber: "6", MemberCount: 8, PricePerMember: 87.5,
				},
			},
		}

		processed, err := p.Process(context.Background(), reg)
		require.NoError(t, err)
		require.NotNil(t, processed.Lodge)
		assert.Equal(t, "Lodge Unity No. 6", processed.Lodge.Display())
		assert.Equal(t, 8, processed.Lodge.MemberCount)
		assert.Equal(t, 87.5, processed.Lodge.PricePerMember)
	})

	t.Run("no lodge data at all", func(t *testing.T) {
		processed, err := p.Process(context.Background(), &models.RegistrationRecord{})
		require.NoError(t, err)
		assert.Nil(t, processed.Lodge)
	})
}

func TestProcessedTicketDefaults(t *testing.T) {
	p := NewRegistrationProcessor(nil)

	reg := &models.RegistrationRecord{
		RegistrationID: "reg-1",
		SelectedTickets: []models.TicketRecord{
			{TicketID: "t1", TicketName: "Banquet", Amount: "$80.00"},
		},
	}

	processed, err := p.Process(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, processed.UnclaimedTickets, 1)
	ticket := processed.UnclaimedTickets[0]
	assert.Equal(t, "Banquet", ticket.Name)
	assert.Equal(t, 1, ticket.Quantity)
	assert.Equal(t, 80.0, ticket.Price)
}
