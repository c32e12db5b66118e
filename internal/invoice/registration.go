package invoice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"lodgetix/internal/logger"
	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// RegistrationStore resolves reference-shaped registrations, where attendees
// and tickets are stored in normalized collections instead of embedded in the
// registration document. Lookups are batched.
type RegistrationStore interface {
	AttendeesByIDs(ctx context.Context, ids []string) ([]models.AttendeeRecord, error)
	TicketsByIDs(ctx context.Context, ids []string) ([]models.TicketRecord, error)
	TicketsByAttendeeIDs(ctx context.Context, attendeeIDs []string) ([]models.TicketRecord, error)
}

// ProcessedTicket is a ticket with its price and ownership resolved.
type ProcessedTicket struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	AttendeeID    string  `json:"attendeeId,omitempty"`
	OwnerID       string  `json:"ownerId,omitempty"`
	OwnerType     string  `json:"ownerType,omitempty"`
	EventTicketID string  `json:"eventTicketId,omitempty"`
}

// ProcessedAttendee is an attendee with a display name and, after the
// association cascade has run, the tickets assigned to them.
type ProcessedAttendee struct {
	ID              string            `json:"id"`
	Title           string            `json:"title,omitempty"`
	FirstName       string            `json:"firstName,omitempty"`
	LastName        string            `json:"lastName,omitempty"`
	Name            string            `json:"name"`
	IsPrimary       bool              `json:"isPrimary"`
	LodgeNameNumber string            `json:"lodgeNameNumber,omitempty"`
	Tickets         []ProcessedTicket `json:"tickets,omitempty"`
}

// BillingDetails is the resolved invoiced party, assembled from whichever of
// the registration's contact structures is present.
type BillingDetails struct {
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

// LodgeInfo is the lodge descriptor of a lodge registration.
type LodgeInfo struct {
	Name           string  `json:"name,omitempty"`
	Number         string  `json:"number,omitempty"`
	NameNumber     string  `json:"nameNumber,omitempty"`
	MemberCount    int     `json:"memberCount,omitempty"`
	PricePerMember float64 `json:"pricePerMember,omitempty"`
}

// Display returns the lodge's display label.
func (l LodgeInfo) Display() string {
	if l.NameNumber != "" {
		return l.NameNumber
	}
	if l.Name != "" && l.Number != "" {
		return fmt.Sprintf("%s No. %s", l.Name, l.Number)
	}
	if l.Name != "" {
		return l.Name
	}
	return "Lodge"
}

// ProcessedRegistration is the normalized registration: attendees with their
// tickets assigned, remaining unclaimed tickets, and the resolved billing
// contact.
type ProcessedRegistration struct {
	RegistrationID     string `json:"registrationId"`
	ConfirmationNumber string `json:"confirmationNumber,omitempty"`
	RegistrationType   string `json:"registrationType"`
	FunctionName       string `json:"functionName,omitempty"`

	Attendees        []ProcessedAttendee `json:"attendees"`
	UnclaimedTickets []ProcessedTicket   `json:"unclaimedTickets,omitempty"`

	BillingDetails BillingDetails `json:"billingDetails"`
	Lodge          *LodgeInfo     `json:"lodge,omitempty"`
}

// TotalTicketValue sums price*quantity over every ticket, assigned or not.
func (r *ProcessedRegistration) TotalTicketValue() float64 {
	var total float64
	for i := range r.Attendees {
		for _, t := range r.Attendees[i].Tickets {
			total += t.Price * float64(t.Quantity)
		}
	}
	for _, t := range r.UnclaimedTickets {
		total += t.Price * float64(t.Quantity)
	}
	return money.Round(total)
}

// Billing contact defaults applied when the registration gives us nothing.
const (
	defaultBillingEmail   = "no-email@lodgetix.io"
	defaultBillingState   = "NSW"
	defaultBillingCountry = "Australia"
)

// RegistrationProcessor normalizes raw registration records and runs the
// ticket association cascade.
type RegistrationProcessor struct {
	store RegistrationStore
	log   zerolog.Logger
}

// NewRegistrationProcessor creates a registration processor. The store may be
// nil when only embedded-shape registrations will be processed.
func NewRegistrationProcessor(store RegistrationStore) *RegistrationProcessor {
	return &RegistrationProcessor{
		store: store,
		log:   logger.WithComponent("registration-processor"),
	}
}

// Process normalizes a registration: collects attendees and tickets from
// whichever shape the record uses, resolves references through the store,
// assigns tickets to attendees, and resolves the billing contact.
func (p *RegistrationProcessor) Process(ctx context.Context, reg *models.RegistrationRecord) (*ProcessedRegistration, error) {
	if reg == nil {
		return nil, NewGenerationError("registration.process", ErrMissingRegistration, "")
	}

	rawAttendees, rawTickets, err := p.collectRaw(ctx, reg)
	if err != nil {
		return nil, err
	}

	attendees := make([]ProcessedAttendee, 0, len(rawAttendees))
	for _, a := range rawAttendees {
		attendees = append(attendees, processAttendee(a))
	}
	if len(attendees) > 0 {
		hasPrimary := false
		for _, a := range attendees {
			if a.IsPrimary {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			attendees[0].IsPrimary = true
		}
	}

	tickets := make([]ProcessedTicket, 0, len(rawTickets))
	for _, t := range rawTickets {
		tickets = append(tickets, processTicket(t))
	}

	processed := &ProcessedRegistration{
		RegistrationID:     firstNonEmpty(reg.RegistrationID, reg.MongoID),
		ConfirmationNumber: reg.ConfirmationNumber,
		RegistrationType:   p.registrationType(reg),
		FunctionName:       p.functionName(reg),
		Lodge:              resolveLodge(reg),
	}

	processed.Attendees, processed.UnclaimedTickets = AssignTickets(processed.RegistrationID, attendees, tickets)
	processed.BillingDetails = p.resolveBillingDetails(reg, processed.Attendees)

	p.log.Debug().
		Str("registration_id", processed.RegistrationID).
		Str("type", processed.RegistrationType).
		Int("attendees", len(processed.Attendees)).
		Int("tickets", len(tickets)).
		Int("unclaimed", len(processed.UnclaimedTickets)).
		Msg("Registration normalized")

	return processed, nil
}

// collectRaw gathers attendee and ticket records from the embedded fields,
// falling back to batched store lookups for reference-shaped registrations.
func (p *RegistrationProcessor) collectRaw(ctx context.Context, reg *models.RegistrationRecord) ([]models.AttendeeRecord, []models.TicketRecord, error) {
	attendees := reg.Attendees
	tickets := firstTickets(reg.SelectedTickets, reg.Tickets)
	attendeeIDs := reg.AttendeeIDs
	ticketIDs := reg.TicketIDs

	if data := reg.RegistrationData; data != nil {
		if len(attendees) == 0 {
			attendees = data.Attendees
		}
		if len(tickets) == 0 {
			tickets = firstTickets(data.SelectedTickets, data.Tickets)
		}
		if len(attendeeIDs) == 0 {
			attendeeIDs = data.AttendeeIDs
		}
		if len(ticketIDs) == 0 {
			ticketIDs = data.TicketIDs
		}
	}

	if len(attendees) == 0 && len(attendeeIDs) > 0 {
		if p.store == nil {
			return nil, nil, NewGenerationError("registration.resolve", ErrNoStore, "")
		}
		fetched, err := p.store.AttendeesByIDs(ctx, attendeeIDs)
		if err != nil {
			return nil, nil, WrapGenerationError("registration.resolve", err, "attendee lookup failed")
		}
		attendees = fetched

		// Reference-shaped registrations often carry attendee ids only;
		// their tickets live under the attendees, not the registration.
		if len(tickets) == 0 && len(ticketIDs) == 0 {
			ids := make([]string, 0, len(attendees))
			for _, a := range attendees {
				if a.AttendeeID != "" {
					ids = append(ids, a.AttendeeID)
				}
			}
			if len(ids) > 0 {
				fetchedTickets, err := p.store.TicketsByAttendeeIDs(ctx, ids)
				if err != nil {
					return nil, nil, WrapGenerationError("registration.resolve", err, "attendee ticket lookup failed")
				}
				tickets = fetchedTickets
			}
		}
	}
	if len(tickets) == 0 && len(ticketIDs) > 0 {
		if p.store == nil {
			return nil, nil, NewGenerationError("registration.resolve", ErrNoStore, "")
		}
		fetched, err := p.store.TicketsByIDs(ctx, ticketIDs)
		if err != nil {
			return nil, nil, WrapGenerationError("registration.resolve", err, "ticket lookup failed")
		}
		tickets = fetched
	}

	return attendees, tickets, nil
}

func firstTickets(lists ...[]models.TicketRecord) []models.TicketRecord {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

func (p *RegistrationProcessor) registrationType(reg *models.RegistrationRecord) string {
	t := firstNonEmpty(reg.RegistrationType, reg.Type)
	if t == "" && reg.RegistrationData != nil {
		t = reg.RegistrationData.Type
	}
	return strings.ToLower(firstNonEmpty(t, "individuals"))
}

func (p *RegistrationProcessor) functionName(reg *models.RegistrationRecord) string {
	name := reg.FunctionName
	if name == "" && reg.RegistrationData != nil {
		name = reg.RegistrationData.FunctionName
	}
	return firstNonEmpty(name, "Event")
}

func processAttendee(a models.AttendeeRecord) ProcessedAttendee {
	attendee := ProcessedAttendee{
		ID:        firstNonEmpty(a.AttendeeID, a.MongoID),
		Title:     a.Title,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		IsPrimary: a.IsPrimary,
	}

	attendee.Name = strings.TrimSpace(strings.Join(compact(a.Title, a.FirstName, a.LastName), " "))
	if attendee.Name == "" {
		attendee.Name = firstNonEmpty(a.Name, "Unknown Attendee")
	}

	attendee.LodgeNameNumber = a.LodgeNameNumber
	if attendee.LodgeNameNumber == "" && a.Membership != nil {
		attendee.LodgeNameNumber = a.Membership.LodgeNameNumber
		if attendee.LodgeNameNumber == "" && a.Membership.LodgeName != "" {
			attendee.LodgeNameNumber = strings.TrimSpace(a.Membership.LodgeName + " " + a.Membership.LodgeNumber)
		}
	}

	return attendee
}

func compact(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func processTicket(t models.TicketRecord) ProcessedTicket {
	ticket := ProcessedTicket{
		ID:            firstNonEmpty(t.TicketID, t.MongoID),
		Name:          firstNonEmpty(t.Name, t.TicketName, t.EventName, "Ticket"),
		AttendeeID:    t.AttendeeID,
		OwnerID:       firstNonEmpty(t.OwnerID, t.AttendeeID),
		OwnerType:     t.OwnerType,
		EventTicketID: firstNonEmpty(t.EventTicketID, t.EventTicketIDSnake),
		Quantity:      t.Quantity,
	}
	if ticket.Quantity <= 0 {
		ticket.Quantity = 1
	}

	for _, raw := range []any{t.Price, t.Amount, t.Cost} {
		if raw != nil {
			ticket.Price = money.Value(raw)
			break
		}
	}

	return ticket
}

func resolveLodge(reg *models.RegistrationRecord) *LodgeInfo {
	candidates := []*models.LodgeDetails{reg.Lodge}
	if reg.RegistrationData != nil {
		candidates = append(candidates, reg.RegistrationData.Lodge, reg.RegistrationData.LodgeDetails)
	}

	info := LodgeInfo{
		Name:       reg.LodgeName,
		Number:     reg.LodgeNumber,
		NameNumber: reg.LodgeNameNumber,
	}
	if reg.RegistrationData != nil {
		info.Name = firstNonEmpty(info.Name, reg.RegistrationData.LodgeName)
		info.Number = firstNonEmpty(info.Number, reg.RegistrationData.LodgeNumber)
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		info.Name = firstNonEmpty(info.Name, c.Name, c.LodgeName)
		info.Number = firstNonEmpty(info.Number, c.Number, c.LodgeNumber)
		info.NameNumber = firstNonEmpty(info.NameNumber, c.NameNumber, c.LodgeNameNumber)
		if info.MemberCount == 0 {
			info.MemberCount = c.MemberCount
		}
		if info.PricePerMember == 0 && c.PricePerMember != nil {
			info.PricePerMember = money.Value(c.PricePerMember)
		}
	}

	if info.Name == "" && info.Number == "" && info.NameNumber == "" && info.MemberCount == 0 {
		return nil
	}
	return &info
}

// resolveBillingDetails assembles the invoiced party. Priority: the nested
// metadata billingDetails, then the booking contact, then the flat customer
// fields, then the primary attendee. Email, state and country always come
// back filled.
func (p *RegistrationProcessor) resolveBillingDetails(reg *models.RegistrationRecord, attendees []ProcessedAttendee) BillingDetails {
	var b BillingDetails

	contacts := make([]*models.ContactRecord, 0, 3)
	if reg.RegistrationData != nil && reg.RegistrationData.Metadata != nil {
		contacts = append(contacts, reg.RegistrationData.Metadata.BillingDetails)
	}
	if reg.Metadata != nil {
		contacts = append(contacts, reg.Metadata.BillingDetails)
	}
	if reg.RegistrationData != nil {
		contacts = append(contacts, reg.RegistrationData.BookingContact)
	}
	contacts = append(contacts, reg.BookingContact)

	for _, c := range contacts {
		if c == nil {
			continue
		}
		mergeContact(&b, c)
	}

	if b.FirstName == "" && b.LastName == "" && reg.CustomerName != "" {
		b.FirstName, b.LastName = splitName(reg.CustomerName)
	}
	b.Email = firstNonEmpty(b.Email, reg.CustomerEmail)

	if b.FirstName == "" && b.LastName == "" {
		for _, a := range attendees {
			if a.IsPrimary {
				b.Title = firstNonEmpty(b.Title, a.Title)
				b.FirstName = a.FirstName
				b.LastName = a.LastName
				if b.FirstName == "" && b.LastName == "" {
					b.FirstName, b.LastName = splitName(a.Name)
				}
				break
			}
		}
	}

	b.Email = firstNonEmpty(b.Email, defaultBillingEmail)
	b.StateProvince = firstNonEmpty(b.StateProvince, defaultBillingState)
	b.Country = firstNonEmpty(b.Country, defaultBillingCountry)

	return b
}

func mergeContact(b *BillingDetails, c *models.ContactRecord) {
	b.BusinessName = firstNonEmpty(b.BusinessName, c.BusinessName, c.Company, c.Organisation)
	b.BusinessNumber = firstNonEmpty(b.BusinessNumber, c.BusinessNumber, c.ABN)
	b.Title = firstNonEmpty(b.Title, c.Title)
	if b.FirstName == "" && b.LastName == "" {
		b.FirstName = c.FirstName
		b.LastName = c.LastName
		if b.FirstName == "" && b.LastName == "" && c.Name != "" {
			b.FirstName, b.LastName = splitName(c.Name)
		}
	}
	b.Email = firstNonEmpty(b.Email, c.Email, c.EmailAddress)
	b.Phone = firstNonEmpty(b.Phone, c.Phone, c.PhoneNumber)
	b.MobileNumber = firstNonEmpty(b.MobileNumber, c.MobileNumber, c.Mobile)
	b.AddressLine1 = firstNonEmpty(b.AddressLine1, c.AddressLine1, c.Address)
	b.AddressLine2 = firstNonEmpty(b.AddressLine2, c.AddressLine2)
	b.City = firstNonEmpty(b.City, c.City, c.Suburb)
	b.PostalCode = firstNonEmpty(b.PostalCode, c.PostalCode, c.Postcode)
	b.StateProvince = firstNonEmpty(b.StateProvince, c.StateProvince, c.State)
	b.Country = firstNonEmpty(b.Country, c.Country)
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
