package models

// RegistrationRecord is a raw registration document. Like payments, these
// exist under several historical shapes: attendees and tickets may be
// embedded in full, or referenced by id into normalized collections, and the
// billing contact may live in three different places.
type RegistrationRecord struct {
	MongoID            string `json:"_id,omitempty"`
	RegistrationID     string `json:"registrationId,omitempty"`
	ConfirmationNumber string `json:"confirmationNumber,omitempty"`
	RegistrationType   string `json:"registrationType,omitempty"`
	Type               string `json:"type,omitempty"`

	FunctionID   string `json:"functionId,omitempty"`
	FunctionName string `json:"functionName,omitempty"`

	RegistrationData *RegistrationData `json:"registrationData,omitempty"`

	// Flat legacy duplicates of registrationData content
	Attendees       []AttendeeRecord `json:"attendees,omitempty"`
	SelectedTickets []TicketRecord   `json:"selectedTickets,omitempty"`
	Tickets         []TicketRecord   `json:"tickets,omitempty"`
	BookingContact  *ContactRecord   `json:"bookingContact,omitempty"`

	// Reference-shaped registrations carry ids instead of embedded documents
	AttendeeIDs []string `json:"attendeeIds,omitempty"`
	TicketIDs   []string `json:"ticketIds,omitempty"`

	LodgeName       string        `json:"lodgeName,omitempty"`
	LodgeNumber     string        `json:"lodgeNumber,omitempty"`
	LodgeNameNumber string        `json:"lodgeNameNumber,omitempty"`
	Lodge           *LodgeDetails `json:"lodge,omitempty"`

	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`

	TotalAmountPaid any `json:"totalAmountPaid,omitempty"`

	Metadata *RegistrationMetadata `json:"metadata,omitempty"`
}

// RegistrationData is the nested payload most registrations carry.
type RegistrationData struct {
	Type            string           `json:"type,omitempty"`
	Attendees       []AttendeeRecord `json:"attendees,omitempty"`
	SelectedTickets []TicketRecord   `json:"selectedTickets,omitempty"`
	Tickets         []TicketRecord   `json:"tickets,omitempty"`
	BookingContact  *ContactRecord   `json:"bookingContact,omitempty"`

	AttendeeIDs []string `json:"attendeeIds,omitempty"`
	TicketIDs   []string `json:"ticketIds,omitempty"`

	FunctionName string `json:"functionName,omitempty"`

	Lodge        *LodgeDetails `json:"lodge,omitempty"`
	LodgeDetails *LodgeDetails `json:"lodgeDetails,omitempty"`
	LodgeName    string        `json:"lodgeName,omitempty"`
	LodgeNumber  string        `json:"lodgeNumber,omitempty"`
	LodgeABN     string        `json:"lodgeABN,omitempty"`

	Metadata *RegistrationMetadata `json:"metadata,omitempty"`
}

// RegistrationMetadata holds lodge billing details and anything else the
// checkout flow stashed alongside the registration.
type RegistrationMetadata struct {
	BillingDetails *ContactRecord `json:"billingDetails,omitempty"`
}

// AttendeeRecord is a raw attendee, embedded or fetched by reference.
type AttendeeRecord struct {
	AttendeeID string `json:"attendeeId,omitempty"`
	MongoID    string `json:"_id,omitempty"`

	Title     string `json:"title,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`
	IsPrimary bool   `json:"isPrimary,omitempty"`

	PrimaryEmail string `json:"primaryEmail,omitempty"`
	Email        string `json:"email,omitempty"`
	PrimaryPhone string `json:"primaryPhone,omitempty"`
	Phone        string `json:"phone,omitempty"`

	LodgeNameNumber string            `json:"lodgeNameNumber,omitempty"`
	Membership      *MembershipRecord `json:"membership,omitempty"`
}

// MembershipRecord is the newer nested lodge-membership structure.
type MembershipRecord struct {
	LodgeName       string `json:"lodgeName,omitempty"`
	LodgeNumber     string `json:"lodgeNumber,omitempty"`
	LodgeNameNumber string `json:"lodgeNameNumber,omitempty"`
}

// TicketRecord is a raw ticket, embedded or fetched by reference. Ownership
// tagging is known to be inconsistent across import generations; the
// association cascade deals with that.
type TicketRecord struct {
	TicketID string `json:"ticketId,omitempty"`
	MongoID  string `json:"_id,omitempty"`

	AttendeeID string `json:"attendeeId,omitempty"`
	OwnerID    string `json:"ownerId,omitempty"`
	OwnerType  string `json:"ownerType,omitempty"`

	Name       string `json:"name,omitempty"`
	TicketName string `json:"ticketName,omitempty"`
	EventName  string `json:"eventName,omitempty"`

	Price    any `json:"price,omitempty"`
	Amount   any `json:"amount,omitempty"`
	Cost     any `json:"cost,omitempty"`
	Quantity int `json:"quantity,omitempty"`

	Description        string `json:"description,omitempty"`
	EventTicketID      string `json:"eventTicketId,omitempty"`
	EventTicketIDSnake string `json:"event_ticket_id,omitempty"`
}

// ContactRecord covers every historical spelling of a billing contact:
// billingDetails, bookingContact and the flat legacy fields all map here.
type ContactRecord struct {
	BusinessName string `json:"businessName,omitempty"`
	Company      string `json:"company,omitempty"`
	Organisation string `json:"organisation,omitempty"`

	BusinessNumber string `json:"businessNumber,omitempty"`
	ABN            string `json:"abn,omitempty"`

	Title     string `json:"title,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`

	Email        string `json:"email,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`

	Phone        string `json:"phone,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Mobile       string `json:"mobile,omitempty"`

	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Address      string `json:"address,omitempty"`

	City   string `json:"city,omitempty"`
	Suburb string `json:"suburb,omitempty"`

	PostalCode string `json:"postalCode,omitempty"`
	Postcode   string `json:"postcode,omitempty"`

	StateProvince string `json:"stateProvince,omitempty"`
	State         string `json:"state,omitempty"`

	Country string `json:"country,omitempty"`
}

// LodgeDetails is the lodge descriptor found on lodge registrations.
type LodgeDetails struct {
	Name            string `json:"name,omitempty"`
	LodgeName       string `json:"lodgeName,omitempty"`
	Number          string `json:"number,omitempty"`
	LodgeNumber     string `json:"lodgeNumber,omitempty"`
	NameNumber      string `json:"nameNumber,omitempty"`
	LodgeNameNumber string `json:"lodgeNameNumber,omitempty"`
	MemberCount     int    `json:"memberCount,omitempty"`
	PricePerMember  any    `json:"pricePerMember,omitempty"`
}
