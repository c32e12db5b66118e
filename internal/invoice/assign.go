package invoice

import "strings"

// validOwnerTypes are the ownership tags written by the current schema.
// Anything else on a ticket is an artifact of older imports.
var validOwnerTypes = map[string]bool{
	"attendee":     true,
	"registration": true,
}

// AssignTickets runs the ticket association cascade: four matching tiers of
// decreasing strictness, applied per attendee in list order. Every ticket is
// claimed at most once, and each later tier runs only when the earlier tiers
// claimed nothing for the attendee at hand. Whatever no tier claims comes
// back as unclaimed.
//
// Tier 1 takes tickets explicitly owned by the attendee. Tier 2 retries the
// same ownership predicate with whitespace-tolerant id comparison, for type
// drift in older imports. Tiers 3 and 4 apply to the primary attendee only:
// tier 3 claims tickets owned by the registration itself, tier 4 sweeps up
// tickets whose ownership tagging is unusable.
func AssignTickets(registrationID string, attendees []ProcessedAttendee, tickets []ProcessedTicket) ([]ProcessedAttendee, []ProcessedTicket) {
	claimed := make([]bool, len(tickets))
	knownAttendees := make(map[string]bool, len(attendees))
	for _, a := range attendees {
		knownAttendees[a.ID] = true
	}

	for i := range attendees {
		a := &attendees[i]
		matched := false

		// Tier 1: exact ownership
		for j, t := range tickets {
			if claimed[j] {
				continue
			}
			if t.OwnerType == "attendee" && t.OwnerID == a.ID {
				a.Tickets = append(a.Tickets, withAttendee(t, a.ID))
				claimed[j] = true
				matched = true
			}
		}

		// Tier 2: same predicate, whitespace-tolerant ids
		if !matched {
			for j, t := range tickets {
				if claimed[j] {
					continue
				}
				if t.OwnerType == "attendee" && idEqual(t.OwnerID, a.ID) {
					a.Tickets = append(a.Tickets, withAttendee(t, a.ID))
					claimed[j] = true
					matched = true
				}
			}
		}

		if matched || !a.IsPrimary {
			continue
		}

		// Tier 3: registration-owned tickets go to the primary attendee
		// when no tier found anything owned by the primary directly
		for j, t := range tickets {
			if claimed[j] {
				continue
			}
			if validOwnerTypes[t.OwnerType] && idEqual(t.OwnerID, registrationID) {
				a.Tickets = append(a.Tickets, withAttendee(t, a.ID))
				claimed[j] = true
				matched = true
			}
		}
		if matched {
			continue
		}

		// Tier 4: unusable ownership tagging. Tickets with a missing or
		// unknown owner tag first; failing that, attendee-tagged tickets
		// whose owner matches nobody here but that still identify a real
		// event ticket.
		swept := false
		for j, t := range tickets {
			if claimed[j] {
				continue
			}
			if !validOwnerTypes[t.OwnerType] {
				a.Tickets = append(a.Tickets, withAttendee(t, a.ID))
				claimed[j] = true
				swept = true
			}
		}
		if !swept {
			for j, t := range tickets {
				if claimed[j] {
					continue
				}
				if t.OwnerType == "attendee" && !knownAttendees[t.OwnerID] && t.EventTicketID != "" {
					a.Tickets = append(a.Tickets, withAttendee(t, a.ID))
					claimed[j] = true
				}
			}
		}
	}

	var unclaimed []ProcessedTicket
	for j, t := range tickets {
		if !claimed[j] {
			unclaimed = append(unclaimed, t)
		}
	}
	return attendees, unclaimed
}

func withAttendee(t ProcessedTicket, attendeeID string) ProcessedTicket {
	t.AttendeeID = attendeeID
	return t
}

func idEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
