package invoice

import (
	"context"
	"fmt"

	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// IndividualsGenerator builds customer invoices for individuals
// registrations: one label row per attendee with their tickets nested under
// it, so the invoice reads as a per-person breakdown.
type IndividualsGenerator struct {
	baseGenerator
}

// NewIndividualsGenerator creates an individuals-registration generator.
func NewIndividualsGenerator(store RegistrationStore) *IndividualsGenerator {
	return &IndividualsGenerator{
		baseGenerator: newBaseGenerator(store, "individuals-generator"),
	}
}

// Generate builds the customer invoice.
func (g *IndividualsGenerator) Generate(ctx context.Context, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*models.Invoice, error) {
	const op = "individuals.generate"

	info, processed, err := g.prepare(ctx, op, payment, registration)
	if err != nil {
		return nil, err
	}

	inv := g.skeleton(info, processed, opts)
	inv.Items = g.buildItems(processed)
	g.finalize(inv)

	return inv, nil
}

func (g *IndividualsGenerator) buildItems(processed *ProcessedRegistration) []models.InvoiceItem {
	items := []models.InvoiceItem{headerItem(processed, fmt.Sprintf("Individuals for %s", processed.FunctionName))}

	for _, a := range processed.Attendees {
		row := models.InvoiceItem{Description: attendeeLabel(a)}
		for _, t := range a.Tickets {
			row.SubItems = append(row.SubItems, ticketItem(t, true))
		}
		items = append(items, row)
	}

	for _, t := range processed.UnclaimedTickets {
		items = append(items, ticketItem(t, false))
	}

	return items
}

// attendeeLabel renders the attendee row description, appending the lodge
// when known.
func attendeeLabel(a ProcessedAttendee) string {
	if a.LodgeNameNumber != "" {
		return fmt.Sprintf("%s | %s", a.Name, a.LodgeNameNumber)
	}
	return a.Name
}

// headerItem is the label-only first row identifying the registration.
func headerItem(processed *ProcessedRegistration, detail string) models.InvoiceItem {
	desc := detail
	if processed.ConfirmationNumber != "" {
		desc = fmt.Sprintf("%s | %s", processed.ConfirmationNumber, detail)
	}
	return models.InvoiceItem{Description: desc}
}

// ticketItem renders a ticket row. Nested rows are prefixed so rendered
// invoices show them indented under their attendee.
func ticketItem(t ProcessedTicket, nested bool) models.InvoiceItem {
	desc := t.Name
	if nested {
		desc = "  - " + t.Name
	}
	return models.InvoiceItem{
		Description: desc,
		Quantity:    t.Quantity,
		Price:       t.Price,
		Total:       money.Round(float64(t.Quantity) * t.Price),
	}
}
