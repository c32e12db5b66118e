package invoice

import (
	"context"
	"fmt"
	"sort"

	"lodgetix/internal/money"
	"lodgetix/pkg/models"
)

// LodgeGenerator builds customer invoices for lodge, organisation and
// delegation registrations. The bill is presented per lodge rather than per
// person: one aggregate membership row when attendees are known, or grouped
// ticket rows when the registration only carries tickets.
type LodgeGenerator struct {
	baseGenerator
}

// NewLodgeGenerator creates a lodge-registration generator.
func NewLodgeGenerator(store RegistrationStore) *LodgeGenerator {
	return &LodgeGenerator{
		baseGenerator: newBaseGenerator(store, "lodge-generator"),
	}
}

// Generate builds the customer invoice.
func (g *LodgeGenerator) Generate(ctx context.Context, payment *models.PaymentRecord, registration *models.RegistrationRecord, opts GenerationOptions) (*models.Invoice, error) {
	const op = "lodge.generate"

	info, processed, err := g.prepare(ctx, op, payment, registration)
	if err != nil {
		return nil, err
	}

	inv := g.skeleton(info, processed, opts)
	if b := processed.BillingDetails; b.BusinessName == "" && processed.Lodge != nil {
		inv.BillTo.BusinessName = processed.Lodge.Display()
	}
	inv.Items = g.buildItems(processed)
	g.finalize(inv)

	return inv, nil
}

func (g *LodgeGenerator) buildItems(processed *ProcessedRegistration) []models.InvoiceItem {
	lodge := processed.Lodge
	if lodge == nil {
		lodge = &LodgeInfo{}
	}

	header := headerItem(processed, fmt.Sprintf("%s for %s", lodge.Display(), processed.FunctionName))
	items := []models.InvoiceItem{header}

	if len(processed.Attendees) > 0 {
		items = append(items, g.aggregateItem(processed, lodge))
		return items
	}

	items = append(items, groupTickets(processed.UnclaimedTickets)...)
	return items
}

// aggregateItem folds the whole registration into one membership row: the
// member count times the average ticket value per member.
func (g *LodgeGenerator) aggregateItem(processed *ProcessedRegistration, lodge *LodgeInfo) models.InvoiceItem {
	count := lodge.MemberCount
	if count == 0 {
		count = len(processed.Attendees)
	}

	total := processed.TotalTicketValue()
	price := lodge.PricePerMember
	if price == 0 && count > 0 {
		price = money.Round(total / float64(count))
	}

	return models.InvoiceItem{
		Description: fmt.Sprintf("Registration for %d members of %s", count, lodge.Display()),
		Quantity:    count,
		Price:       price,
		Total:       money.Round(float64(count) * price),
	}
}

// groupTickets merges tickets sharing a name and price into single rows with
// summed quantities, ordered by description for stable output. When the
// tickets still carry attendee tags the group notes how many attendees it
// covers.
func groupTickets(tickets []ProcessedTicket) []models.InvoiceItem {
	type key struct {
		name  string
		price float64
	}
	type group struct {
		quantity  int
		attendees map[string]bool
	}

	grouped := make(map[key]*group)
	for _, t := range tickets {
		k := key{t.Name, t.Price}
		g := grouped[k]
		if g == nil {
			g = &group{attendees: make(map[string]bool)}
			grouped[k] = g
		}
		g.quantity += t.Quantity
		if t.AttendeeID != "" {
			g.attendees[t.AttendeeID] = true
		}
	}

	items := make([]models.InvoiceItem, 0, len(grouped))
	for k, g := range grouped {
		desc := k.name
		if n := len(g.attendees); n > 0 {
			desc = fmt.Sprintf("%s (%d attendees)", k.name, n)
		}
		items = append(items, models.InvoiceItem{
			Description: desc,
			Quantity:    g.quantity,
			Price:       k.price,
			Total:       money.Round(float64(g.quantity) * k.price),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Description != items[j].Description {
			return items[i].Description < items[j].Description
		}
		return items[i].Price < items[j].Price
	})
	return items
}
