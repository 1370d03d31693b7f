// Package tickets performs ticket purchases against event documents in the
// remote store and lists a user's purchased tickets.
//
// A purchase is a plain read-modify-write: read the document, decrement
// quantity, increment sold, append a purchase record, write it back. There
// is no conditional write, so two devices buying the last tickets at the
// same time can both succeed and oversell. The quantity is floored at zero
// so the count never goes negative; the sold counter keeps the truth of how
// many tickets actually went out.
package tickets

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/remote"
)

// Ticket types.
const (
	TypeStandard = "standard"
	TypeVIP      = "vip"
)

// vipMultiplier is the VIP price markup over the standard ticket price.
const vipMultiplier = 1.8

// Request describes one purchase.
type Request struct {
	EventID    string
	UserID     string
	Quantity   int
	TicketType string
}

// Receipt is the result of a successful purchase.
type Receipt struct {
	PurchaseID  string
	EventID     string
	EventName   string
	Quantity    int
	TicketType  string
	UnitPrice   float64
	Total       float64
	Remaining   int // -1 when the event has unlimited inventory
	PurchasedAt utc.Time
}

// Ticket is one purchase as it appears in the user's ticket list.
type Ticket struct {
	PurchaseID  string
	EventID     string
	EventName   string
	EventDate   string
	EventImage  string
	Location    string
	Quantity    int
	TicketType  string
	PurchasedAt utc.Time
}

// Updater buys tickets and lists them.
type Updater struct {
	store remote.DocumentStore
	now   func() time.Time
}

// New creates a ticket updater on top of the document store.
func New(store remote.DocumentStore) *Updater {
	return &Updater{store: store, now: time.Now}
}

// Purchase executes the read-modify-write described in the package
// comment. The requested quantity must be at least one; checking it
// against the remaining inventory is the caller's job, and a request that
// exceeds it simply floors the quantity at zero.
func (u *Updater) Purchase(ctx context.Context, req Request) (Receipt, error) {
	if req.EventID == "" {
		return Receipt{}, errors.NewValidationError("eventID", req.EventID, "event id is required")
	}
	if req.UserID == "" {
		return Receipt{}, errors.NewValidationError("userID", req.UserID, "user id is required")
	}
	if req.Quantity < 1 {
		return Receipt{}, errors.NewValidationError("quantity", req.Quantity, "quantity must be at least 1")
	}
	ticketType := req.TicketType
	if ticketType == "" {
		ticketType = TypeStandard
	}
	if ticketType != TypeStandard && ticketType != TypeVIP {
		return Receipt{}, errors.NewValidationError("ticketType", req.TicketType, "unknown ticket type")
	}

	doc, err := u.store.Get(ctx, remote.CollectionEvents, req.EventID)
	if err != nil {
		return Receipt{}, err
	}
	event, err := events.FromDocument(doc.ID, doc.Fields)
	if err != nil {
		return Receipt{}, err
	}

	purchasedAt := utc.Time{Time: u.now().UTC()}
	record := map[string]any{
		"id":           uuid.NewString(),
		"userId":       req.UserID,
		"quantity":     req.Quantity,
		"ticketType":   ticketType,
		"purchaseDate": purchasedAt.Format(time.RFC3339),
	}

	update := map[string]any{
		"sold":      event.Sold + req.Quantity,
		"purchases": append(purchaseRecords(doc.Fields), record),
	}

	remaining := -1
	if event.Quantity != nil {
		remaining = *event.Quantity - req.Quantity
		if remaining < 0 {
			// Floor, never negative. The sold counter still records the
			// oversell.
			remaining = 0
		}
		update["quantity"] = remaining
	}

	if err := u.store.Update(ctx, remote.CollectionEvents, req.EventID, update); err != nil {
		return Receipt{}, err
	}

	unit := event.Price
	if ticketType == TypeVIP {
		unit = event.Price * vipMultiplier
	}

	logging.Ctx(ctx).Info().
		Str("event_id", req.EventID).
		Str("user_id", req.UserID).
		Int("quantity", req.Quantity).
		Str("ticket_type", ticketType).
		Msg("Purchased tickets")

	return Receipt{
		PurchaseID:  record["id"].(string),
		EventID:     req.EventID,
		EventName:   event.Name,
		Quantity:    req.Quantity,
		TicketType:  ticketType,
		UnitPrice:   unit,
		Total:       unit * float64(req.Quantity),
		Remaining:   remaining,
		PurchasedAt: purchasedAt,
	}, nil
}

// TicketsFor folds every event's purchase records down to the given
// user's tickets, newest purchase last.
func (u *Updater) TicketsFor(ctx context.Context, userID string) ([]Ticket, error) {
	if userID == "" {
		return nil, errors.NewValidationError("userID", userID, "user id is required")
	}

	docs, err := u.store.List(ctx, remote.CollectionEvents)
	if err != nil {
		return nil, err
	}

	var tickets []Ticket
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		// Duplicate documents in the list fold once.
		if seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true

		event, err := events.FromDocument(doc.ID, doc.Fields)
		if err != nil {
			continue
		}
		for _, record := range purchaseRecords(doc.Fields) {
			fields, ok := record.(map[string]any)
			if !ok {
				continue
			}
			if fields["userId"] != userID {
				continue
			}
			t := Ticket{
				PurchaseID: stringValue(fields["id"]),
				EventID:    doc.ID,
				EventName:  event.Name,
				EventDate:  event.Date,
				EventImage: event.Image,
				Location:   event.Location,
				Quantity:   intValue(fields["quantity"]),
				TicketType: stringValue(fields["ticketType"]),
			}
			if raw := stringValue(fields["purchaseDate"]); raw != "" {
				if at, err := time.Parse(time.RFC3339, raw); err == nil {
					t.PurchasedAt = utc.Time{Time: at}
				}
			}
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

func purchaseRecords(fields map[string]any) []any {
	records, _ := fields["purchases"].([]any)
	return records
}

func stringValue(raw any) string {
	s, _ := raw.(string)
	return s
}

func intValue(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
