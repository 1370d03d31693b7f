// Package reviews submits and aggregates event reviews. The store holds
// one review document per submission; the one-review-per-user rule is
// enforced by querying before writing, which leaves a small window where
// two concurrent submissions both pass the check. Acceptable for this
// workload, same as the inventory decrement.
package reviews

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/remote"
)

// Summary is the aggregate of an event's reviews.
type Summary struct {
	Average float64
	Count   int
}

// Aggregator submits and folds reviews.
type Aggregator struct {
	store remote.DocumentStore
	now   func() time.Time
}

// New creates a review aggregator on top of the document store.
func New(store remote.DocumentStore) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// HasReviewed reports whether the user already reviewed the event.
func (a *Aggregator) HasReviewed(ctx context.Context, eventID, userID string) (bool, error) {
	docs, err := a.store.List(ctx, remote.CollectionReviews)
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if doc.Fields["eventId"] == eventID && doc.Fields["userId"] == userID {
			return true, nil
		}
	}
	return false, nil
}

// Submit stores a review after client-side checks: the rating must be
// 1..5, the event must exist and lie in the past, and the user must not
// have reviewed it before.
func (a *Aggregator) Submit(ctx context.Context, review events.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}

	doc, err := a.store.Get(ctx, remote.CollectionEvents, review.EventID)
	if err != nil {
		return err
	}
	event, err := events.FromDocument(doc.ID, doc.Fields)
	if err != nil {
		return err
	}
	day, err := event.Day()
	if err != nil {
		return err
	}
	// Reviews open the day after the event.
	if !day.Before(startOfDay(a.now())) {
		return errors.NewValidationError("date", event.Date, "event has not happened yet")
	}

	reviewed, err := a.HasReviewed(ctx, review.EventID, review.UserID)
	if err != nil {
		return err
	}
	if reviewed {
		return errors.NewValidationError("userId", review.UserID, "user already reviewed this event")
	}

	fields := map[string]any{
		"eventId":   review.EventID,
		"userId":    review.UserID,
		"rating":    review.Rating,
		"createdAt": utc.Time{Time: a.now().UTC()}.Format(time.RFC3339),
	}
	if review.Comment != "" {
		fields["comment"] = review.Comment
	}

	if _, err := a.store.Create(ctx, remote.CollectionReviews, fields); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("event_id", review.EventID).
		Str("user_id", review.UserID).
		Int("rating", review.Rating).
		Msg("Submitted review")
	return nil
}

// Recompute folds the event's reviews to an average and count. The fold
// is order-independent; zero reviews yield {0, 0}.
func (a *Aggregator) Recompute(ctx context.Context, eventID string) (Summary, error) {
	docs, err := a.store.List(ctx, remote.CollectionReviews)
	if err != nil {
		return Summary{}, err
	}

	var sum, count int
	for _, doc := range docs {
		if doc.Fields["eventId"] != eventID {
			continue
		}
		sum += ratingValue(doc.Fields["rating"])
		count++
	}
	if count == 0 {
		return Summary{}, nil
	}
	return Summary{
		Average: float64(sum) / float64(count),
		Count:   count,
	}, nil
}

// For lists the event's reviews, normalized.
func (a *Aggregator) For(ctx context.Context, eventID string) ([]events.Review, error) {
	docs, err := a.store.List(ctx, remote.CollectionReviews)
	if err != nil {
		return nil, err
	}

	var list []events.Review
	for _, doc := range docs {
		if doc.Fields["eventId"] != eventID {
			continue
		}
		r := events.Review{
			ID:      doc.ID,
			EventID: eventID,
			Rating:  ratingValue(doc.Fields["rating"]),
		}
		if userID, ok := doc.Fields["userId"].(string); ok {
			r.UserID = userID
		}
		if comment, ok := doc.Fields["comment"].(string); ok {
			r.Comment = comment
		}
		if raw, ok := doc.Fields["createdAt"].(string); ok {
			if at, err := time.Parse(time.RFC3339, raw); err == nil {
				r.CreatedAt = utc.Time{Time: at}
			}
		}
		list = append(list, r)
	}
	return list, nil
}

func ratingValue(raw any) int {
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

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
