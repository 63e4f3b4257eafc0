// Package ledger keeps the per-category availability counts of an event
// truthful. All functions operate on an in-memory event snapshot; callers
// persist the result with a conditional write.
package ledger

import (
	"errors"
	"fmt"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
)

// CheckAvailability reports whether the category exists and has at least
// quantity tickets left.
func CheckAvailability(ev *domain.Event, categoryID string, quantity int) bool {
	c := ev.Category(categoryID)
	return c != nil && c.Available >= quantity
}

// Decrement takes quantity tickets out of the category. It fails without
// touching the event when the quantity is not positive, the category is
// unknown or fewer than quantity tickets remain.
func Decrement(ev *domain.Event, categoryID string, quantity int) error {
	if quantity <= 0 {
		return &LineItemError{CategoryID: categoryID, Requested: quantity, Err: ErrInvalidQuantity}
	}
	c := ev.Category(categoryID)
	if c == nil {
		return &LineItemError{CategoryID: categoryID, Requested: quantity, Err: ErrUnknownCategory}
	}
	if c.Available < quantity {
		return &LineItemError{CategoryID: categoryID, Requested: quantity, Available: c.Available, Err: ErrInsufficientInventory}
	}
	c.Available -= quantity
	return nil
}

// Increment returns quantity tickets to the category. The count is capped
// at the category total; hitting the cap yields ErrLedgerCorruption.
func Increment(ev *domain.Event, categoryID string, quantity int) error {
	if quantity <= 0 {
		return &LineItemError{CategoryID: categoryID, Requested: quantity, Err: ErrInvalidQuantity}
	}
	c := ev.Category(categoryID)
	if c == nil {
		return &LineItemError{CategoryID: categoryID, Requested: quantity, Err: ErrUnknownCategory}
	}
	if c.Available+quantity > c.TotalQuantity {
		over := c.Available + quantity - c.TotalQuantity
		c.Available = c.TotalQuantity
		return &LineItemError{CategoryID: categoryID, Requested: quantity, Available: quantity - over, Err: ErrLedgerCorruption}
	}
	c.Available += quantity
	return nil
}

// Aggregate merges line items that name the same category, keeping the
// order in which categories first appear. Non-positive quantities are
// rejected before anything is merged.
func Aggregate(items []domain.LineItem) ([]domain.LineItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", ErrInvalidQuantity)
	}
	out := make([]domain.LineItem, 0, len(items))
	pos := make(map[string]int, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, &LineItemError{Index: i, CategoryID: it.CategoryID, Requested: it.Quantity, Err: ErrInvalidQuantity}
		}
		if j, ok := pos[it.CategoryID]; ok {
			out[j].Quantity += it.Quantity
			continue
		}
		pos[it.CategoryID] = len(out)
		out = append(out, domain.LineItem{CategoryID: it.CategoryID, Quantity: it.Quantity})
	}
	return out, nil
}

// Reserve validates every item against ev before decrementing any of
// them. Items must already be aggregated. On success the items carry the
// unit price and the total amount is returned; on failure ev is untouched.
func Reserve(ev *domain.Event, items []domain.LineItem) ([]domain.LineItem, int64, error) {
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, 0, &LineItemError{Index: i, CategoryID: it.CategoryID, Requested: it.Quantity, Err: ErrInvalidQuantity}
		}
		c := ev.Category(it.CategoryID)
		if c == nil {
			return nil, 0, &LineItemError{Index: i, CategoryID: it.CategoryID, Requested: it.Quantity, Err: ErrUnknownCategory}
		}
		if !CheckAvailability(ev, it.CategoryID, it.Quantity) {
			return nil, 0, &LineItemError{Index: i, CategoryID: it.CategoryID, Requested: it.Quantity, Available: c.Available, Err: ErrInsufficientInventory}
		}
	}

	priced := make([]domain.LineItem, 0, len(items))
	var total int64
	for i, it := range items {
		if err := Decrement(ev, it.CategoryID, it.Quantity); err != nil {
			// only reachable when items repeat a category
			var lie *LineItemError
			if errors.As(err, &lie) {
				lie.Index = i
			}
			for _, done := range priced {
				if rbErr := Increment(ev, done.CategoryID, done.Quantity); rbErr != nil {
					err = errors.Join(err, fmt.Errorf("roll back %s: %w", done.CategoryID, rbErr))
				}
			}
			return nil, 0, err
		}
		price := ev.Category(it.CategoryID).PriceCents
		priced = append(priced, domain.LineItem{CategoryID: it.CategoryID, Quantity: it.Quantity, UnitPriceCents: price})
		total += price * int64(it.Quantity)
	}
	return priced, total, nil
}

// Restoration is the outcome of returning one line item to the ledger.
type Restoration struct {
	Item domain.LineItem
	Err  error
}

// Release increments every item back into ev. Items whose category is
// gone are skipped and reported; corruption is reported per item with the
// count capped at the total.
func Release(ev *domain.Event, items []domain.LineItem) (restored []domain.LineItem, skipped []Restoration, corrupted []Restoration) {
	for i, it := range items {
		err := Increment(ev, it.CategoryID, it.Quantity)
		var lie *LineItemError
		if errors.As(err, &lie) {
			lie.Index = i
		}
		switch {
		case err == nil:
			restored = append(restored, it)
		case errors.Is(err, ErrLedgerCorruption):
			corrupted = append(corrupted, Restoration{Item: it, Err: err})
		default:
			skipped = append(skipped, Restoration{Item: it, Err: err})
		}
	}
	return restored, skipped, corrupted
}

// Discrepancy is a category whose sold count disagrees with the bookings.
type Discrepancy struct {
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Total      int    `json:"total"`
	Available  int    `json:"available"`
	Booked     int    `json:"booked"`
}

func (d Discrepancy) Error() string {
	return fmt.Sprintf("%v: event %s category %s total=%d available=%d booked=%d",
		ErrLedgerCorruption, d.EventID, d.CategoryID, d.Total, d.Available, d.Booked)
}

func (d Discrepancy) Unwrap() error { return ErrLedgerCorruption }

// Verify compares each category's sold count (total - available) with the
// quantities held by bookings. Booked quantities for categories the event
// no longer has are reported too.
func Verify(ev *domain.Event, booked map[string]int) []Discrepancy {
	var out []Discrepancy
	seen := make(map[string]bool, len(ev.TicketTypes))
	for _, c := range ev.TicketTypes {
		seen[c.ID] = true
		b := booked[c.ID]
		if c.Available < 0 || c.Available > c.TotalQuantity || c.TotalQuantity-c.Available != b {
			out = append(out, Discrepancy{EventID: ev.ID, CategoryID: c.ID, Total: c.TotalQuantity, Available: c.Available, Booked: b})
		}
	}
	for id, b := range booked {
		if !seen[id] && b > 0 {
			out = append(out, Discrepancy{EventID: ev.ID, CategoryID: id, Booked: b})
		}
	}
	return out
}
