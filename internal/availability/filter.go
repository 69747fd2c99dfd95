package availability

import (
	"cursedcompass-backend/internal/scrapers/ipms"
)

// DefaultMinInventory excludes room types with a single room left, those are
// prone to being double booked between the check and the booking.
const DefaultMinInventory = 2

// Filter keeps the rooms a caller can reasonably book.
type Filter struct {
	MinInventory int
}

// Apply keeps rooms that are available and have at least MinInventory rooms
// left, order is preserved. Unknown inventory counts as 0.
func (f Filter) Apply(rooms []ipms.Room) (kept []ipms.Room, removed int) {
	kept = make([]ipms.Room, 0, len(rooms))
	for _, room := range rooms {
		if !room.Available || room.Inventory() < f.MinInventory {
			removed++
			continue
		}
		kept = append(kept, room)
	}
	return kept, removed
}
