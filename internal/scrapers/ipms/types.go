package ipms

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar date format callers use (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var (
	ErrInvalidRequest = errors.New("invalid availability request")
	// ErrSession means the landing page could not be fetched or gave no cookies,
	// nothing else can happen without a session.
	ErrSession = errors.New("failed to establish booking session")
	// ErrTransport means the availability POST failed, timed out or was
	// redirected too many times.
	ErrTransport = errors.New("availability request failed")
	// ErrParse means an embedded room array was found but could not be decoded,
	// it is only ever reported, the parser falls through to the next strategy.
	ErrParse = errors.New("malformed embedded room data")
)

// AvailabilityRequest is a date range and guest count, both dates are calendar
// dates, any time of day component is ignored.
type AvailabilityRequest struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRequest, value)
	}
	return date, nil
}

// NewAvailabilityRequest parses and validates a request from its wire representation.
func NewAvailabilityRequest(checkIn, checkOut string, guests int) (AvailabilityRequest, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return AvailabilityRequest{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return AvailabilityRequest{}, err
	}
	req := AvailabilityRequest{CheckIn: in, CheckOut: out, Guests: guests}
	return req, req.Validate()
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r AvailabilityRequest) Validate() error {
	if r.Guests < 1 {
		return fmt.Errorf("%w: guests must be at least 1, got %d", ErrInvalidRequest, r.Guests)
	}
	if !calendarDay(r.CheckOut).After(calendarDay(r.CheckIn)) {
		return fmt.Errorf(
			"%w: check-out %s must be after check-in %s",
			ErrInvalidRequest, r.CheckOutString(), r.CheckInString(),
		)
	}
	return nil
}

// Nights is the ceiling of the whole day difference between the two calendar dates.
func (r AvailabilityRequest) Nights() int {
	diff := calendarDay(r.CheckOut).Sub(calendarDay(r.CheckIn))
	return int(math.Ceil(diff.Hours() / 24))
}

func (r AvailabilityRequest) CheckInString() string {
	return r.CheckIn.Format(DateLayout)
}

func (r AvailabilityRequest) CheckOutString() string {
	return r.CheckOut.Format(DateLayout)
}

// Room is a normalized room type as offered by the booking system.
//
// Id is only stable inside a single response, it is not a durable key.
// InventoryCount is nil when the source did not say how many rooms are left.
type Room struct {
	Id             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Available      bool     `json:"available"`
	Description    string   `json:"description"`
	Amenities      []string `json:"amenities"`
	InventoryCount *int     `json:"inventoryCount,omitempty"`
	Images         []string `json:"images"`
}

// Inventory returns the inventory count, unknown counts are treated as 0.
func (r Room) Inventory() int {
	if r.InventoryCount == nil {
		return 0
	}
	return *r.InventoryCount
}
