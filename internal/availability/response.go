package availability

import (
	"cursedcompass-backend/internal/scrapers/ipms"
	"time"
)

// Response is the result of one availability check. A failed check has
// Success false, an Error message and no rooms.
type Response struct {
	HotelId   string      `json:"hotelId"`
	Rooms     []ipms.Room `json:"rooms"`
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	ScrapedAt time.Time   `json:"scrapedAt"`

	// diagnostics
	SourceHtmlPath      string `json:"sourceHtmlPath,omitempty"`
	TotalRoomsFound     int    `json:"totalRoomsFound"`
	RoomsAfterFiltering int    `json:"roomsAfterFiltering"`
}

func failure(hotelId string, scrapedAt time.Time, err error) Response {
	return Response{
		HotelId:   hotelId,
		Rooms:     []ipms.Room{},
		Success:   false,
		Error:     err.Error(),
		ScrapedAt: scrapedAt,
	}
}
