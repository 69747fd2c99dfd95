package history

import (
	"context"
	"cursedcompass-backend/internal/availability"
	"cursedcompass-backend/internal/history/db"
	"cursedcompass-backend/internal/scrapers/ipms"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrNotFound = errors.New("check not found")

// Store keeps the results of availability checks for later review.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Record is a stored availability check.
type Record struct {
	Id                  string      `json:"id"`
	HotelId             string      `json:"hotelId"`
	CheckIn             string      `json:"checkIn"`
	CheckOut            string      `json:"checkOut"`
	Guests              int         `json:"guests"`
	Success             bool        `json:"success"`
	Error               string      `json:"error,omitempty"`
	ScrapedAt           time.Time   `json:"scrapedAt"`
	TotalRoomsFound     int         `json:"totalRoomsFound"`
	RoomsAfterFiltering int         `json:"roomsAfterFiltering"`
	SourceHtmlPath      string      `json:"sourceHtmlPath,omitempty"`
	Rooms               []ipms.Room `json:"rooms"`
}

// Record stores the result of a check and returns its id.
func (s Store) Record(ctx context.Context, req ipms.AvailabilityRequest, res availability.Response) (string, error) {
	rooms := res.Rooms
	if rooms == nil {
		rooms = []ipms.Room{}
	}
	serialized, err := json.Marshal(rooms)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	err = s.qry.CreateCheck(ctx, db.CreateCheckParams{
		ID:                  id,
		HotelID:             res.HotelId,
		CheckIn:             req.CheckInString(),
		CheckOut:            req.CheckOutString(),
		Guests:              int64(req.Guests),
		Success:             res.Success,
		Error:               res.Error,
		ScrapedAt:           res.ScrapedAt.UnixMilli(),
		TotalRoomsFound:     int64(res.TotalRoomsFound),
		RoomsAfterFiltering: int64(res.RoomsAfterFiltering),
		SourceHtmlPath:      res.SourceHtmlPath,
		Rooms:               string(serialized),
	})
	if err != nil {
		return "", fmt.Errorf("record check: %w", err)
	}
	return id, nil
}

func fromRow(row db.AvailabilityCheck) (Record, error) {
	var rooms []ipms.Room
	err := json.Unmarshal([]byte(row.Rooms), &rooms)
	if err != nil {
		return Record{}, fmt.Errorf("decode rooms of check %s: %w", row.ID, err)
	}
	if rooms == nil {
		rooms = []ipms.Room{}
	}

	return Record{
		Id:                  row.ID,
		HotelId:             row.HotelID,
		CheckIn:             row.CheckIn,
		CheckOut:            row.CheckOut,
		Guests:              int(row.Guests),
		Success:             row.Success,
		Error:               row.Error,
		ScrapedAt:           time.UnixMilli(row.ScrapedAt).UTC(),
		TotalRoomsFound:     int(row.TotalRoomsFound),
		RoomsAfterFiltering: int(row.RoomsAfterFiltering),
		SourceHtmlPath:      row.SourceHtmlPath,
		Rooms:               rooms,
	}, nil
}

// ClampLimit bounds a requested list size to [1, MaxListLimit],
// non-positive limits become DefaultListLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// List returns the most recent checks first.
func (s Store) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.qry.ListChecks(ctx, int64(ClampLimit(limit)))
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (s Store) Get(ctx context.Context, id string) (Record, error) {
	row, err := s.qry.GetCheck(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, err
	}
	return fromRow(row)
}

// Prune deletes every check scraped before `before`.
func (s Store) Prune(ctx context.Context, before time.Time) error {
	return s.qry.DeleteChecksBefore(ctx, before.UnixMilli())
}
