package availability

import (
	"context"
	"cursedcompass-backend/internal/scrapers/ipms"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownHotel = errors.New("unknown hotel")

// HotelChecker checks room availability at a single hotel.
type HotelChecker interface {
	CheckAvailability(ctx context.Context, req ipms.AvailabilityRequest) Response
}

// Registry maps hotel ids to their checkers.
type Registry struct {
	mutex    sync.RWMutex
	checkers map[string]HotelChecker
}

func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]HotelChecker)}
}

// Register adds or replaces the checker of a hotel.
func (r *Registry) Register(hotelId string, checker HotelChecker) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.checkers[hotelId] = checker
}

func (r *Registry) Get(hotelId string) (HotelChecker, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	checker, ok := r.checkers[hotelId]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHotel, hotelId)
	}
	return checker, nil
}

// Hotels returns the registered hotel ids in sorted order.
func (r *Registry) Hotels() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]string, 0, len(r.checkers))
	for id := range r.checkers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
